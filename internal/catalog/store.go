package catalog

import (
	"errors"
	"slices"
	"time"

	"github.com/nazbav/spoolshelf/internal/domain"
)

var (
	// ErrUnavailable indicates the dataset could not be read or decoded.
	ErrUnavailable = errors.New("catalog: data unavailable")
	// ErrNotFound indicates no record carries the requested id.
	ErrNotFound = errors.New("catalog: filament not found")
)

// Store holds the loaded filament records. It is read-only after construction
// and safe for concurrent use.
type Store struct {
	items         []domain.Filament
	byID          map[int]int
	materials     []string
	manufacturers []string
	loadedAt      time.Time
}

// NewStore indexes the provided records. Records with duplicate ids keep the first occurrence.
func NewStore(items []domain.Filament) *Store {
	s := &Store{
		items:    make([]domain.Filament, 0, len(items)),
		byID:     make(map[int]int, len(items)),
		loadedAt: time.Now(),
	}
	seenMaterial := map[string]struct{}{}
	seenManufacturer := map[string]struct{}{}
	for _, item := range items {
		if _, dup := s.byID[item.ID]; dup {
			continue
		}
		s.byID[item.ID] = len(s.items)
		s.items = append(s.items, item)

		if item.Type != "" {
			if _, ok := seenMaterial[item.Type]; !ok {
				seenMaterial[item.Type] = struct{}{}
				s.materials = append(s.materials, item.Type)
			}
		}
		if item.Manufacturer != "" {
			if _, ok := seenManufacturer[item.Manufacturer]; !ok {
				seenManufacturer[item.Manufacturer] = struct{}{}
				s.manufacturers = append(s.manufacturers, item.Manufacturer)
			}
		}
	}
	return s
}

// Len returns the number of records.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// All returns the records in dataset order. The returned slice is a copy.
func (s *Store) All() []domain.Filament {
	if s == nil {
		return nil
	}
	return slices.Clone(s.items)
}

// Get looks a record up by id.
func (s *Store) Get(id int) (domain.Filament, error) {
	if s == nil {
		return domain.Filament{}, ErrUnavailable
	}
	idx, ok := s.byID[id]
	if !ok {
		return domain.Filament{}, ErrNotFound
	}
	return s.items[idx], nil
}

// Materials lists distinct material types in order of first appearance.
func (s *Store) Materials() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.materials)
}

// Manufacturers lists distinct manufacturers in order of first appearance.
func (s *Store) Manufacturers() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.manufacturers)
}

// LoadedAt reports when the store was built.
func (s *Store) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}
