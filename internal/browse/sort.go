package browse

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nazbav/spoolshelf/internal/domain"
)

// DefaultLanguage drives name collation when none is configured.
var DefaultLanguage = language.Russian

// Comparator orders filaments by a sort key. Name ordering follows the
// collation rules of the configured language.
type Comparator struct {
	tag language.Tag
}

// NewComparator builds a comparator collating names for tag.
func NewComparator(tag language.Tag) *Comparator {
	if tag == language.Und {
		tag = DefaultLanguage
	}
	return &Comparator{tag: tag}
}

// Compare returns -1, 0 or 1. Unknown keys compare everything as equal.
func (c *Comparator) Compare(a, b domain.Filament, key domain.SortKey) int {
	return compareWith(c.newCollator(), a, b, key)
}

// Sort orders items in place. The sort is stable, so sorting an already sorted
// slice again leaves it unchanged.
func (c *Comparator) Sort(items []domain.Filament, key domain.SortKey) {
	if !isKnownSort(key) {
		return
	}
	// collate.Collator keeps internal buffers; one per sort keeps Sort safe to call concurrently.
	col := c.newCollator()
	slices.SortStableFunc(items, func(a, b domain.Filament) int {
		return compareWith(col, a, b, key)
	})
}

func (c *Comparator) newCollator() *collate.Collator {
	return collate.New(c.tag)
}

// Compare orders two filaments using the default collation language.
func Compare(a, b domain.Filament, key domain.SortKey) int {
	return NewComparator(DefaultLanguage).Compare(a, b, key)
}

func compareWith(col *collate.Collator, a, b domain.Filament, key domain.SortKey) int {
	switch key {
	case domain.SortNameAsc:
		return col.CompareString(a.Name, b.Name)
	case domain.SortNameDesc:
		return col.CompareString(b.Name, a.Name)
	case domain.SortPriceAsc:
		return cmp.Compare(a.PriceOrZero(), b.PriceOrZero())
	case domain.SortPriceDesc:
		return cmp.Compare(b.PriceOrZero(), a.PriceOrZero())
	case domain.SortRatingAsc:
		return cmp.Compare(a.RatingOrZero(), b.RatingOrZero())
	case domain.SortRatingDesc:
		return cmp.Compare(b.RatingOrZero(), a.RatingOrZero())
	default:
		return 0
	}
}

func isKnownSort(key domain.SortKey) bool {
	return slices.Contains(domain.SortKeys, key)
}
