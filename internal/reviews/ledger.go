package reviews

import (
	"errors"
	"fmt"
	"html"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/nazbav/spoolshelf/internal/domain"
)

const (
	reviewIDPrefix = "rev_"

	// MaxRating is the top of the star scale.
	MaxRating = 5

	maxAuthorLength = 80
	maxTextLength   = 4000
)

// ErrInvalidInput indicates a review submission failed validation.
var ErrInvalidInput = errors.New("review: invalid input")

// ValidationError lists the submission fields that were missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("review validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	return slices.Clone(e.fields)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Deps bundles the collaborators of a Ledger. Zero values fall back to defaults.
type Deps struct {
	Clock       func() time.Time
	IDGenerator func() string
	Sanitizer   func(string) string
	Location    *time.Location
}

// Ledger is an in-memory, session-scoped list of reviews. Entries are never
// persisted and never edited once accepted. It is safe for concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	byRecord map[int][]domain.Review
	count    int

	clock    func() time.Time
	newID    func() string
	sanitize func(string) string
	location *time.Location
}

var strictPolicy = bluemonday.StrictPolicy()

// NewLedger builds an empty ledger.
func NewLedger(deps Deps) *Ledger {
	l := &Ledger{
		byRecord: make(map[int][]domain.Review),
		clock:    deps.Clock,
		newID:    deps.IDGenerator,
		sanitize: deps.Sanitizer,
		location: deps.Location,
	}
	if l.clock == nil {
		l.clock = time.Now
	}
	if l.newID == nil {
		l.newID = func() string { return reviewIDPrefix + ulid.Make().String() }
	}
	if l.sanitize == nil {
		l.sanitize = SanitizeText
	}
	if l.location == nil {
		l.location = time.Local
	}
	return l
}

// Submit validates and records a review. Accepted reviews are listed before
// any earlier review of the same record.
func (l *Ledger) Submit(recordID int, author, text string, rating int) (domain.Review, error) {
	author = l.sanitize(author)
	text = l.sanitize(text)

	var invalid []string
	if author == "" || len([]rune(author)) > maxAuthorLength {
		invalid = append(invalid, "author")
	}
	if text == "" || len([]rune(text)) > maxTextLength {
		invalid = append(invalid, "text")
	}
	if rating < 1 || rating > MaxRating {
		invalid = append(invalid, "rating")
	}
	if len(invalid) > 0 {
		return domain.Review{}, &ValidationError{fields: invalid}
	}

	review := domain.Review{
		ID:          l.newID(),
		FilamentID:  recordID,
		Author:      author,
		Text:        text,
		Rating:      rating,
		SubmittedAt: l.clock().In(l.location),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	existing := l.byRecord[recordID]
	entries := make([]domain.Review, 0, len(existing)+1)
	entries = append(entries, review)
	entries = append(entries, existing...)
	l.byRecord[recordID] = entries
	l.count++
	return review, nil
}

// ListFor returns the reviews of a record, most recent first.
func (l *Ledger) ListFor(recordID int) []domain.Review {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.byRecord[recordID])
}

// Len reports how many reviews were accepted across all records.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// DerivedRating returns the arithmetic mean of a record's review ratings.
// ok is false when the record has no reviews.
func (l *Ledger) DerivedRating(recordID int) (rating float64, ok bool) {
	if l == nil {
		return 0, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := l.byRecord[recordID]
	if len(entries) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range entries {
		sum += r.Rating
	}
	return float64(sum) / float64(len(entries)), true
}

// SanitizeText strips markup and control characters and collapses runs of
// whitespace while keeping line breaks. The result is plain text.
func SanitizeText(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	trimmed = html.UnescapeString(strictPolicy.Sanitize(trimmed))

	normalized := strings.ReplaceAll(strings.ReplaceAll(trimmed, "\r\n", "\n"), "\r", "\n")
	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		line = strings.Map(func(r rune) rune {
			if r == '\t' {
				return ' '
			}
			if unicode.IsControl(r) {
				return -1
			}
			return r
		}, line)
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
