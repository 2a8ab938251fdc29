package browse

import (
	"errors"
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nazbav/spoolshelf/internal/catalog"
	"github.com/nazbav/spoolshelf/internal/domain"
	"github.com/nazbav/spoolshelf/internal/reviews"
)

// Options tune the pipeline of a Controller.
type Options struct {
	PageSize         int
	VisiblePageLinks int
	Language         language.Tag
	// PreferReviewRating lets a session's reviews override the dataset rating.
	// When false, reviews only fill in records that carry no rating.
	PreferReviewRating bool
}

// ViewState is the outcome of one recompute. It is a value and never changes
// after being returned.
type ViewState struct {
	Selection     domain.Selection
	Items         []domain.Filament
	Page          domain.PageState
	Links         []domain.PageLink
	Materials     []string
	Manufacturers []string
	// Matched counts records passing the filter, across all pages.
	Matched     int
	Unavailable bool
}

// Empty reports whether the selection matched nothing.
func (v ViewState) Empty() bool { return !v.Unavailable && v.Matched == 0 }

// Controller owns the browsing state of one session. All recomputations and
// review submissions for the session are serialized.
type Controller struct {
	mu     sync.Mutex
	store  *catalog.Store
	ledger *reviews.Ledger
	cmp    *Comparator
	opts   Options
	last   ViewState
}

// NewController creates a controller over a shared store. A nil store yields
// controllers whose views report the catalog as unavailable.
func NewController(store *catalog.Store, ledger *reviews.Ledger, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.VisiblePageLinks <= 0 {
		opts.VisiblePageLinks = DefaultVisiblePageLinks
	}
	if ledger == nil {
		ledger = reviews.NewLedger(reviews.Deps{})
	}
	return &Controller{
		store:  store,
		ledger: ledger,
		cmp:    NewComparator(opts.Language),
		opts:   opts,
	}
}

// Recompute runs filter, sort, paginate and page links over the full catalog
// and stores the result as the session's current view.
func (c *Controller) Recompute(sel domain.Selection, page int) ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sel.Sort == "" {
		sel.Sort = domain.DefaultSort
	}
	sel = cloneSelection(sel)

	if c.store == nil {
		c.last = ViewState{
			Selection:   sel,
			Page:        domain.PageState{PageSize: c.opts.PageSize, CurrentPage: 1, TotalPages: 1},
			Unavailable: true,
		}
		return c.last
	}

	all := c.store.All()
	for i := range all {
		all[i] = c.withEffectiveRating(all[i])
	}
	matched := Filter(all, sel)
	c.cmp.Sort(matched, sel.Sort)
	items, state := Paginate(matched, c.opts.PageSize, page)

	c.last = ViewState{
		Selection:     sel,
		Items:         slices.Clone(items),
		Page:          state,
		Links:         PageLinks(state.CurrentPage, state.TotalPages, c.opts.VisiblePageLinks),
		Materials:     c.sortedFacet(c.store.Materials()),
		Manufacturers: c.sortedFacet(c.store.Manufacturers()),
		Matched:       len(matched),
	}
	return c.last
}

// Last returns the most recent view, or the zero ViewState before the first recompute.
func (c *Controller) Last() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Filament returns one record with its session rating applied.
func (c *Controller) Filament(id int) (domain.Filament, error) {
	if c.store == nil {
		return domain.Filament{}, catalog.ErrUnavailable
	}
	f, err := c.store.Get(id)
	if err != nil {
		return domain.Filament{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.withEffectiveRating(f), nil
}

// SubmitReview records a review for an existing record.
func (c *Controller) SubmitReview(id int, author, text string, rating int) (domain.Review, error) {
	if c.store == nil {
		return domain.Review{}, catalog.ErrUnavailable
	}
	if _, err := c.store.Get(id); err != nil {
		return domain.Review{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Submit(id, author, text, rating)
}

// Reviews lists the session's reviews of a record, most recent first.
func (c *Controller) Reviews(id int) []domain.Review {
	return c.ledger.ListFor(id)
}

// DerivedRating exposes the mean review rating of a record.
func (c *Controller) DerivedRating(id int) (float64, bool) {
	return c.ledger.DerivedRating(id)
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool { return errors.Is(err, catalog.ErrNotFound) }

func (c *Controller) withEffectiveRating(f domain.Filament) domain.Filament {
	derived, ok := c.ledger.DerivedRating(f.ID)
	if !ok {
		return f
	}
	if f.Rating == nil || c.opts.PreferReviewRating {
		f.Rating = &derived
	}
	return f
}

func (c *Controller) sortedFacet(values []string) []string {
	col := collate.New(c.cmp.tag)
	slices.SortStableFunc(values, func(a, b string) int { return col.CompareString(a, b) })
	return values
}

func cloneSelection(sel domain.Selection) domain.Selection {
	sel.Materials = slices.Clone(sel.Materials)
	sel.Manufacturers = slices.Clone(sel.Manufacturers)
	sel.Weights = slices.Clone(sel.Weights)
	return sel
}
