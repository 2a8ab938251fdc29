package browse

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazbav/spoolshelf/internal/catalog"
	"github.com/nazbav/spoolshelf/internal/domain"
	"github.com/nazbav/spoolshelf/internal/reviews"
)

// catalogOf25 mixes materials and ratings so that 16 PLA records rate 4 or higher.
func catalogOf25() *catalog.Store {
	items := make([]domain.Filament, 0, 25)
	for i := 1; i <= 25; i++ {
		f := domain.Filament{
			ID:           i,
			Name:         fmt.Sprintf("Filament %02d", i),
			Manufacturer: []string{"eSun", "Bestfilament", "Geeetech"}[i%3],
			Type:         "PLA",
			Weight:       domain.WeightFromGrams(1000),
			Price:        ptr(float64(3000 - i*37%1100)),
			Rating:       ptr(4.5),
		}
		switch {
		case i%5 == 0:
			f.Type = "PETG"
		case i%7 == 0:
			f.Rating = ptr(3.5)
		case i == 11:
			f.Rating = nil
		}
		items = append(items, f)
	}
	return catalog.NewStore(items)
}

func newTestController(store *catalog.Store, opts Options) *Controller {
	clock := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return NewController(store, reviews.NewLedger(reviews.Deps{Clock: clock}), opts)
}

func TestControllerEndToEnd(t *testing.T) {
	c := newTestController(catalogOf25(), Options{PageSize: 12})
	sel := domain.Selection{Materials: []string{"PLA"}, MinRating: 4, Sort: domain.SortPriceAsc}

	first := c.Recompute(sel, 1)
	require.False(t, first.Unavailable)
	assert.Equal(t, 16, first.Matched)
	assert.Equal(t, 2, first.Page.TotalPages)
	require.Len(t, first.Items, 12)

	second := c.Recompute(sel, 2)
	require.Len(t, second.Items, 4)

	third := c.Recompute(sel, 3)
	assert.Equal(t, 2, third.Page.CurrentPage)
	assert.Equal(t, second.Items, third.Items)

	all := append(append([]domain.Filament{}, first.Items...), second.Items...)
	seen := map[int]bool{}
	for i, f := range all {
		assert.Equal(t, "PLA", f.Type)
		require.NotNil(t, f.Rating)
		assert.GreaterOrEqual(t, *f.Rating, 4.0)
		assert.False(t, seen[f.ID], "id %d repeated", f.ID)
		seen[f.ID] = true
		if i > 0 {
			assert.LessOrEqual(t, all[i-1].PriceOrZero(), f.PriceOrZero())
		}
	}
	assert.Equal(t, third, c.Last())
}

func TestControllerFacetsAndLinks(t *testing.T) {
	c := newTestController(catalogOf25(), Options{PageSize: 5, VisiblePageLinks: 3})
	view := c.Recompute(domain.Selection{}, 1)

	assert.Equal(t, []string{"PETG", "PLA"}, view.Materials)
	assert.Equal(t, []string{"Bestfilament", "eSun", "Geeetech"}, view.Manufacturers)
	assert.Equal(t, domain.DefaultSort, view.Selection.Sort)
	assert.Equal(t, 5, view.Page.TotalPages)
	require.NotEmpty(t, view.Links)
	assert.True(t, view.Links[0].Disabled)
}

func TestControllerViewStateIsIndependentOfInput(t *testing.T) {
	c := newTestController(catalogOf25(), Options{})
	materials := []string{"PLA"}
	view := c.Recompute(domain.Selection{Materials: materials}, 1)
	materials[0] = "ABS"
	assert.Equal(t, []string{"PLA"}, view.Selection.Materials)
	assert.Equal(t, []string{"PLA"}, c.Last().Selection.Materials)
}

func TestControllerUnavailableCatalog(t *testing.T) {
	c := newTestController(nil, Options{})
	view := c.Recompute(domain.Selection{}, 3)
	assert.True(t, view.Unavailable)
	assert.False(t, view.Empty())
	assert.Equal(t, 1, view.Page.CurrentPage)

	_, err := c.Filament(1)
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestControllerReviewsFillMissingRating(t *testing.T) {
	c := newTestController(catalogOf25(), Options{})

	_, err := c.SubmitReview(11, "Alice", "Great filament", 4)
	require.NoError(t, err)
	_, err = c.SubmitReview(1, "Bob", "Meh", 1)
	require.NoError(t, err)

	unrated, err := c.Filament(11)
	require.NoError(t, err)
	require.NotNil(t, unrated.Rating)
	assert.Equal(t, 4.0, *unrated.Rating)

	rated, err := c.Filament(1)
	require.NoError(t, err)
	assert.Equal(t, 4.5, *rated.Rating)

	_, err = c.SubmitReview(404, "Alice", "ghost", 5)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 2, c.ledger.Len())
}

func TestControllerMinRatingUsesExactDerivedMean(t *testing.T) {
	c := newTestController(catalogOf25(), Options{})
	for i := 0; i < 19; i++ {
		_, err := c.SubmitReview(11, "Alice", "Good", 4)
		require.NoError(t, err)
	}
	_, err := c.SubmitReview(11, "Bob", "Fine", 3)
	require.NoError(t, err)

	mean, ok := c.DerivedRating(11)
	require.True(t, ok)
	assert.InDelta(t, 3.95, mean, 1e-9)

	view := c.Recompute(domain.Selection{Query: "Filament 11", MinRating: 4}, 1)
	assert.Zero(t, view.Matched)

	view = c.Recompute(domain.Selection{Query: "Filament 11", MinRating: 3}, 1)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 11, view.Items[0].ID)
}

func TestControllerPreferReviewRating(t *testing.T) {
	c := newTestController(catalogOf25(), Options{PreferReviewRating: true})
	_, err := c.SubmitReview(1, "Bob", "Meh", 1)
	require.NoError(t, err)

	f, err := c.Filament(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *f.Rating)

	view := c.Recompute(domain.Selection{MinRating: 4}, 1)
	for _, item := range view.Items {
		assert.NotEqual(t, 1, item.ID)
	}
}

func TestControllerConcurrentRecompute(t *testing.T) {
	c := newTestController(catalogOf25(), Options{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			view := c.Recompute(domain.Selection{Sort: domain.SortNameDesc}, page)
			assert.Equal(t, page, view.Page.CurrentPage)
		}(i%3 + 1)
	}
	wg.Wait()
}
