package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazbav/spoolshelf/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func sampleFilament() domain.Filament {
	return domain.Filament{
		ID:           1,
		Name:         "Geeetech PLA Silk",
		Manufacturer: "Geeetech",
		Type:         "PLA",
		Weight:       domain.ParseWeight("750"),
		Price:        ptr(990),
		Rating:       ptr(4.4),
	}
}

func TestMatchesWildcardSelectionAcceptsEverything(t *testing.T) {
	records := []domain.Filament{
		sampleFilament(),
		{ID: 2, Name: "Без названия", Type: "PLA"},
		{ID: 3, Name: "ABS+", Manufacturer: "eSun", Type: "ABS", Weight: domain.ParseWeight("катушка")},
	}
	selections := []domain.Selection{
		{},
		{Materials: []string{"all"}, Manufacturers: []string{"all"}, Weights: []domain.WeightBucket{"all"}},
		{Query: "   ", Sort: domain.SortPriceDesc},
	}
	for _, sel := range selections {
		for _, f := range records {
			assert.True(t, Matches(f, sel), "record %d with %+v", f.ID, sel)
		}
	}
}

func TestMatchesWeightBucketExclusive(t *testing.T) {
	weights := map[string]domain.Weight{
		"text":      domain.ParseWeight("750"),
		"grams":     domain.WeightFromGrams(750),
		"with unit": domain.ParseWeight("750 г"),
	}
	for name, w := range weights {
		f := sampleFilament()
		f.Weight = w
		for _, b := range domain.WeightBuckets {
			sel := domain.Selection{Weights: []domain.WeightBucket{b}}
			assert.Equal(t, b == domain.WeightUpTo750, Matches(f, sel), "%s weight, bucket %s", name, b)
		}
	}
}

func TestBucketFor(t *testing.T) {
	cases := map[float64]domain.WeightBucket{
		250:  domain.WeightUpTo500,
		500:  domain.WeightUpTo500,
		501:  domain.WeightUpTo750,
		750:  domain.WeightUpTo750,
		1000: domain.WeightUpTo1000,
		1001: domain.WeightOver1000,
		3000: domain.WeightOver1000,
	}
	for grams, want := range cases {
		assert.Equal(t, want, BucketFor(grams), "grams %v", grams)
	}
}

func TestMatchesWeightTextFallback(t *testing.T) {
	f := domain.Filament{ID: 9, Name: "x", Type: "PLA", Weight: domain.ParseWeight("катушка 2500г")}
	require.False(t, f.Weight.Numeric)

	assert.True(t, Matches(f, domain.Selection{Weights: []domain.WeightBucket{domain.WeightOver1000}}))
	assert.False(t, Matches(f, domain.Selection{Weights: []domain.WeightBucket{domain.WeightUpTo500}}))
}

func TestMatchesMissingWeightExcludedByActiveFilter(t *testing.T) {
	f := domain.Filament{ID: 9, Name: "x", Type: "PLA"}
	assert.False(t, Matches(f, domain.Selection{Weights: []domain.WeightBucket{domain.WeightUpTo1000}}))
	assert.True(t, Matches(f, domain.Selection{Weights: []domain.WeightBucket{"7kg"}}), "unknown buckets are ignored")
}

func TestMatchesQueryIsLiteralAndCaseInsensitive(t *testing.T) {
	f := sampleFilament()
	assert.True(t, Matches(f, domain.Selection{Query: "geeETECH"}))
	assert.True(t, Matches(f, domain.Selection{Query: "silk"}))
	assert.False(t, Matches(f, domain.Selection{Query: "pl.*silk"}))

	regexy := domain.Filament{ID: 5, Name: "PLA+ (1.75)", Type: "PLA"}
	assert.True(t, Matches(regexy, domain.Selection{Query: "a+ (1."}))
}

func TestMatchesRatingAndSets(t *testing.T) {
	f := sampleFilament()
	assert.True(t, Matches(f, domain.Selection{MinRating: 4}))
	assert.False(t, Matches(f, domain.Selection{MinRating: 5}))

	unrated := f
	unrated.Rating = nil
	assert.False(t, Matches(unrated, domain.Selection{MinRating: 1}))

	assert.True(t, Matches(f, domain.Selection{Materials: []string{"PETG", "PLA"}}))
	assert.False(t, Matches(f, domain.Selection{Manufacturers: []string{"eSun"}}))

	nameless := f
	nameless.Manufacturer = ""
	assert.False(t, Matches(nameless, domain.Selection{Manufacturers: []string{"Geeetech"}}))
}

func TestFilterPreservesOrder(t *testing.T) {
	items := []domain.Filament{
		{ID: 3, Name: "c", Type: "PLA"},
		{ID: 1, Name: "a", Type: "ABS"},
		{ID: 2, Name: "b", Type: "PLA"},
	}
	got := Filter(items, domain.Selection{Materials: []string{"PLA"}})
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}
