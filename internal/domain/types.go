package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// LinkType enumerates the marketplaces a filament listing can point to.
type LinkType string

const (
	LinkOzon        LinkType = "ozon"
	LinkWildberries LinkType = "wildberries"
	LinkAli         LinkType = "ali"
	LinkWebsite     LinkType = "website"
	LinkOther       LinkType = "other"
)

// NormalizeLinkType maps free-form link types onto the known set, falling back to LinkOther.
func NormalizeLinkType(raw string) LinkType {
	switch LinkType(strings.ToLower(strings.TrimSpace(raw))) {
	case LinkOzon:
		return LinkOzon
	case LinkWildberries, "wb":
		return LinkWildberries
	case LinkAli, "aliexpress":
		return LinkAli
	case LinkWebsite:
		return LinkWebsite
	default:
		return LinkOther
	}
}

// Link is a purchase or manufacturer link attached to a filament.
type Link struct {
	Type LinkType `json:"type"`
	URL  string   `json:"url"`
}

// PrintProfile references a downloadable slicer profile.
type PrintProfile struct {
	Name string     `json:"name"`
	URL  string     `json:"url"`
	Temp FlexString `json:"temp,omitempty"`
	Bed  FlexString `json:"bed,omitempty"`
}

// Filament is one catalog record.
type Filament struct {
	ID           int
	Name         string
	Manufacturer string
	Type         string
	Weight       Weight
	// Price and Rating are nil when the dataset omits them and no synthesis applies.
	Price    *float64
	Rating   *float64
	Links    []Link
	Profiles []PrintProfile

	SpoolWeightG       *float64
	SpoolDiameterMM    *float64
	SpoolWidthMM       *float64
	InnerDiameterMM    *float64
	FilamentDiameterMM *float64
	Notes              string

	// Defaulted lists the fields that were filled in by the loader.
	Defaulted []string
}

// HasPrice reports whether the record carries a price.
func (f Filament) HasPrice() bool { return f.Price != nil }

// HasRating reports whether the record carries a rating.
func (f Filament) HasRating() bool { return f.Rating != nil }

// PriceOrZero returns the price or 0 when absent.
func (f Filament) PriceOrZero() float64 {
	if f.Price == nil {
		return 0
	}
	return *f.Price
}

// RatingOrZero returns the rating or 0 when absent.
func (f Filament) RatingOrZero() float64 {
	if f.Rating == nil {
		return 0
	}
	return *f.Rating
}

// Weight keeps both the raw dataset value and its numeric interpretation.
// Datasets carry weights either as numbers of grams or as strings like "750 г".
type Weight struct {
	Raw     string
	Grams   float64
	Numeric bool
}

// Present reports whether the dataset carried any weight value.
func (w Weight) Present() bool { return w.Raw != "" }

// ParseWeight interprets a raw weight string the way a lenient float parser would:
// the leading numeric prefix is used, anything after it is ignored.
func ParseWeight(raw string) Weight {
	raw = strings.TrimSpace(raw)
	w := Weight{Raw: raw}
	if raw == "" {
		return w
	}
	if grams, ok := leadingFloat(raw); ok {
		w.Grams = grams
		w.Numeric = true
	}
	return w
}

// WeightFromGrams builds a numeric weight.
func WeightFromGrams(grams float64) Weight {
	return Weight{
		Raw:     strconv.FormatFloat(grams, 'f', -1, 64),
		Grams:   grams,
		Numeric: true,
	}
}

// UnmarshalJSON accepts numbers and strings.
func (w *Weight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*w = Weight{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = ParseWeight(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*w = WeightFromGrams(n)
	return nil
}

// MarshalJSON writes numeric weights as numbers and everything else as the raw string.
func (w Weight) MarshalJSON() ([]byte, error) {
	if !w.Present() {
		return []byte("null"), nil
	}
	if w.Numeric && w.Raw == strconv.FormatFloat(w.Grams, 'f', -1, 64) {
		return json.Marshal(w.Grams)
	}
	return json.Marshal(w.Raw)
}

func leadingFloat(s string) (float64, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && s[frac] >= '0' && s[frac] <= '9' {
			frac++
			digits++
		}
		if frac > end+1 {
			end = frac
		}
	}
	if digits == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FlexString decodes JSON strings and numbers into a string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// WeightBucket is a coarse weight range used by the weight filter.
type WeightBucket string

const (
	// WeightUpTo500 covers spools up to 500 g.
	WeightUpTo500 WeightBucket = "0.5"
	// WeightUpTo750 covers 501–750 g.
	WeightUpTo750 WeightBucket = "0.75"
	// WeightUpTo1000 covers 751–1000 g.
	WeightUpTo1000 WeightBucket = "1"
	// WeightOver1000 covers everything above 1000 g.
	WeightOver1000 WeightBucket = "2"
)

// WeightBuckets lists the buckets in display order.
var WeightBuckets = []WeightBucket{WeightUpTo500, WeightUpTo750, WeightUpTo1000, WeightOver1000}

// Valid reports whether the bucket is one of the known ranges.
func (b WeightBucket) Valid() bool {
	switch b {
	case WeightUpTo500, WeightUpTo750, WeightUpTo1000, WeightOver1000:
		return true
	}
	return false
}

// SortKey selects the ordering of the filtered catalog.
type SortKey string

const (
	SortNameAsc    SortKey = "name-asc"
	SortNameDesc   SortKey = "name-desc"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRatingAsc  SortKey = "rating-asc"
	SortRatingDesc SortKey = "rating-desc"
)

// DefaultSort is applied when no sort key is requested.
const DefaultSort = SortNameAsc

// SortKeys lists the supported keys in display order.
var SortKeys = []SortKey{SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc, SortRatingAsc, SortRatingDesc}

// Wildcard is the selection value meaning "no constraint".
const Wildcard = "all"

// Selection captures the active search, filter and sort choices.
type Selection struct {
	Query         string
	Materials     []string
	Manufacturers []string
	Weights       []WeightBucket
	MinRating     int
	Sort          SortKey
}

// PageState is the pagination bookkeeping of one recompute.
type PageState struct {
	PageSize    int
	CurrentPage int
	TotalItems  int
	TotalPages  int
}

// PageLinkKind distinguishes entries of the pagination bar.
type PageLinkKind string

const (
	PageLinkPrev     PageLinkKind = "prev"
	PageLinkNext     PageLinkKind = "next"
	PageLinkNumber   PageLinkKind = "page"
	PageLinkEllipsis PageLinkKind = "ellipsis"
)

// PageLink is one entry of the pagination bar.
type PageLink struct {
	Kind     PageLinkKind
	Page     int
	Active   bool
	Disabled bool
}

// Review is a session-local user review of a filament.
type Review struct {
	ID          string
	FilamentID  int
	Author      string
	Text        string
	Rating      int
	SubmittedAt time.Time
}
