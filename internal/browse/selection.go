package browse

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/nazbav/spoolshelf/internal/domain"
)

// Query parameter names shared by the HTML views, the JSON API and page links.
const (
	ParamQuery        = "q"
	ParamMaterial     = "material"
	ParamManufacturer = "manufacturer"
	ParamWeight       = "weight"
	ParamRating       = "rating"
	ParamSort         = "sort"
	ParamPage         = "page"
)

// ParseSelection reads the selection and requested page from query values.
// Unknown weight buckets and out-of-range ratings are dropped so they act as
// no constraint; a wildcard anywhere in a group clears that group.
func ParseSelection(values url.Values) (domain.Selection, int) {
	sel := domain.Selection{
		Query:         strings.TrimSpace(values.Get(ParamQuery)),
		Materials:     cleanSet(values[ParamMaterial]),
		Manufacturers: cleanSet(values[ParamManufacturer]),
		Sort:          domain.SortKey(strings.TrimSpace(values.Get(ParamSort))),
	}
	if sel.Sort == "" {
		sel.Sort = domain.DefaultSort
	}

	weights := cleanSet(values[ParamWeight])
	for _, w := range weights {
		if b := domain.WeightBucket(w); b.Valid() {
			sel.Weights = append(sel.Weights, b)
		}
	}

	if raw := strings.TrimSpace(values.Get(ParamRating)); raw != "" && raw != domain.Wildcard {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n <= 5 {
			sel.MinRating = n
		}
	}

	page := 1
	if raw := strings.TrimSpace(values.Get(ParamPage)); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	return sel, page
}

// EncodeSelection is the inverse of ParseSelection. Defaults are omitted so the
// unfiltered first page encodes to an empty query.
func EncodeSelection(sel domain.Selection, page int) url.Values {
	values := url.Values{}
	if q := strings.TrimSpace(sel.Query); q != "" {
		values.Set(ParamQuery, q)
	}
	for _, m := range sel.Materials {
		values.Add(ParamMaterial, m)
	}
	for _, m := range sel.Manufacturers {
		values.Add(ParamManufacturer, m)
	}
	for _, w := range sel.Weights {
		values.Add(ParamWeight, string(w))
	}
	if sel.MinRating > 0 {
		values.Set(ParamRating, strconv.Itoa(sel.MinRating))
	}
	if sel.Sort != "" && sel.Sort != domain.DefaultSort {
		values.Set(ParamSort, string(sel.Sort))
	}
	if page > 1 {
		values.Set(ParamPage, strconv.Itoa(page))
	}
	return values
}

// PageURL renders the query string for page within the current selection.
func PageURL(base string, sel domain.Selection, page int) string {
	encoded := EncodeSelection(sel, page).Encode()
	if encoded == "" {
		return base
	}
	return base + "?" + encoded
}

func cleanSet(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if v == domain.Wildcard {
			return nil
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
