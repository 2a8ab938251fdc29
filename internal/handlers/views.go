package handlers

import (
	"html/template"
	"slices"
	"strconv"

	"github.com/nazbav/spoolshelf/internal/browse"
	"github.com/nazbav/spoolshelf/internal/domain"
	"github.com/nazbav/spoolshelf/internal/format"
	"github.com/nazbav/spoolshelf/internal/guides"
)

type layoutData struct {
	Title     string
	CSRFToken string
	Path      string
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type filtersView struct {
	Query         string
	Materials     []option
	Manufacturers []option
	Weights       []option
	Ratings       []option
	Sorts         []option
	DebounceMS    int64
}

type pageLinkView struct {
	Kind        domain.PageLinkKind
	Label       string
	URL         string
	FragmentURL string
	Active      bool
	Disabled    bool
}

type resultsView struct {
	Cards       template.HTML
	Pagination  []pageLinkView
	Page        domain.PageState
	Matched     int
	Empty       bool
	Unavailable bool
}

type catalogPage struct {
	layoutData
	Filters filtersView
	Results resultsView
}

type reviewForm struct {
	Author  string
	Text    string
	Rating  int
	invalid []string
}

// Invalid reports whether field failed validation on the last submission.
func (f reviewForm) Invalid(field string) bool { return slices.Contains(f.invalid, field) }

type reviewSection struct {
	FilamentID int
	CSRFToken  string
	Rating     *float64
	Reviews    []domain.Review
	Form       reviewForm
	Notice     string
}

type filamentPage struct {
	layoutData
	Filament      domain.Filament
	Hints         guides.Hints
	GuideSlug     string
	ReviewSection reviewSection
}

type materialsPage struct {
	layoutData
	Guides []guides.Guide
}

type guidePage struct {
	layoutData
	Guide guides.Guide
}

type errorPage struct {
	layoutData
	Heading string
	Message string
}

func buildFilters(view browse.ViewState, debounceMS int64) filtersView {
	sel := view.Selection
	fv := filtersView{
		Query:         sel.Query,
		Materials:     facetOptions(view.Materials, sel.Materials),
		Manufacturers: facetOptions(view.Manufacturers, sel.Manufacturers),
		DebounceMS:    debounceMS,
	}
	for _, b := range domain.WeightBuckets {
		fv.Weights = append(fv.Weights, option{
			Value:    string(b),
			Label:    format.WeightBucketLabel(b),
			Selected: slices.Contains(sel.Weights, b),
		})
	}
	fv.Ratings = append(fv.Ratings, option{Value: domain.Wildcard, Label: "Любой", Selected: sel.MinRating <= 0})
	for n := 1; n <= 5; n++ {
		fv.Ratings = append(fv.Ratings, option{
			Value:    strconv.Itoa(n),
			Label:    strconv.Itoa(n) + "+",
			Selected: sel.MinRating == n,
		})
	}
	for _, k := range domain.SortKeys {
		fv.Sorts = append(fv.Sorts, option{Value: string(k), Label: format.SortLabel(k), Selected: sel.Sort == k})
	}
	return fv
}

func facetOptions(values, selected []string) []option {
	out := make([]option, 0, len(values))
	for _, v := range values {
		out = append(out, option{Value: v, Label: v, Selected: slices.Contains(selected, v)})
	}
	return out
}

func buildPagination(view browse.ViewState) []pageLinkView {
	out := make([]pageLinkView, 0, len(view.Links))
	for _, l := range view.Links {
		lv := pageLinkView{Kind: l.Kind, Active: l.Active, Disabled: l.Disabled}
		switch l.Kind {
		case domain.PageLinkPrev:
			lv.Label = "‹ Назад"
		case domain.PageLinkNext:
			lv.Label = "Вперёд ›"
		case domain.PageLinkNumber:
			lv.Label = strconv.Itoa(l.Page)
		}
		if l.Kind != domain.PageLinkEllipsis {
			lv.URL = browse.PageURL("/", view.Selection, l.Page)
			lv.FragmentURL = browse.PageURL("/catalog", view.Selection, l.Page)
		}
		out = append(out, lv)
	}
	return out
}
