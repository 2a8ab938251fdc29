package handlers

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/browse"
	"github.com/nazbav/spoolshelf/internal/highlight"
	"github.com/nazbav/spoolshelf/internal/middleware"
	"github.com/nazbav/spoolshelf/internal/platform/requestctx"
)

// Index renders the full catalog page for the selection in the query string.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	view := h.recompute(r)
	status := http.StatusOK
	if view.Unavailable {
		status = http.StatusServiceUnavailable
	}
	h.render.Page(w, r, status, "catalog", catalogPage{
		layoutData: h.layout(r, "Каталог"),
		Filters:    buildFilters(view, h.debounce.Milliseconds()),
		Results:    h.results(r, view),
	})
}

// CatalogFragment answers htmx search, filter, sort and page requests with the
// results region only. Plain requests get the full page.
func (h *Handlers) CatalogFragment(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsHTMX(r.Context()) {
		h.Index(w, r)
		return
	}
	view := h.recompute(r)
	w.Header().Set("HX-Push-Url", browse.PageURL("/", view.Selection, view.Page.CurrentPage))
	h.render.Fragment(w, r, http.StatusOK, "results", h.results(r, view))
}

func (h *Handlers) recompute(r *http.Request) browse.ViewState {
	sel, page := browse.ParseSelection(r.URL.Query())
	return h.controller(r).Recompute(sel, page)
}

func (h *Handlers) results(r *http.Request, view browse.ViewState) resultsView {
	rv := resultsView{
		Pagination:  buildPagination(view),
		Page:        view.Page,
		Matched:     view.Matched,
		Empty:       view.Empty(),
		Unavailable: view.Unavailable,
	}
	if view.Unavailable || len(view.Items) == 0 {
		return rv
	}
	cards, err := h.render.String("cards", view.Items)
	if err != nil {
		requestctx.Logger(r.Context()).Error("render cards", zap.Error(err))
		return rv
	}
	marked, _, err := highlight.HighlightFragment(cards, view.Selection.Query)
	if err != nil {
		requestctx.Logger(r.Context()).Warn("highlight cards", zap.Error(err))
		marked = cards
	}
	// Both inputs come from html/template output; re-rendering keeps them escaped.
	rv.Cards = template.HTML(marked)
	return rv
}
