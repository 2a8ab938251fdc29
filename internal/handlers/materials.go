package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/guides"
	"github.com/nazbav/spoolshelf/internal/platform/requestctx"
)

// Materials lists the available material guides.
func (h *Handlers) Materials(w http.ResponseWriter, r *http.Request) {
	list, err := h.guides.List(r.Context())
	if err != nil {
		requestctx.Logger(r.Context()).Error("list guides", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render.Page(w, r, http.StatusOK, "materials", materialsPage{
		layoutData: h.layout(r, "Материалы"),
		Guides:     list,
	})
}

// Guide renders one material guide.
func (h *Handlers) Guide(w http.ResponseWriter, r *http.Request) {
	g, err := h.guides.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, guides.ErrNotFound) {
			h.notFound(w, r, "Руководство по этому материалу пока не написано.")
			return
		}
		requestctx.Logger(r.Context()).Error("load guide", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render.Page(w, r, http.StatusOK, "guide", guidePage{
		layoutData: h.layout(r, g.Title),
		Guide:      g,
	})
}
