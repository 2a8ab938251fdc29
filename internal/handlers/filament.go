package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/browse"
	"github.com/nazbav/spoolshelf/internal/catalog"
	"github.com/nazbav/spoolshelf/internal/domain"
	"github.com/nazbav/spoolshelf/internal/guides"
	"github.com/nazbav/spoolshelf/internal/middleware"
	"github.com/nazbav/spoolshelf/internal/platform/requestctx"
	"github.com/nazbav/spoolshelf/internal/reviews"
)

const reviewAccepted = "Спасибо! Ваш отзыв добавлен."

// Filament renders the detail page of one record.
func (h *Handlers) Filament(w http.ResponseWriter, r *http.Request) {
	id, ok := filamentID(r)
	if !ok {
		h.notFound(w, r, "Такого филамента нет в каталоге.")
		return
	}
	ctrl := h.controller(r)
	f, err := ctrl.Filament(id)
	if err != nil {
		h.filamentError(w, r, err)
		return
	}
	h.render.Page(w, r, http.StatusOK, "filament", h.filamentPage(r, ctrl, f, reviewForm{}, ""))
}

// SubmitReview accepts the review form. htmx requests get the reviews region
// back; plain posts are redirected to the detail page. Validation failures
// answer 422 with the form and its field errors.
func (h *Handlers) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := filamentID(r)
	if !ok {
		h.notFound(w, r, "Такого филамента нет в каталоге.")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := reviewForm{
		Author: r.PostFormValue("author"),
		Text:   r.PostFormValue("text"),
	}
	form.Rating, _ = strconv.Atoi(strings.TrimSpace(r.PostFormValue("rating")))

	ctrl := h.controller(r)
	review, err := ctrl.SubmitReview(id, form.Author, form.Text, form.Rating)
	if err != nil {
		var verr *reviews.ValidationError
		if !errors.As(err, &verr) {
			h.filamentError(w, r, err)
			return
		}
		form.invalid = verr.Fields()
		f, ferr := ctrl.Filament(id)
		if ferr != nil {
			h.filamentError(w, r, ferr)
			return
		}
		page := h.filamentPage(r, ctrl, f, form, "")
		if middleware.IsHTMX(r.Context()) {
			h.render.Fragment(w, r, http.StatusUnprocessableEntity, "reviews", page.ReviewSection)
			return
		}
		h.render.Page(w, r, http.StatusUnprocessableEntity, "filament", page)
		return
	}

	requestctx.Logger(r.Context()).Info("review accepted",
		zap.String("review_id", review.ID),
		zap.Int("filament_id", id),
		zap.Int("rating", review.Rating),
	)
	if !middleware.IsHTMX(r.Context()) {
		http.Redirect(w, r, "/filaments/"+strconv.Itoa(id)+"#reviews", http.StatusSeeOther)
		return
	}
	f, err := ctrl.Filament(id)
	if err != nil {
		h.filamentError(w, r, err)
		return
	}
	page := h.filamentPage(r, ctrl, f, reviewForm{}, reviewAccepted)
	h.render.Fragment(w, r, http.StatusOK, "reviews", page.ReviewSection)
}

func (h *Handlers) filamentPage(r *http.Request, ctrl *browse.Controller, f domain.Filament, form reviewForm, notice string) filamentPage {
	layout := h.layout(r, f.Name)
	page := filamentPage{
		layoutData: layout,
		Filament:   f,
		Hints:      guides.HintsFor(f.Type),
		ReviewSection: reviewSection{
			FilamentID: f.ID,
			CSRFToken:  layout.CSRFToken,
			Rating:     f.Rating,
			Reviews:    ctrl.Reviews(f.ID),
			Form:       form,
			Notice:     notice,
		},
	}
	if h.guides.Has(f.Type) {
		page.GuideSlug = guides.SlugFor(f.Type)
	}
	return page
}

func (h *Handlers) filamentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnavailable):
		h.unavailable(w, r)
	case browse.IsNotFound(err):
		h.notFound(w, r, "Такого филамента нет в каталоге.")
	default:
		requestctx.Logger(r.Context()).Error("load filament", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func filamentID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	return id, true
}
