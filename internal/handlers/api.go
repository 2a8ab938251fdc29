package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/nazbav/spoolshelf/internal/browse"
	"github.com/nazbav/spoolshelf/internal/catalog"
	"github.com/nazbav/spoolshelf/internal/domain"
	"github.com/nazbav/spoolshelf/internal/platform/httpx"
	"github.com/nazbav/spoolshelf/internal/reviews"
)

type filamentJSON struct {
	ID                 int                   `json:"id"`
	Name               string                `json:"name"`
	Manufacturer       string                `json:"manufacturer"`
	Type               string                `json:"type"`
	Weight             domain.Weight         `json:"weight"`
	Price              *float64              `json:"price"`
	Rating             *float64              `json:"rating"`
	Links              []domain.Link         `json:"links"`
	PrintProfiles      []domain.PrintProfile `json:"printProfiles,omitempty"`
	SpoolWeightG       *float64              `json:"weight_g,omitempty"`
	SpoolDiameterMM    *float64              `json:"diameter_mm,omitempty"`
	SpoolWidthMM       *float64              `json:"width_mm,omitempty"`
	InnerDiameterMM    *float64              `json:"inner_diameter_mm,omitempty"`
	FilamentDiameterMM *float64              `json:"filament_diameter_mm,omitempty"`
}

type pageJSON struct {
	PageSize    int `json:"pageSize"`
	CurrentPage int `json:"currentPage"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

type pageLinkJSON struct {
	Kind     domain.PageLinkKind `json:"kind"`
	Page     int                 `json:"page,omitempty"`
	Active   bool                `json:"active,omitempty"`
	Disabled bool                `json:"disabled,omitempty"`
	URL      string              `json:"url,omitempty"`
}

type selectionJSON struct {
	Query         string                `json:"q"`
	Materials     []string              `json:"material"`
	Manufacturers []string              `json:"manufacturer"`
	Weights       []domain.WeightBucket `json:"weight"`
	MinRating     int                   `json:"rating"`
	Sort          domain.SortKey        `json:"sort"`
}

type listJSON struct {
	Items     []filamentJSON `json:"items"`
	Page      pageJSON       `json:"page"`
	Links     []pageLinkJSON `json:"links"`
	Matched   int            `json:"matched"`
	Selection selectionJSON  `json:"selection"`
	Facets    struct {
		Materials     []string `json:"materials"`
		Manufacturers []string `json:"manufacturers"`
	} `json:"facets"`
}

type reviewJSON struct {
	ID          string    `json:"id"`
	FilamentID  int       `json:"filamentId"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	Rating      int       `json:"rating"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type reviewsJSON struct {
	FilamentID    int          `json:"filamentId"`
	Reviews       []reviewJSON `json:"reviews"`
	DerivedRating *float64     `json:"derivedRating"`
}

type reviewRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

var (
	errCatalogUnavailable = httpx.NewError("catalog_unavailable", "catalog data is unavailable", http.StatusServiceUnavailable)
	errFilamentNotFound   = httpx.NewError("filament_not_found", "filament not found", http.StatusNotFound)
)

// APIFilaments returns the current page of the selection as JSON.
func (h *Handlers) APIFilaments(w http.ResponseWriter, r *http.Request) {
	view := h.recompute(r)
	if view.Unavailable {
		httpx.WriteError(r.Context(), w, errCatalogUnavailable)
		return
	}
	out := listJSON{
		Items:   make([]filamentJSON, 0, len(view.Items)),
		Page:    pageJSON(view.Page),
		Links:   make([]pageLinkJSON, 0, len(view.Links)),
		Matched: view.Matched,
		Selection: selectionJSON{
			Query:         view.Selection.Query,
			Materials:     nonNil(view.Selection.Materials),
			Manufacturers: nonNil(view.Selection.Manufacturers),
			Weights:       nonNil(view.Selection.Weights),
			MinRating:     view.Selection.MinRating,
			Sort:          view.Selection.Sort,
		},
	}
	for _, f := range view.Items {
		out.Items = append(out.Items, toFilamentJSON(f))
	}
	for _, l := range view.Links {
		lj := pageLinkJSON{Kind: l.Kind, Page: l.Page, Active: l.Active, Disabled: l.Disabled}
		if l.Kind != domain.PageLinkEllipsis {
			lj.URL = browse.PageURL("/api/filaments", view.Selection, l.Page)
		}
		out.Links = append(out.Links, lj)
	}
	out.Facets.Materials = nonNil(view.Materials)
	out.Facets.Manufacturers = nonNil(view.Manufacturers)
	httpx.WriteJSON(w, http.StatusOK, out)
}

// APIFilament returns one record with the session's rating applied.
func (h *Handlers) APIFilament(w http.ResponseWriter, r *http.Request) {
	id, ok := filamentID(r)
	if !ok {
		httpx.WriteError(r.Context(), w, errFilamentNotFound)
		return
	}
	f, err := h.controller(r).Filament(id)
	if err != nil {
		h.apiFilamentError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toFilamentJSON(f))
}

// APIReviews lists the session's reviews of a record with the derived rating.
func (h *Handlers) APIReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := filamentID(r)
	if !ok {
		httpx.WriteError(r.Context(), w, errFilamentNotFound)
		return
	}
	ctrl := h.controller(r)
	if _, err := ctrl.Filament(id); err != nil {
		h.apiFilamentError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reviewsPayload(ctrl, id))
}

// APISubmitReview accepts a JSON review.
func (h *Handlers) APISubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := filamentID(r)
	if !ok {
		httpx.WriteError(r.Context(), w, errFilamentNotFound)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_json", err.Error(), http.StatusBadRequest))
		return
	}
	ctrl := h.controller(r)
	review, err := ctrl.SubmitReview(id, req.Author, req.Text, req.Rating)
	if err != nil {
		var verr *reviews.ValidationError
		if errors.As(err, &verr) {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_review", verr.Error(), http.StatusUnprocessableEntity).
				WithFields(verr.Fields()...))
			return
		}
		h.apiFilamentError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toReviewJSON(review))
}

func (h *Handlers) apiFilamentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnavailable):
		httpx.WriteError(r.Context(), w, errCatalogUnavailable)
	case browse.IsNotFound(err):
		httpx.WriteError(r.Context(), w, errFilamentNotFound)
	default:
		httpx.WriteError(r.Context(), w, httpx.NewError("internal", "internal error", http.StatusInternalServerError))
	}
}

func reviewsPayload(ctrl *browse.Controller, id int) reviewsJSON {
	list := ctrl.Reviews(id)
	out := reviewsJSON{FilamentID: id, Reviews: make([]reviewJSON, 0, len(list))}
	for _, rv := range list {
		out.Reviews = append(out.Reviews, toReviewJSON(rv))
	}
	if v, ok := ctrl.DerivedRating(id); ok {
		out.DerivedRating = &v
	}
	return out
}

func toFilamentJSON(f domain.Filament) filamentJSON {
	links := f.Links
	if links == nil {
		links = []domain.Link{}
	}
	return filamentJSON{
		ID:                 f.ID,
		Name:               f.Name,
		Manufacturer:       f.Manufacturer,
		Type:               f.Type,
		Weight:             f.Weight,
		Price:              f.Price,
		Rating:             f.Rating,
		Links:              links,
		PrintProfiles:      f.Profiles,
		SpoolWeightG:       f.SpoolWeightG,
		SpoolDiameterMM:    f.SpoolDiameterMM,
		SpoolWidthMM:       f.SpoolWidthMM,
		InnerDiameterMM:    f.InnerDiameterMM,
		FilamentDiameterMM: f.FilamentDiameterMM,
	}
}

func toReviewJSON(r domain.Review) reviewJSON {
	return reviewJSON(r)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
