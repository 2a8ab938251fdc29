// Package handlers serves the catalog pages, htmx fragments and the JSON API.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/browse"
	"github.com/nazbav/spoolshelf/internal/guides"
	"github.com/nazbav/spoolshelf/internal/middleware"
	"github.com/nazbav/spoolshelf/internal/session"
)

// Dependencies wires the handlers to shared services.
type Dependencies struct {
	Sessions *session.Store
	Guides   *guides.Library
	Renderer *Renderer
	// SearchDebounce delays search requests while the visitor is typing.
	SearchDebounce time.Duration
	Logger         *zap.Logger
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	sessions *session.Store
	guides   *guides.Library
	render   *Renderer
	debounce time.Duration
	logger   *zap.Logger
}

// New validates deps and builds the handler set.
func New(deps Dependencies) (*Handlers, error) {
	if deps.Sessions == nil {
		return nil, errors.New("handlers: session store is required")
	}
	if deps.Renderer == nil {
		r, err := NewRenderer()
		if err != nil {
			return nil, err
		}
		deps.Renderer = r
	}
	if deps.Guides == nil {
		deps.Guides = guides.NewLibrary(guides.Options{})
	}
	if deps.SearchDebounce <= 0 {
		deps.SearchDebounce = 300 * time.Millisecond
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Handlers{
		sessions: deps.Sessions,
		guides:   deps.Guides,
		render:   deps.Renderer,
		debounce: deps.SearchDebounce,
		logger:   deps.Logger,
	}, nil
}

func (h *Handlers) controller(r *http.Request) *browse.Controller {
	return h.sessions.Controller(middleware.SessionFromContext(r.Context()).ID)
}

func (h *Handlers) layout(r *http.Request, title string) layoutData {
	return layoutData{
		Title:     title,
		CSRFToken: middleware.SessionFromContext(r.Context()).CSRFToken,
		Path:      r.URL.Path,
	}
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request, message string) {
	h.render.Page(w, r, http.StatusNotFound, "error", errorPage{
		layoutData: h.layout(r, "Не найдено"),
		Heading:    "Страница не найдена",
		Message:    message,
	})
}

func (h *Handlers) unavailable(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, r, http.StatusServiceUnavailable, "error", errorPage{
		layoutData: h.layout(r, "Каталог недоступен"),
		Heading:    "Каталог временно недоступен",
		Message:    "Не удалось загрузить данные о филаментах. Попробуйте позже.",
	})
}
