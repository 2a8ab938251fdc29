package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/middleware"
	"github.com/nazbav/spoolshelf/internal/platform/observability"
	"github.com/nazbav/spoolshelf/public"
)

// RouterConfig holds the collaborators of the HTTP router.
type RouterConfig struct {
	Handlers       *Handlers
	Sessions       *middleware.Sessions
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

// NewRouter assembles middleware and routes.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	if cfg.Handlers == nil || cfg.Sessions == nil {
		return nil, fmt.Errorf("router: handlers and sessions are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("embed static: %w", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.TraceMiddleware())
	r.Use(observability.InjectLoggerMiddleware(logger))
	r.Use(observability.RequestLoggerMiddleware())
	r.Use(observability.RecoveryMiddleware(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(timeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	h := cfg.Handlers
	r.Group(func(r chi.Router) {
		r.Use(middleware.HTMX)
		r.Use(cfg.Sessions.Middleware)
		r.Use(middleware.CSRF)

		r.Get("/", h.Index)
		r.Get("/catalog", h.CatalogFragment)
		r.Get("/filaments/{id}", h.Filament)
		r.Post("/filaments/{id}/reviews", h.SubmitReview)
		r.Get("/materials", h.Materials)
		r.Get("/materials/{slug}", h.Guide)

		r.Route("/api", func(r chi.Router) {
			r.Get("/filaments", h.APIFilaments)
			r.Get("/filaments/{id}", h.APIFilament)
			r.Get("/filaments/{id}/reviews", h.APIReviews)
			r.Post("/filaments/{id}/reviews", h.APISubmitReview)
		})
	})
	r.NotFound(h.notFoundHandler)
	return r, nil
}

func (h *Handlers) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "Проверьте адрес или вернитесь в каталог.")
}
