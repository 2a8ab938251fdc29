// Package app wires configuration into the catalog, sessions and HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/browse"
	"github.com/nazbav/spoolshelf/internal/catalog"
	"github.com/nazbav/spoolshelf/internal/guides"
	"github.com/nazbav/spoolshelf/internal/handlers"
	"github.com/nazbav/spoolshelf/internal/middleware"
	"github.com/nazbav/spoolshelf/internal/platform/config"
	"github.com/nazbav/spoolshelf/internal/prices"
	"github.com/nazbav/spoolshelf/internal/reviews"
	"github.com/nazbav/spoolshelf/internal/session"
)

// LoadCatalog reads the dataset and merges the optional prices table. A
// missing prices file is not an error.
func LoadCatalog(ctx context.Context, cfg config.CatalogConfig, logger *zap.Logger) (*catalog.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := catalog.Options{
		Synthesis: catalog.SynthesisPolicy{
			Mode: catalog.SynthesisMode(cfg.SynthesisMode),
			Seed: cfg.SynthesisSeed,
		},
		Logger: logger.Named("catalog"),
	}
	if path := strings.TrimSpace(cfg.PricesPath); path != "" {
		table, err := prices.LoadFile(path)
		switch {
		case err == nil:
			opts.PriceOverrides = table.Lowest()
			logger.Info("prices table loaded", zap.String("path", path), zap.Int("filaments", len(opts.PriceOverrides)))
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("no prices table", zap.String("path", path))
		default:
			logger.Warn("ignoring unreadable prices table", zap.Error(err))
		}
	}
	return catalog.LoadFile(ctx, cfg.DataPath, opts)
}

// ControllerFactory builds per-session controllers over a shared store.
func ControllerFactory(store *catalog.Store, cfg config.CatalogConfig) session.Factory {
	opts := browse.Options{
		PageSize:           cfg.PageSize,
		VisiblePageLinks:   cfg.VisiblePageLinks,
		Language:           cfg.Language,
		PreferReviewRating: cfg.PreferReviewRating,
	}
	return func() *browse.Controller {
		return browse.NewController(store, reviews.NewLedger(reviews.Deps{}), opts)
	}
}

// Server bundles the HTTP server with the session state it serves.
type Server struct {
	HTTP     *http.Server
	Sessions *session.Store
}

// NewServer assembles the HTTP server. A nil store serves the unavailable state.
func NewServer(cfg config.Config, store *catalog.Store, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	states := session.NewStore(ControllerFactory(store, cfg.Catalog), session.Options{
		IdleTTL: cfg.Session.IdleTTL,
		Logger:  logger.Named("session"),
	})
	cookies, err := middleware.NewSessions(middleware.SessionOptions{
		CookieName: cfg.Session.CookieName,
		SigningKey: []byte(cfg.Session.SigningKey),
		Secure:     cfg.Session.Secure,
		MaxAge:     cfg.Session.IdleTTL,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	h, err := handlers.New(handlers.Dependencies{
		Sessions: states,
		Guides: guides.NewLibrary(guides.Options{
			OverrideDir: cfg.Guides.OverrideDir,
			CacheTTL:    cfg.Guides.CacheTTL,
		}),
		SearchDebounce: cfg.UI.SearchDebounce,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build handlers: %w", err)
	}
	router, err := handlers.NewRouter(handlers.RouterConfig{
		Handlers:       h,
		Sessions:       cookies,
		Logger:         logger.Named("http"),
		RequestTimeout: cfg.Server.WriteTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &Server{
		HTTP: &http.Server{
			Addr:              net.JoinHostPort("", cfg.Server.Port),
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
		Sessions: states,
	}, nil
}
