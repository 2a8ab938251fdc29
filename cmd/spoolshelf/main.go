package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/app"
	"github.com/nazbav/spoolshelf/internal/platform/config"
	"github.com/nazbav/spoolshelf/internal/platform/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", verr.Fields())
		} else {
			fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		}
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(observability.LoggerOptions{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Service:     "spoolshelf",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("spoolshelf")

	store, err := app.LoadCatalog(ctx, cfg.Catalog, logger)
	if err != nil {
		// The server still starts and shows the catalog as unavailable.
		logger.Error("catalog unavailable", zap.String("path", cfg.Catalog.DataPath), zap.Error(err))
		store = nil
	}

	srv, err := app.NewServer(cfg, store, logger)
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		srv.Sessions.Run(ctx, cfg.Session.SweepInterval)
	}()

	serverLogger := logger.Named("http").With(zap.String("addr", srv.HTTP.Addr))
	go func() {
		serverLogger.Info("spoolshelf listening")
		if err := srv.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.HTTP.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	wg.Wait()
}
