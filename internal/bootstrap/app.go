package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
	"github.com/yanqian/aqi-search/internal/infra/config"
)

const shutdownTimeout = 10 * time.Second

// App runs the AQI backend HTTP server until its context ends.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	svc    aqi.Service
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, svc aqi.Service) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, svc: svc}
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server fails.
// In-flight lookups get shutdownTimeout to finish.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address, "cacheTtl", a.cfg.Cache.TTL.String())
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := a.server.Shutdown(shutdownCtx)
		a.logStats()
		return err
	case err := <-errCh:
		a.logStats()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) logStats() {
	stats := a.svc.Stats()
	a.logger.Info("lookup totals", "live", stats.Live, "cached", stats.Cached, "failed", stats.Failed, "total", stats.Total())
}
