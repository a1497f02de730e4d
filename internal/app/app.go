package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arnabmitra/index-symbols/internal/cache"
	"github.com/arnabmitra/index-symbols/internal/config"
	"github.com/arnabmitra/index-symbols/internal/database"
	"github.com/arnabmitra/index-symbols/internal/exchange"
	"github.com/arnabmitra/index-symbols/internal/fetch"
	"github.com/arnabmitra/index-symbols/internal/handler"
	"github.com/arnabmitra/index-symbols/internal/metrics"
	"github.com/arnabmitra/index-symbols/internal/middleware"
	"github.com/arnabmitra/index-symbols/internal/symbols"
	"github.com/arnabmitra/index-symbols/internal/symbolstore"
	"github.com/arnabmitra/index-symbols/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var _ symbols.Forgetter = (*cache.CachedFetcher)(nil)

type App struct {
	logger   *slog.Logger
	cfg      config.Config
	router   *http.ServeMux
	registry *exchange.Registry
	db       *pgxpool.Pool
	rdb      *redis.Client
}

func New(logger *slog.Logger, cfg config.Config, registry *exchange.Registry) *App {
	return &App{
		logger:   logger,
		cfg:      cfg,
		router:   http.NewServeMux(),
		registry: registry,
	}
}

// NewFetcher builds the transport used by the acquirer: HTTP for web sources, the local
// filesystem for paths, and a Redis payload cache in front of both when rdb is not nil.
func NewFetcher(cfg config.Config, rdb *redis.Client, logger *slog.Logger) symbols.Fetcher {
	var f symbols.Fetcher = fetch.Router{
		Web:   fetch.NewHTTPClient(cfg.UserAgent, cfg.FetchTimeout),
		Local: fetch.File{},
	}
	if rdb != nil {
		f = cache.New(rdb, f, cfg.CacheTTL, logger)
	}
	return f
}

// NewAcquirer wires an acquirer with the configured timeout, worker count and metrics.
func NewAcquirer(cfg config.Config, registry *exchange.Registry, fetcher symbols.Fetcher, logger *slog.Logger) *symbols.Acquirer {
	return symbols.NewAcquirer(registry, fetcher, logger,
		symbols.WithTimeout(cfg.FetchTimeout),
		symbols.WithWorkers(cfg.FetchWorkers),
		symbols.WithObserver(metrics.Observer{}),
	)
}

// Start serves the HTTP API and runs the periodic collector until ctx is done. Postgres and
// Redis are optional: without them symbols are kept in memory, payloads are not cached and
// acquisition is not rate limited.
func (a *App) Start(ctx context.Context) error {
	var store symbolstore.Repository
	if a.cfg.DatabaseURL != "" {
		db, err := database.Connect(ctx, a.logger, a.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to db: %w", err)
		}
		a.db = db
		defer db.Close()
		store = symbolstore.New(db, a.logger)
	} else {
		a.logger.Warn("DATABASE_URL not set, symbols are kept in memory only")
	}

	rdb, err := cache.Connect(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword)
	if err != nil {
		a.logger.Warn("redis unavailable, running without payload cache", slog.Any("error", err))
	} else {
		a.rdb = rdb
		defer rdb.Close()
	}

	acquirer := NewAcquirer(a.cfg, a.registry, NewFetcher(a.cfg, a.rdb, a.logger), a.logger)
	symbolsHandler := handler.NewSymbolsHandler(a.logger, a.registry, acquirer, store)

	a.loadRoutes(symbolsHandler)
	if a.cfg.EnablePprof {
		a.loadProfilingRoutes()
	}

	collector := worker.NewSymbolCollector(a.logger, acquirer, store, symbolsHandler.Publish, a.cfg.CollectIDs, a.cfg.CollectInterval)
	collector.Start()
	defer collector.Stop()

	server := http.Server{
		Addr:    a.cfg.HTTPAddr,
		Handler: middleware.Logging(a.logger, a.router),
	}

	done := make(chan struct{})
	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("failed to listen and serve", slog.Any("error", err))
		}
		close(done)
	}()

	a.logger.Info("Server listening", slog.String("addr", a.cfg.HTTPAddr))
	select {
	case <-done:
		break
	case <-ctx.Done():
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		server.Shutdown(ctx)
		cancel()
	}

	return nil
}
