package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/od-mailer/internal/application"
	"github.com/example/od-mailer/internal/config"
	"github.com/example/od-mailer/internal/overlap"
	"github.com/example/od-mailer/internal/timetable"
	"github.com/example/od-mailer/internal/timetable/sqlite"
)

const memoryCacheEntries = 4

// app holds the wired service graph shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *sqlite.Store
	repo    *timetable.Repository
	service *application.ODService
	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var sources []timetable.Source
	if cfg.TimetableBaseURL != "" {
		sources = timetable.HTTPSources(cfg.TimetableBaseURL, cfg.FetchTimeout, cfg.TimetableSources...)
	} else {
		sources = timetable.DirSources(cfg.TimetableDir, cfg.TimetableSources...)
	}

	if cfg.SQLiteDSN != "" {
		store, err := openStore(ctx, cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
		sources = append(sources, sqlite.NewSource(store))
	}

	loader := timetable.NewLoader(logger, sources...).WithConcurrency(len(sources))
	a.repo = timetable.NewRepository(loader, a.newCache(ctx), cfg.CacheTTL, logger)
	engine := overlap.NewEngine(overlap.LogTracer{Logger: logger}, cfg.ResolveWorkers)

	var store application.TimetableStore
	if a.store != nil {
		store = a.store
	}
	a.service = application.NewODService(a.repo, store, engine, uuid.NewString, logger)

	logger.Debug("timetable sources configured", "sources", loader.Sources(), "cache_ttl", cfg.CacheTTL)
	return a, nil
}

func openStore(ctx context.Context, dsn string) (*sqlite.Store, error) {
	store, err := sqlite.Open(ctx, sqlite.DefaultConfig(dsn))
	if err != nil {
		return nil, fmt.Errorf("open timetable store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return store, nil
}

// newCache prefers Redis when configured and reachable, and otherwise keeps
// load results in process memory.
func (a *app) newCache(ctx context.Context) timetable.Cache {
	if a.cfg.RedisAddr == "" {
		return timetable.NewMemoryCache(memoryCacheEntries, time.Now)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		a.logger.Warn("redis unavailable, using in-memory timetable cache", "addr", a.cfg.RedisAddr, "error", err)
		return timetable.NewMemoryCache(memoryCacheEntries, time.Now)
	}
	a.closers = append(a.closers, client.Close)
	return timetable.NewRedisCache(client, a.logger)
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
