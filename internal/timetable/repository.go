package timetable

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// DegradedTTL caps how long a load with failed sources stays cached, so a
// recovered source is picked up soon after it comes back.
const DegradedTTL = 30 * time.Second

// Repository serves the merged timetable, reading through an optional cache.
// Any load where at least one source succeeded is cached; degraded loads expire
// after at most DegradedTTL.
type Repository struct {
	loader *Loader
	cache  Cache
	ttl    time.Duration
	key    string
	logger *slog.Logger
}

// NewRepository wraps loader. A nil cache or non-positive ttl disables caching.
func NewRepository(loader *Loader, cache Cache, ttl time.Duration, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		cache = nil
	}
	return &Repository{
		loader: loader,
		cache:  cache,
		ttl:    ttl,
		key:    strings.Join(loader.Sources(), "|"),
		logger: logger,
	}
}

// Load returns the merged timetable. ErrNoTimetable is returned together with
// an empty timetable when every source failed.
func (r *Repository) Load(ctx context.Context) (LoadResult, error) {
	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, r.key); ok {
			r.logger.Debug("timetable cache hit", "fingerprint", cached.Fingerprint)
			return cached, nil
		}
	}

	result, err := r.loader.Load(ctx)
	if err != nil {
		return result, err
	}
	if r.cache != nil {
		ttl := r.ttl
		if result.Degraded() {
			ttl = min(ttl, DegradedTTL)
			r.logger.Debug("caching degraded timetable", "loaded", result.Loaded, "ttl", ttl)
		}
		r.cache.Store(ctx, r.key, result, ttl)
	}
	return result, nil
}

// Timetable returns the merged timetable, or an empty one when no source is
// available.
func (r *Repository) Timetable(ctx context.Context) Timetable {
	result, _ := r.Load(ctx)
	if result.Timetable.Programs == nil {
		return Empty()
	}
	return result.Timetable
}

// Invalidate drops cached results.
func (r *Repository) Invalidate(ctx context.Context) {
	if r.cache != nil {
		r.cache.Invalidate(ctx)
	}
}
