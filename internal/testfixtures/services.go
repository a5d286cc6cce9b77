package testfixtures

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/example/od-mailer/internal/application"
	"github.com/example/od-mailer/internal/overlap"
	"github.com/example/od-mailer/internal/timetable"
	"github.com/example/od-mailer/internal/timetable/sqlite"
)

// IDGenerator produces deterministic identifiers for tests.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator that yields identifiers with the given
// prefix. When prefix is empty, "run" is used.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// StaticRepository serves a fixed load result.
type StaticRepository struct {
	Result      timetable.LoadResult
	Err         error
	invalidated atomic.Int32
}

// NewStaticRepository serves tt as if loaded from a single healthy source.
func NewStaticRepository(tt timetable.Timetable) *StaticRepository {
	return &StaticRepository{Result: timetable.LoadResult{
		Timetable:   tt,
		Loaded:      []string{"fixture"},
		Fingerprint: timetable.Fingerprint(tt),
	}}
}

// UnavailableRepository behaves like a loader whose sources all failed.
func UnavailableRepository() *StaticRepository {
	return &StaticRepository{
		Result: timetable.LoadResult{
			Timetable:   timetable.Empty(),
			Failures:    []timetable.SourceFailure{{Source: "file:timetable_updated.json", Message: "source unavailable"}},
			Fingerprint: timetable.Fingerprint(timetable.Empty()),
		},
		Err: timetable.ErrNoTimetable,
	}
}

func (r *StaticRepository) Load(context.Context) (timetable.LoadResult, error) {
	return r.Result.Clone(), r.Err
}

func (r *StaticRepository) Invalidate(context.Context) {
	r.invalidated.Add(1)
}

// Invalidations reports how often Invalidate was called.
func (r *StaticRepository) Invalidations() int {
	return int(r.invalidated.Load())
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ODServiceDeps captures dependencies for constructing an OD service.
type ODServiceDeps struct {
	Timetables application.TimetableRepository
	Store      application.TimetableStore
	Engine     *overlap.Engine
	IDs        *IDGenerator
	Logger     *slog.Logger
}

// NewODService builds a service with deterministic run IDs, the sample
// timetable and a discarding logger unless overridden.
func NewODService(deps ODServiceDeps) *application.ODService {
	if deps.Timetables == nil {
		deps.Timetables = NewStaticRepository(Timetable())
	}
	if deps.IDs == nil {
		deps.IDs = NewIDGenerator("")
	}
	if deps.Engine == nil {
		deps.Engine = overlap.NewEngine(nil, 2)
	}
	if deps.Logger == nil {
		deps.Logger = DiscardLogger()
	}
	return application.NewODService(deps.Timetables, deps.Store, deps.Engine, deps.IDs.Next, deps.Logger)
}

// NewSQLiteStore opens a migrated store in a temporary directory that is
// closed when the test ends.
func NewSQLiteStore(tb testing.TB) *sqlite.Store {
	tb.Helper()

	ctx := context.Background()
	store, err := sqlite.Open(ctx, sqlite.DefaultConfig(filepath.Join(tb.TempDir(), "timetable.db")))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(ctx); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return store
}
