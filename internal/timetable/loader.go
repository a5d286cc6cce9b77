package timetable

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ErrNoTimetable is returned when no source produced a timetable. The
// accompanying LoadResult still carries an empty timetable.
var ErrNoTimetable = errors.New("timetable: no source could be loaded")

const defaultFetchConcurrency = 4

// SourceFailure records why a source was excluded from a merge.
type SourceFailure struct {
	Source  string `json:"source"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// LoadResult is the outcome of loading every configured source.
type LoadResult struct {
	Timetable   Timetable       `json:"timetable"`
	Loaded      []string        `json:"loaded"`
	Failures    []SourceFailure `json:"failures,omitempty"`
	Fingerprint string          `json:"fingerprint"`
}

// Degraded reports whether at least one source failed.
func (r LoadResult) Degraded() bool {
	return len(r.Failures) > 0
}

// Clone returns a deep copy of the result.
func (r LoadResult) Clone() LoadResult {
	out := r
	out.Timetable = r.Timetable.Clone()
	out.Loaded = append([]string(nil), r.Loaded...)
	out.Failures = append([]SourceFailure(nil), r.Failures...)
	return out
}

// Loader fetches its sources concurrently and merges them in declaration order.
type Loader struct {
	sources     []Source
	concurrency int
	logger      *slog.Logger
}

// NewLoader constructs a loader over sources, earlier sources taking priority.
func NewLoader(logger *slog.Logger, sources ...Source) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{sources: sources, concurrency: defaultFetchConcurrency, logger: logger}
}

// WithConcurrency bounds the number of simultaneous fetches.
func (l *Loader) WithConcurrency(n int) *Loader {
	if n > 0 {
		l.concurrency = n
	}
	return l
}

// Sources returns the source names in priority order.
func (l *Loader) Sources() []string {
	names := make([]string, len(l.sources))
	for i, src := range l.sources {
		names[i] = src.Name()
	}
	return names
}

// Load fetches every source, waiting for all of them, and merges the
// successful ones. Failed sources are reported in the result and otherwise
// ignored. When nothing loads the result holds an empty timetable and the
// error is ErrNoTimetable.
func (l *Loader) Load(ctx context.Context) (LoadResult, error) {
	timetables := make([]Timetable, len(l.sources))
	errs := make([]error, len(l.sources))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, src := range l.sources {
		g.Go(func() error {
			timetables[i], errs[i] = src.Load(ctx)
			return nil
		})
	}
	_ = g.Wait()

	var (
		result = LoadResult{}
		loaded []Timetable
	)
	for i, src := range l.sources {
		if err := errs[i]; err != nil {
			l.logger.Warn("timetable source failed", "source", src.Name(), "error", err)
			result.Failures = append(result.Failures, SourceFailure{Source: src.Name(), Message: err.Error(), Err: err})
			continue
		}
		loaded = append(loaded, timetables[i])
		result.Loaded = append(result.Loaded, src.Name())
	}

	result.Timetable = Merge(loaded...)
	result.Fingerprint = Fingerprint(result.Timetable)
	if len(loaded) == 0 {
		l.logger.Error("no timetable source loaded", "sources", len(l.sources))
		return result, ErrNoTimetable
	}

	stats := result.Timetable.Stats()
	l.logger.Debug("timetable loaded",
		"sources", len(result.Loaded),
		"failures", len(result.Failures),
		"programs", stats.Programs,
		"courses", stats.Courses,
		"labs", stats.Labs,
	)
	return result, nil
}
