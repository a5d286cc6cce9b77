package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/example/od-mailer/internal/email"
	"github.com/example/od-mailer/internal/overlap"
	"github.com/example/od-mailer/internal/report"
	"github.com/example/od-mailer/internal/roster"
	"github.com/example/od-mailer/internal/timetable"
	"github.com/example/od-mailer/internal/timetable/sqlite"
)

// TimetableRepository serves the merged timetable.
type TimetableRepository interface {
	Load(ctx context.Context) (timetable.LoadResult, error)
	Invalidate(ctx context.Context)
}

// TimetableStore persists imported timetable rows.
type TimetableStore interface {
	ReplaceRows(ctx context.Context, source string, rows []timetable.Row) (sqlite.ImportRecord, error)
}

// Warnings added on top of the mail content checks.
const (
	warnNoDay       = "Event day could not be determined - missed lectures were not computed"
	warnNoTime      = "Event time is missing - missed lectures were not computed"
	warnNoTimetable = "No timetable source could be loaded - missed lectures could not be computed"
)

// ODService resolves OD requests against the timetable and renders the mail.
type ODService struct {
	timetables  TimetableRepository
	store       TimetableStore
	engine      *overlap.Engine
	validate    *validator.Validate
	idGenerator func() string
	logger      *slog.Logger
}

// NewODService wires the service. store may be nil when imports are not
// supported.
func NewODService(timetables TimetableRepository, store TimetableStore, engine *overlap.Engine, idGenerator func() string, logger *slog.Logger) *ODService {
	if engine == nil {
		engine = overlap.NewEngine(nil, 0)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ODService{
		timetables:  timetables,
		store:       store,
		engine:      engine,
		validate:    newValidator(),
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

func (s *ODService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ODService", operation, attrs...)
}

// Compute validates the request, resolves every student and builds the mail.
// An unavailable timetable degrades to empty missed lectures with a warning
// instead of failing.
func (s *ODService) Compute(ctx context.Context, params ComputeParams) (result ComputeResult, err error) {
	if s == nil {
		err = fmt.Errorf("ODService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Compute", "student_count", len(params.Students))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute od request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"run_id", result.RunID,
			"missed_lectures", result.Summary.TotalMissedLectures,
			"warning_count", len(result.Warnings),
			"degraded", result.Timetable.Degraded,
		).InfoContext(ctx, "od request computed")
	}()

	if vErr := s.validateParams(params); vErr.HasErrors() {
		err = vErr
		return
	}

	event := params.Event
	event.Day = roster.EventDay(event)
	students := roster.NormalizeStudents(params.Students)

	result = ComputeResult{RunID: s.idGenerator(), Event: event}
	var warnings []string

	loaded, loadErr := s.load(ctx)
	result.Timetable = statusOf(loaded)
	switch {
	case errors.Is(loadErr, timetable.ErrNoTimetable):
		warnings = append(warnings, warnNoTimetable)
	case loadErr != nil:
		err = loadErr
		return
	}
	for _, failure := range loaded.Failures {
		warnings = append(warnings, fmt.Sprintf("Timetable source %s unavailable: %s", failure.Source, failure.Message))
	}

	switch {
	case event.Day == "":
		warnings = append(warnings, warnNoDay)
		result.Students = unresolved(students)
	case strings.TrimSpace(event.EventTime) == "":
		warnings = append(warnings, warnNoTime)
		result.Students = unresolved(students)
	default:
		result.Students = s.engine.ResolveAll(ctx, students, event.EventTime, event.Day, loaded.Timetable)
	}

	result.Groups = email.GroupStudents(result.Students)
	result.Email, err = email.Build(event, result.Students)
	if err != nil {
		return
	}
	result.Summary = email.Summarize(event, result.Groups)
	result.Warnings = append(email.Validate(event, result.Groups), warnings...)
	return
}

func (s *ODService) validateParams(params ComputeParams) *ValidationError {
	return validationErrorFrom(s.validate.Struct(params))
}

func (s *ODService) load(ctx context.Context) (timetable.LoadResult, error) {
	if s.timetables == nil {
		return timetable.LoadResult{Timetable: timetable.Empty()}, timetable.ErrNoTimetable
	}
	return s.timetables.Load(ctx)
}

func statusOf(loaded timetable.LoadResult) TimetableStatus {
	return TimetableStatus{
		Fingerprint: loaded.Fingerprint,
		Loaded:      loaded.Loaded,
		Failures:    loaded.Failures,
		Degraded:    loaded.Degraded() || len(loaded.Loaded) == 0,
	}
}

func unresolved(students []roster.Student) []overlap.StudentResult {
	results := make([]overlap.StudentResult, len(students))
	for i, student := range students {
		results[i] = overlap.StudentResult{Student: student, MissedLectures: []overlap.MissedLecture{}}
	}
	return results
}

// ComputeUpload reads an OD workbook and computes it.
func (s *ODService) ComputeUpload(ctx context.Context, r io.Reader) (ComputeResult, error) {
	upload, err := roster.ReadWorkbook(r)
	if err != nil {
		s.loggerWith(ctx, "ComputeUpload").WarnContext(ctx, "rejected workbook", "error", err, "error_kind", ErrorKind(err))
		return ComputeResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.Compute(ctx, ComputeParams{Event: upload.Event, Students: upload.Students})
}

// Report computes the request and writes the xlsx report to w.
func (s *ODService) Report(ctx context.Context, params ComputeParams, w io.Writer) (ComputeResult, error) {
	result, err := s.Compute(ctx, params)
	if err != nil {
		return ComputeResult{}, err
	}
	if err := report.Write(w, result.Event, result.Students); err != nil {
		s.loggerWith(ctx, "Report", "run_id", result.RunID).ErrorContext(ctx, "failed to write report", "error", err, "error_kind", ErrorKind(err))
		return ComputeResult{}, err
	}
	return result, nil
}

// Timetable returns the merged timetable. ErrNotFound is returned when no
// source could be loaded.
func (s *ODService) Timetable(ctx context.Context) (view TimetableView, err error) {
	if s == nil {
		err = fmt.Errorf("ODService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Timetable")
	loaded, loadErr := s.load(ctx)
	if loadErr != nil {
		if errors.Is(loadErr, timetable.ErrNoTimetable) {
			err = fmt.Errorf("%w: %w", ErrNotFound, loadErr)
		} else {
			err = loadErr
		}
		logger.WarnContext(ctx, "timetable unavailable", "error", err, "error_kind", ErrorKind(err))
		return
	}

	view = TimetableView{
		Timetable:       loaded.Timetable,
		Stats:           loaded.Timetable.Stats(),
		TimetableStatus: statusOf(loaded),
	}
	logger.DebugContext(ctx, "timetable served", "fingerprint", view.Fingerprint, "degraded", view.Degraded)
	return
}

// Import converts a timetable document in any accepted shape into rows and
// replaces the SQLite source with them.
func (s *ODService) Import(ctx context.Context, params ImportParams) (result ImportResult, err error) {
	if s == nil {
		err = fmt.Errorf("ODService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Import", "source", params.Source)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to import timetable", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rows", result.Record.RowCount, "fingerprint", result.Record.Fingerprint).InfoContext(ctx, "timetable imported")
	}()

	if s.store == nil {
		err = errors.New("application: no timetable store configured")
		return
	}

	tt, stats, decodeErr := timetable.DecodeWithStats(params.Data)
	if decodeErr != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidInput, decodeErr)
		return
	}
	result.Stats = stats

	rows := timetable.Rows(tt)
	if len(rows) == 0 {
		err = fmt.Errorf("%w: timetable has no entries", ErrInvalidInput)
		return
	}
	result.Record, err = s.store.ReplaceRows(ctx, params.Source, rows)
	if err != nil {
		return
	}
	if s.timetables != nil {
		s.timetables.Invalidate(ctx)
	}
	return
}
