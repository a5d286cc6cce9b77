package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/od-mailer/internal/logging"
	"github.com/example/od-mailer/internal/roster"
	"github.com/example/od-mailer/internal/timetable"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContextOr(ctx, base)
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, timetable.ErrNoTimetable):
		return "not_found"
	case errors.Is(err, ErrInvalidInput), errors.Is(err, roster.ErrInvalidWorkbook), errors.Is(err, roster.ErrNoStudents):
		return "invalid_input"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
