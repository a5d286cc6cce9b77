package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/od-mailer/internal/roster"
	"github.com/example/od-mailer/internal/timetable"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"field": "invalid"}}
	if got := withFields.Error(); got != "validation failed" {
		t.Fatalf("expected generic message, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	base := &ValidationError{}
	base.add("first", "value")
	if !base.HasErrors() || base.FieldErrors["first"] != "value" {
		t.Fatalf("expected add to populate map, got %+v", base.FieldErrors)
	}
}

func TestValidationErrorFromValidator(t *testing.T) {
	t.Parallel()

	v := newValidator()
	params := ComputeParams{Students: []roster.Student{{Name: "ok"}, {Name: ""}}}
	vErr := validationErrorFrom(v.Struct(params))
	if got := vErr.FieldErrors["students[1].name"]; got != "is required" {
		t.Fatalf("expected JSON field path, got %+v", vErr.FieldErrors)
	}

	vErr = validationErrorFrom(v.Struct(ComputeParams{Students: []roster.Student{}}))
	if got := vErr.FieldErrors["students"]; got != "must contain at least 1 entries" {
		t.Fatalf("unexpected empty roster message, got %+v", vErr.FieldErrors)
	}

	if vErr := validationErrorFrom(nil); vErr.HasErrors() {
		t.Fatalf("nil error must not produce field errors")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":              nil,
		"not_found":     fmt.Errorf("%w: %w", ErrNotFound, timetable.ErrNoTimetable),
		"invalid_input": fmt.Errorf("%w: bad", ErrInvalidInput),
		"validation":    &ValidationError{FieldErrors: map[string]string{"x": "y"}},
		"unexpected":    errors.New("boom"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
	if got := ErrorKind(roster.ErrNoStudents); got != "invalid_input" {
		t.Fatalf("roster errors should be invalid input, got %q", got)
	}
}
