package application

import (
	"github.com/example/od-mailer/internal/email"
	"github.com/example/od-mailer/internal/overlap"
	"github.com/example/od-mailer/internal/roster"
	"github.com/example/od-mailer/internal/timetable"
	"github.com/example/od-mailer/internal/timetable/sqlite"
)

// ComputeParams carries an OD request. At most 5000 students are accepted.
type ComputeParams struct {
	Event    roster.EventMetadata `json:"event"`
	Students []roster.Student     `json:"students" validate:"required,min=1,max=5000,dive"`
}

// TimetableStatus describes the timetable a computation ran against.
type TimetableStatus struct {
	Fingerprint string                    `json:"fingerprint"`
	Loaded      []string                  `json:"loaded"`
	Failures    []timetable.SourceFailure `json:"failures,omitempty"`
	Degraded    bool                      `json:"degraded"`
}

// ComputeResult is the outcome of resolving an OD request.
type ComputeResult struct {
	RunID     string                  `json:"runId"`
	Event     roster.EventMetadata    `json:"event"`
	Students  []overlap.StudentResult `json:"students"`
	Groups    []email.Group           `json:"groups"`
	Email     email.Content           `json:"email"`
	Summary   email.Summary           `json:"summary"`
	Warnings  []string                `json:"warnings"`
	Timetable TimetableStatus         `json:"timetable"`
}

// TimetableView is the merged timetable with its provenance.
type TimetableView struct {
	Timetable timetable.Timetable `json:"timetable"`
	Stats     timetable.Stats     `json:"stats"`
	TimetableStatus
}

// ImportParams carries a timetable document to store as the SQLite source.
type ImportParams struct {
	Source string
	Data   []byte
}

// ImportResult summarises a completed import.
type ImportResult struct {
	Record sqlite.ImportRecord    `json:"record"`
	Stats  timetable.ConvertStats `json:"stats"`
}
