package overlap

import (
	"context"
	"log/slog"
)

// TraceKind names a decision recorded while resolving a student.
type TraceKind string

const (
	TraceLookupFailed   TraceKind = "lookup_failed"
	TraceSlotEvaluated  TraceKind = "slot_evaluated"
	TraceCandidateScore TraceKind = "candidate_scored"
	TraceWinnerChosen   TraceKind = "winner_chosen"
	TraceSlotUnmatched  TraceKind = "slot_unmatched"
)

// TraceEvent is one structured resolution decision.
type TraceEvent struct {
	Kind      TraceKind
	Student   string
	Outcome   Outcome
	Program   string
	Section   string
	Slot      string
	Candidate string
	Subject   string
	Time      string
	Score     int
	Courses   int
	Labs      int
	Detail    string
}

// Tracer receives resolution decisions.
type Tracer interface {
	Trace(ctx context.Context, event TraceEvent)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(ctx context.Context, event TraceEvent)

func (f TracerFunc) Trace(ctx context.Context, event TraceEvent) {
	f(ctx, event)
}

// NopTracer discards every event.
type NopTracer struct{}

func (NopTracer) Trace(context.Context, TraceEvent) {}

// LogTracer writes events to a slog logger at debug level.
type LogTracer struct {
	Logger *slog.Logger
}

func (t LogTracer) Trace(ctx context.Context, event TraceEvent) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{slog.String("event", string(event.Kind)), slog.String("student", event.Student)}
	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, slog.String(key, value))
		}
	}
	add("outcome", string(event.Outcome))
	add("program", event.Program)
	add("section", event.Section)
	add("slot", event.Slot)
	add("candidate", event.Candidate)
	add("subject", event.Subject)
	add("time", event.Time)
	add("detail", event.Detail)
	if event.Kind == TraceCandidateScore || event.Kind == TraceWinnerChosen {
		attrs = append(attrs, slog.Int("score", event.Score))
	}
	if event.Kind == TraceSlotEvaluated {
		attrs = append(attrs, slog.Int("courses", event.Courses), slog.Int("labs", event.Labs))
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "overlap trace", attrs...)
}
