package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("json records carry the service name", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		NewLogger(&buf, slog.LevelInfo, "").Info("started", "port", 8080)

		var record map[string]any
		if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
			t.Fatalf("expected json output, got %q: %v", buf.String(), err)
		}
		if record["service"] != "od-mailer" || record["msg"] != "started" {
			t.Fatalf("unexpected record %v", record)
		}
	})

	t.Run("text format honours the level", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelWarn, "TEXT")
		logger.Info("hidden")
		logger.Warn("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") {
			t.Fatalf("unexpected output %q", out)
		}
	})
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	fallback := slog.Default()
	if got := FromContextOr(context.Background(), fallback); got != fallback {
		t.Fatalf("expected fallback logger")
	}

	logger := NewLogger(&bytes.Buffer{}, slog.LevelInfo, FormatJSON)
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger || FromContextOr(ctx, fallback) != logger {
		t.Fatalf("expected attached logger")
	}
	if ContextWithLogger(ctx, nil) != ctx {
		t.Fatalf("nil logger should leave the context untouched")
	}
}
