package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/example/od-mailer/internal/application"
	"github.com/example/od-mailer/internal/report"
	"github.com/example/od-mailer/internal/roster"
	"github.com/example/od-mailer/internal/testfixtures"
)

// testEnv points every OD_* variable at isolated test locations.
func testEnv(t *testing.T, timetableDir, dsn string) {
	t.Helper()
	t.Setenv("OD_TIMETABLE_DIR", timetableDir)
	t.Setenv("OD_TIMETABLE_SOURCES", "timetable.json")
	t.Setenv("OD_TIMETABLE_BASE_URL", "")
	t.Setenv("OD_TIMETABLE_SQLITE_DSN", dsn)
	t.Setenv("OD_REDIS_ADDR", "")
	t.Setenv("OD_HTTP_PORT", "")
	t.Setenv("OD_LOG_LEVEL", "error")
	t.Setenv("OD_LOG_FORMAT", "")
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeRoster(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "roster.xlsx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create roster: %v", err)
	}
	defer f.Close()
	students := []roster.Student{testfixtures.NewStudent(testfixtures.WithName("aarav mehta"), testfixtures.WithGroup("2"))}
	if err := roster.WriteTemplate(f, testfixtures.Event(), students); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	return path
}

func TestComputeCommand(t *testing.T) {
	dir := t.TempDir()
	testfixtures.WriteTimetable(t, dir, "timetable.json", testfixtures.Timetable())
	testEnv(t, dir, "")
	rosterPath := writeRoster(t, dir)

	t.Run("prints the mail", func(t *testing.T) {
		out, err := runCommand(t, "compute", "--file", rosterPath)
		if err != nil {
			t.Fatalf("compute returned error: %v", err)
		}
		for _, want := range []string{"Subject: On Duty (OD) Approval for Hackathon", "Subject: DSC LAB", "Aarav Mehta"} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("prints json", func(t *testing.T) {
		out, err := runCommand(t, "compute", "--file", rosterPath, "--json")
		if err != nil {
			t.Fatalf("compute returned error: %v", err)
		}
		var result application.ComputeResult
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("decode output: %v", err)
		}
		if result.RunID == "" || len(result.Students) != 1 || len(result.Students[0].MissedLectures) != 1 {
			t.Fatalf("unexpected result %+v", result)
		}
		if result.Timetable.Degraded {
			t.Fatalf("expected a healthy timetable, got %+v", result.Timetable)
		}
	})

	t.Run("reports validation failures per field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "request.json")
		if err := os.WriteFile(path, []byte(`{"event":{},"students":[]}`), 0o600); err != nil {
			t.Fatalf("write request: %v", err)
		}
		_, err := runCommand(t, "compute", "--file", path)
		if err == nil || !strings.Contains(err.Error(), "invalid request:") || !strings.Contains(err.Error(), "students:") {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("requires a file", func(t *testing.T) {
		if _, err := runCommand(t, "compute"); err == nil {
			t.Fatalf("expected missing flag error")
		}
	})
}

func TestReportAndTemplateCommands(t *testing.T) {
	dir := t.TempDir()
	testfixtures.WriteTimetable(t, dir, "timetable.json", testfixtures.Timetable())
	testEnv(t, dir, "")

	templatePath := filepath.Join(dir, "template.xlsx")
	if _, err := runCommand(t, "template", "--out", templatePath); err != nil {
		t.Fatalf("template returned error: %v", err)
	}
	f, err := os.Open(templatePath)
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	upload, err := roster.ReadWorkbook(f)
	f.Close()
	if err != nil || len(upload.Students) != 1 {
		t.Fatalf("template should hold the sample student: %+v %v", upload, err)
	}

	reportPath := filepath.Join(dir, "report.xlsx")
	out, err := runCommand(t, "report", "--file", writeRoster(t, dir), "--out", reportPath)
	if err != nil {
		t.Fatalf("report returned error: %v", err)
	}
	if !strings.Contains(out, reportPath) {
		t.Fatalf("unexpected output %q", out)
	}
	book, err := excelize.OpenFile(reportPath)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer book.Close()
	rows, err := book.GetRows(report.SheetMissed)
	if err != nil || len(rows) != 2 {
		t.Fatalf("expected header and one missed lecture, got %v %v", rows, err)
	}
}

func TestTimetableCommands(t *testing.T) {
	dir := t.TempDir()
	docPath := testfixtures.WriteTimetable(t, dir, "import.json", testfixtures.Timetable())
	dsn := filepath.Join(dir, "od.db")
	// No file source exists in dir, so only the SQLite source can load.
	testEnv(t, dir, "")

	t.Run("import needs a store", func(t *testing.T) {
		_, err := runCommand(t, "timetable", "import", "--file", docPath)
		if err == nil || !strings.Contains(err.Error(), "no timetable store configured") {
			t.Fatalf("expected store error, got %v", err)
		}
	})

	t.Run("show fails without sources", func(t *testing.T) {
		if _, err := runCommand(t, "timetable", "show"); err == nil {
			t.Fatalf("expected unavailable timetable error")
		}
	})

	out, err := runCommand(t, "timetable", "import", "--file", docPath, "--dsn", dsn)
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if !strings.Contains(out, "imported 6 rows from import.json") {
		t.Fatalf("unexpected import output %q", out)
	}

	t.Setenv("OD_TIMETABLE_SQLITE_DSN", dsn)
	out, err = runCommand(t, "timetable", "show")
	if err != nil {
		t.Fatalf("show returned error: %v", err)
	}
	for _, want := range []string{"sources:     sqlite:timetable_rows", "programs: 2", "unavailable: file:timetable.json"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
