package testfixtures

import (
	"context"
	"errors"
	"testing"

	"github.com/example/od-mailer/internal/timetable"
)

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("")

	first := gen.Next()
	second := gen.Next()

	if first != "run-1" || second != "run-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestNewStudentIsUniqueAndConfigurable(t *testing.T) {
	a := NewStudent()
	b := NewStudent(WithClass("BBA", "B", "1"), WithGroup("G1"))

	if a.Name == b.Name {
		t.Fatalf("expected unique names, got %q twice", a.Name)
	}
	if b.Program != "BBA" || b.Section != "B" || b.Semester != "1" || b.Group != "G1" {
		t.Fatalf("options not applied: %+v", b)
	}
}

func TestTimetableFixtureRoundTripsThroughFiles(t *testing.T) {
	dir := t.TempDir()
	WriteTimetable(t, dir, "timetable_updated.json", Timetable())

	result, err := timetable.NewLoader(DiscardLogger(), timetable.DirSources(dir, "timetable_updated.json")...).Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if result.Fingerprint != timetable.Fingerprint(Timetable()) {
		t.Fatalf("fingerprint changed after round trip")
	}
}

func TestStaticRepositories(t *testing.T) {
	repo := NewStaticRepository(Timetable())
	result, err := repo.Load(context.Background())
	if err != nil || result.Degraded() {
		t.Fatalf("expected healthy result, got %+v, %v", result, err)
	}
	repo.Invalidate(context.Background())
	if repo.Invalidations() != 1 {
		t.Fatalf("expected one invalidation")
	}

	if _, err := UnavailableRepository().Load(context.Background()); !errors.Is(err, timetable.ErrNoTimetable) {
		t.Fatalf("expected ErrNoTimetable, got %v", err)
	}
}
