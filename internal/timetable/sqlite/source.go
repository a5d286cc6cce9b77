package sqlite

import (
	"context"
	"fmt"

	"github.com/example/od-mailer/internal/timetable"
)

// Source exposes the stored rows as a timetable source.
type Source struct {
	store *Store
}

// NewSource wraps store.
func NewSource(store *Store) *Source {
	return &Source{store: store}
}

func (s *Source) Name() string {
	return "sqlite:timetable_rows"
}

// Load converts the stored rows. An empty table is reported as unavailable so
// the loader treats it like a missing document.
func (s *Source) Load(ctx context.Context) (timetable.Timetable, error) {
	rows, err := s.store.Rows(ctx)
	if err != nil {
		return timetable.Timetable{}, err
	}
	if len(rows) == 0 {
		return timetable.Timetable{}, fmt.Errorf("%w: timetable_rows is empty", timetable.ErrSourceUnavailable)
	}
	tt, _ := timetable.ConvertRows(rows)
	return tt, nil
}
