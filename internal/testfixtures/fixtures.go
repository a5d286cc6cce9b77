// Package testfixtures provides deterministic timetables, rosters and service
// wiring shared by package tests.
package testfixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/example/od-mailer/internal/roster"
	"github.com/example/od-mailer/internal/timetable"
)

var studentCounter uint64

// EventDay is the weekday of the sample event.
const EventDay = "Wednesday"

// EventTime is the slot of the sample event. It overlaps the CSE section A
// DSC LAB and CSE SPEC. course.
const EventTime = "11:15-12:10"

// Timetable returns a small two-program timetable. Section A of B.Tech CSE
// has a group-scoped lab and a course sharing a Wednesday slot.
func Timetable() timetable.Timetable {
	return timetable.Timetable{Programs: map[string]timetable.Program{
		"B.Tech CSE": {Semester: "3", Sections: map[string]timetable.Section{
			"A": {
				Courses: []timetable.Course{
					{SubjectCode: "CS301", SubjectName: "CSE SPEC.", Faculty: "Dr. Rao", FacultyCode: "DR", Day: "Wednesday", Time: "11:15-12:10"},
					{SubjectCode: "MA201", SubjectName: "Maths", Faculty: "Dr. Iyer", FacultyCode: "DI", Day: "Wednesday", Time: "09:15-10:10"},
					{SubjectName: "Library", Day: "Wednesday", Time: "12:10-13:00"},
				},
				Labs: []timetable.Lab{
					{Course: timetable.Course{SubjectCode: "CS391", SubjectName: "DSC LAB", Faculty: "Ms. Sen", FacultyCode: "MS", Day: "Wednesday", Time: "11:15-12:10"}, Group: "Group 2"},
				},
			},
			"B": {
				Courses: []timetable.Course{
					{SubjectCode: "PH101", SubjectName: "Physics", Faculty: "Dr. Das", Day: "Wednesday", Time: "11:15-12:10"},
				},
				Labs: []timetable.Lab{},
			},
		}},
		"BBA": {Semester: "1", Sections: map[string]timetable.Section{
			"A": {
				Courses: []timetable.Course{
					{SubjectCode: "BM101", SubjectName: "Principles of Management", Faculty: "Prof. Nair", Day: "Wed", Time: "11:00 AM - 12:00 PM"},
				},
				Labs: []timetable.Lab{},
			},
		}},
	}}
}

// WriteTimetable stores tt as JSON under dir/name and returns the path.
func WriteTimetable(tb testing.TB, dir, name string, tt timetable.Timetable) string {
	tb.Helper()

	data, err := json.Marshal(tt)
	if err != nil {
		tb.Fatalf("marshal timetable: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write timetable: %v", err)
	}
	return path
}

// Event returns complete event metadata for the sample slot.
func Event(opts ...func(*roster.EventMetadata)) roster.EventMetadata {
	event := roster.EventMetadata{
		EventName:   "Hackathon",
		Coordinator: "priya sharma",
		EventDate:   "12-11-2025",
		Day:         EventDay,
		EventTime:   EventTime,
		Venue:       "Main Auditorium",
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// StudentOption configures a generated student.
type StudentOption func(*roster.Student)

// NewStudent returns a B.Tech CSE section A student with a unique name.
func NewStudent(opts ...StudentOption) roster.Student {
	idx := atomic.AddUint64(&studentCounter, 1)
	student := roster.Student{
		Name:     fmt.Sprintf("student %03d", idx),
		Program:  "B.Tech CSE",
		Section:  "A",
		Semester: "3",
	}
	for _, opt := range opts {
		opt(&student)
	}
	return student
}

// WithName overrides the generated name.
func WithName(name string) StudentOption {
	return func(s *roster.Student) { s.Name = name }
}

// WithClass sets program, section and semester.
func WithClass(program, section, semester string) StudentOption {
	return func(s *roster.Student) {
		s.Program = program
		s.Section = section
		s.Semester = semester
	}
}

// WithGroup sets the lab group.
func WithGroup(group string) StudentOption {
	return func(s *roster.Student) { s.Group = group }
}
