// Package timetable loads weekly class timetables from one or more sources,
// converts loosely structured documents into the canonical schema and merges
// them into a single timetable without duplicate entries.
//
// The canonical JSON shape is the wire contract:
//
//	{"Programs": {"B.Tech CSE": {"Semester": "3", "Sections": {"A": {"Courses": [...], "Labs": [...]}}}}}
package timetable

import (
	"slices"
	"strings"
)

// Timetable is the canonical timetable keyed by program name.
type Timetable struct {
	Programs map[string]Program `json:"Programs"`
}

// Program holds the sections of one program.
type Program struct {
	Semester string             `json:"Semester,omitempty"`
	Sections map[string]Section `json:"Sections"`
}

// Section holds the ordered course and lab entries of one section.
type Section struct {
	Courses []Course `json:"Courses"`
	Labs    []Lab    `json:"Labs"`
}

// Course is a scheduled class that applies to the whole section.
type Course struct {
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	Faculty     string `json:"faculty"`
	FacultyCode string `json:"faculty_code"`
	Day         string `json:"day"`
	Time        string `json:"time"`
}

// Lab is a scheduled session that may be scoped to a sub-group of the section.
type Lab struct {
	Course
	Group string `json:"group,omitempty"`
}

// Empty returns a timetable with no programs.
func Empty() Timetable {
	return Timetable{Programs: map[string]Program{}}
}

// IsEmpty reports whether the timetable has no programs.
func (t Timetable) IsEmpty() bool {
	return len(t.Programs) == 0
}

// ProgramKeys returns the program names in sorted order.
func (t Timetable) ProgramKeys() []string {
	return sortedKeys(t.Programs)
}

// SectionKeys returns the section names in sorted order.
func (p Program) SectionKeys() []string {
	return sortedKeys(p.Sections)
}

// Stats counts the entries held by the timetable.
type Stats struct {
	Programs int `json:"programs"`
	Sections int `json:"sections"`
	Courses  int `json:"courses"`
	Labs     int `json:"labs"`
}

// Stats summarizes the size of the timetable.
func (t Timetable) Stats() Stats {
	stats := Stats{Programs: len(t.Programs)}
	for _, program := range t.Programs {
		stats.Sections += len(program.Sections)
		for _, section := range program.Sections {
			stats.Courses += len(section.Courses)
			stats.Labs += len(section.Labs)
		}
	}
	return stats
}

// Clone returns a deep copy of the timetable.
func (t Timetable) Clone() Timetable {
	out := Timetable{Programs: make(map[string]Program, len(t.Programs))}
	for name, program := range t.Programs {
		out.Programs[name] = program.Clone()
	}
	return out
}

// Clone returns a deep copy of the program.
func (p Program) Clone() Program {
	out := Program{Semester: p.Semester, Sections: make(map[string]Section, len(p.Sections))}
	for name, section := range p.Sections {
		out.Sections[name] = section.Clone()
	}
	return out
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	return Section{
		Courses: append(make([]Course, 0, len(s.Courses)), s.Courses...),
		Labs:    append(make([]Lab, 0, len(s.Labs)), s.Labs...),
	}
}

// dedupKey identifies an entry for merge purposes.
func (c Course) dedupKey() string {
	return strings.ToLower(c.SubjectCode) + "|" +
		strings.ToLower(c.SubjectName) + "|" +
		strings.ToLower(c.Day) + "|" +
		strings.ToLower(c.Time)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func newSection() Section {
	return Section{Courses: []Course{}, Labs: []Lab{}}
}
