// Package roster holds the event metadata and participant list of an OD
// request, normalizes free-text student fields and reads both from uploaded
// workbooks.
package roster

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/example/od-mailer/internal/labels"
)

// EventMetadata describes the event students attended.
type EventMetadata struct {
	EventName   string `json:"eventName" validate:"max=200"`
	Coordinator string `json:"coordinator" validate:"max=200"`
	EventDate   string `json:"eventDate" validate:"max=64"`
	Day         string `json:"day" validate:"max=32"`
	EventTime   string `json:"eventTime" validate:"max=256"`
	Venue       string `json:"venue" validate:"max=200"`
}

// Student is one roster entry. NormalizedProgram is filled by NormalizeStudent.
type Student struct {
	Name              string `json:"name" validate:"required,max=200"`
	Program           string `json:"program" validate:"max=200"`
	Section           string `json:"section" validate:"max=64"`
	Semester          string `json:"semester" validate:"max=32"`
	Group             string `json:"group,omitempty" validate:"max=64"`
	NormalizedProgram string `json:"normalizedProgram,omitempty"`
}

var (
	semesterPrefix = regexp.MustCompile(`(?i)^\s*(semester|sem)\b\.?\s*`)
	ordinalSuffix  = regexp.MustCompile(`(?i)^(\d+)\s*(st|nd|rd|th)?$`)
)

var romanNumerals = map[string]string{
	"I": "1", "II": "2", "III": "3", "IV": "4",
	"V": "5", "VI": "6", "VII": "7", "VIII": "8",
}

// NormalizeStudent trims every field and canonicalizes section, semester and
// program spellings. The input is not modified.
func NormalizeStudent(s Student) Student {
	out := Student{
		Name:     strings.TrimSpace(s.Name),
		Program:  strings.TrimSpace(s.Program),
		Section:  labels.NormalizeSection(s.Section),
		Semester: NormalizeSemester(s.Semester),
		Group:    strings.TrimSpace(s.Group),
	}
	out.NormalizedProgram = labels.NormalizeProgram(out.Program)
	return out
}

// NormalizeStudents applies NormalizeStudent to every entry, preserving order.
func NormalizeStudents(students []Student) []Student {
	out := make([]Student, len(students))
	for i, s := range students {
		out[i] = NormalizeStudent(s)
	}
	return out
}

// NormalizeSemester maps "III", "3rd", "Sem 3" or "Semester IV" to arabic
// digits. Unrecognized values are returned trimmed.
func NormalizeSemester(semester string) string {
	s := semesterPrefix.ReplaceAllString(strings.TrimSpace(semester), "")
	s = strings.TrimSpace(s)
	if n, ok := romanNumerals[strings.ToUpper(s)]; ok {
		return n
	}
	if m := ordinalSuffix.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return strconv.Itoa(n)
		}
	}
	return s
}
