package email

import (
	"fmt"
	"strings"

	"github.com/example/od-mailer/internal/roster"
)

// Summary is a short preview of the mail content.
type Summary struct {
	TotalStudents       int    `json:"totalStudents"`
	TotalGroups         int    `json:"totalGroups"`
	TotalMissedLectures int    `json:"totalMissedLectures"`
	EventName           string `json:"eventName"`
	EventDate           string `json:"eventDate"`
}

// Validate lists the gaps in the mail content. It never fails; an empty
// result means the mail is complete.
func Validate(meta roster.EventMetadata, groups []Group) []string {
	var warnings []string
	if strings.TrimSpace(meta.EventName) == "" {
		warnings = append(warnings, "Event name is missing - email subject may be generic")
	}
	if strings.TrimSpace(meta.EventDate) == "" {
		warnings = append(warnings, `Event date is missing - email subject will show "TBD"`)
	}
	if strings.TrimSpace(meta.EventTime) == "" {
		warnings = append(warnings, `Event time is missing - email body will show "N/A"`)
	}
	if strings.TrimSpace(meta.Venue) == "" {
		warnings = append(warnings, `Event venue is missing - email body will show "the venue"`)
	}

	summary := Summarize(meta, groups)
	if summary.TotalStudents == 0 {
		warnings = append(warnings, "No students found - email will have empty student list")
	}

	idle := 0
	for _, g := range groups {
		for _, s := range g.Students {
			if len(s.MissedLectures) == 0 {
				idle++
			}
		}
	}
	if idle > 0 {
		warnings = append(warnings, fmt.Sprintf("%d students have no missed lectures", idle))
	}
	return warnings
}

// Summarize counts students, groups and missed lectures.
func Summarize(meta roster.EventMetadata, groups []Group) Summary {
	summary := Summary{
		TotalGroups: len(groups),
		EventName:   orDefault(meta.EventName, "N/A"),
		EventDate:   orDefault(meta.EventDate, "N/A"),
	}
	for _, g := range groups {
		summary.TotalStudents += len(g.Students)
		for _, s := range g.Students {
			summary.TotalMissedLectures += len(s.MissedLectures)
		}
	}
	return summary
}
