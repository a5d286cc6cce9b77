package overlap

import (
	"regexp"

	"github.com/example/od-mailer/internal/labels"
	"github.com/example/od-mailer/internal/timetable"
)

// Candidate scores. A lab outranks a course whenever its score is at least as high.
const (
	ScoreLabUnscoped   = 70
	ScoreLabAllGroups  = 75
	ScoreLabGroupMatch = 100
	ScoreCourseBase    = 80
	ScoreCourseMinor   = 90
	ScoreCourseFiller  = 20
)

var (
	minorSubject  = regexp.MustCompile(`(?i)\bminor\b`)
	fillerSubject = regexp.MustCompile(`(?i)\b(library|lunch)\b`)
)

// IsFiller reports whether a subject is a library or lunch period.
func IsFiller(subject string) bool {
	return fillerSubject.MatchString(subject)
}

// ScoreLab rates how well a lab's group label applies to a student. A zero
// score means the lab belongs to another group and must be discarded.
func ScoreLab(lab timetable.Lab, studentTokens []string) int {
	tokens := labels.GroupTokens(lab.Group)
	switch {
	case len(tokens) == 0:
		return ScoreLabUnscoped
	case labels.IsAllGroups(tokens):
		return ScoreLabAllGroups
	case labels.GroupsIntersect(studentTokens, tokens):
		return ScoreLabGroupMatch
	default:
		return 0
	}
}

// ScoreCourse rates a course. Library and lunch periods rank lowest even when
// also marked minor.
func ScoreCourse(course timetable.Course) int {
	switch {
	case IsFiller(course.SubjectName):
		return ScoreCourseFiller
	case minorSubject.MatchString(course.SubjectName):
		return ScoreCourseMinor
	default:
		return ScoreCourseBase
	}
}
