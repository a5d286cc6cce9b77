// Package email renders the OD request mail for resolved students: subject,
// plain-text and HTML bodies, compose links, validation warnings and a summary.
package email

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/example/od-mailer/internal/overlap"
)

// Group is the set of students sharing a program, section and semester.
type Group struct {
	Key      string                  `json:"key"`
	Program  string                  `json:"program"`
	Section  string                  `json:"section"`
	Semester string                  `json:"semester"`
	Students []overlap.StudentResult `json:"students"`
}

// HasMissedLectures reports whether any student in the group misses a lecture.
func (g Group) HasMissedLectures() bool {
	for _, s := range g.Students {
		if len(s.MissedLectures) > 0 {
			return true
		}
	}
	return false
}

// GroupStudents buckets students by upper-cased program and section plus
// semester, keeping groups and members in first-appearance order.
func GroupStudents(students []overlap.StudentResult) []Group {
	var groups []Group
	index := map[string]int{}
	for _, s := range students {
		key := strings.ToUpper(s.Program) + "|" + strings.ToUpper(s.Section) + "|" + s.Semester
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Program: s.Program, Section: s.Section, Semester: s.Semester})
		}
		groups[i].Students = append(groups[i].Students, s)
	}
	return groups
}

// sortGroups orders groups by program, section and numeric semester without
// touching the input.
func sortGroups(groups []Group) []Group {
	sorted := slices.Clone(groups)
	slices.SortStableFunc(sorted, func(a, b Group) int {
		return cmp.Or(
			strings.Compare(strings.ToUpper(a.Program), strings.ToUpper(b.Program)),
			strings.Compare(strings.ToUpper(a.Section), strings.ToUpper(b.Section)),
			cmp.Compare(semesterNumber(a.Semester), semesterNumber(b.Semester)),
		)
	})
	return sorted
}

func semesterNumber(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// lectureBucket collects the students missing one lecture.
type lectureBucket struct {
	Subject  string
	Faculty  string
	Time     string
	Group    string
	Students []string
}

// bucketLectures merges the group's missed lectures by subject, time, faculty
// and lab group. Library and lunch periods are left out. Buckets are ordered
// by time then subject and student names are title-cased, unique and sorted.
func bucketLectures(g Group) []lectureBucket {
	var buckets []lectureBucket
	index := map[string]int{}
	for _, s := range g.Students {
		name := TitleCase(s.Name)
		for _, lec := range s.MissedLectures {
			if overlap.IsFiller(lec.SubjectName) {
				continue
			}
			key := lec.SubjectName + "|" + lec.Time + "|" + lec.Faculty + "|" + lec.Group
			i, ok := index[key]
			if !ok {
				i = len(buckets)
				index[key] = i
				buckets = append(buckets, lectureBucket{Subject: lec.SubjectName, Faculty: lec.Faculty, Time: lec.Time, Group: lec.Group})
			}
			if !slices.Contains(buckets[i].Students, name) {
				buckets[i].Students = append(buckets[i].Students, name)
			}
		}
	}
	for i := range buckets {
		slices.Sort(buckets[i].Students)
	}
	slices.SortStableFunc(buckets, func(a, b lectureBucket) int {
		return cmp.Or(strings.Compare(a.Time, b.Time), strings.Compare(a.Subject, b.Subject))
	})
	return buckets
}
