// Package overlap decides which timetable entries a student misses while
// attending an event. For every event slot at most one entry is chosen: the
// best overlapping lab for the student's group or the best overlapping
// course, with labs winning ties.
package overlap

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/example/od-mailer/internal/labels"
	"github.com/example/od-mailer/internal/roster"
	"github.com/example/od-mailer/internal/timeslot"
	"github.com/example/od-mailer/internal/timetable"
)

// Outcome explains how a student's resolution ended.
type Outcome string

const (
	OutcomeResolved        Outcome = "resolved"
	OutcomeProgramNotFound Outcome = "program_not_found"
	OutcomeSectionNotFound Outcome = "section_not_found"
	OutcomeNoSlots         Outcome = "no_slots"
)

const defaultWorkers = 8

// MissedLecture is a timetable entry a student misses. Day is the event day
// as given by the caller; Group is empty for courses.
type MissedLecture struct {
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	Faculty     string `json:"faculty"`
	FacultyCode string `json:"faculty_code"`
	Time        string `json:"time"`
	Group       string `json:"group"`
	Day         string `json:"day"`
}

// Resolution is the result of resolving one student.
type Resolution struct {
	Lectures []MissedLecture
	Outcome  Outcome
	Program  string
	Section  string
}

// StudentResult pairs a student with the lectures they miss.
type StudentResult struct {
	roster.Student
	MissedLectures []MissedLecture `json:"missedLectures"`
	Outcome        Outcome         `json:"outcome,omitempty"`
}

// Engine resolves students against a timetable. It holds no per-call state
// and is safe for concurrent use.
type Engine struct {
	tracer  Tracer
	workers int
}

// NewEngine constructs an engine. A nil tracer discards trace events and a
// non-positive worker count falls back to the default.
func NewEngine(tracer Tracer, workers int) *Engine {
	if tracer == nil {
		tracer = NopTracer{}
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Engine{tracer: tracer, workers: workers}
}

type scored struct {
	index int
	score int
}

// Resolve returns the lectures the student misses during slots on eventDay.
// Lectures are ordered by slot; a slot contributes at most one lecture.
func (e *Engine) Resolve(ctx context.Context, student roster.Student, slots []timeslot.Slot, eventDay string, tt timetable.Timetable) Resolution {
	name := student.Name
	wanted := student.NormalizedProgram
	if wanted == "" {
		wanted = student.Program
	}

	programKey, ok := labels.ResolveProgram(wanted, tt.ProgramKeys())
	if !ok {
		e.tracer.Trace(ctx, TraceEvent{Kind: TraceLookupFailed, Student: name, Outcome: OutcomeProgramNotFound, Program: wanted})
		return Resolution{Lectures: []MissedLecture{}, Outcome: OutcomeProgramNotFound}
	}
	program := tt.Programs[programKey]

	sectionKey, ok := labels.ResolveSection(student.Section, program.SectionKeys())
	if !ok {
		e.tracer.Trace(ctx, TraceEvent{Kind: TraceLookupFailed, Student: name, Outcome: OutcomeSectionNotFound, Program: programKey, Section: student.Section})
		return Resolution{Lectures: []MissedLecture{}, Outcome: OutcomeSectionNotFound, Program: programKey}
	}
	section := program.Sections[sectionKey]

	resolution := Resolution{Lectures: []MissedLecture{}, Outcome: OutcomeResolved, Program: programKey, Section: sectionKey}
	if len(slots) == 0 {
		resolution.Outcome = OutcomeNoSlots
		e.tracer.Trace(ctx, TraceEvent{Kind: TraceLookupFailed, Student: name, Outcome: OutcomeNoSlots, Program: programKey, Section: sectionKey})
		return resolution
	}

	day := labels.Day(eventDay)
	var courses []timetable.Course
	for _, c := range section.Courses {
		if labels.Day(c.Day) == day {
			courses = append(courses, c)
		}
	}
	var labs []timetable.Lab
	for _, l := range section.Labs {
		if labels.Day(l.Day) == day {
			labs = append(labs, l)
		}
	}
	studentTokens := labels.GroupTokens(student.Group)

	for _, slot := range slots {
		slotLabel := slot.String()
		e.tracer.Trace(ctx, TraceEvent{Kind: TraceSlotEvaluated, Student: name, Program: programKey, Section: sectionKey, Slot: slotLabel, Courses: len(courses), Labs: len(labs)})

		bestLab := scored{index: -1}
		for i, lab := range labs {
			if !timeslot.Overlaps(slot, lab.Time) {
				continue
			}
			score := ScoreLab(lab, studentTokens)
			e.tracer.Trace(ctx, TraceEvent{Kind: TraceCandidateScore, Student: name, Slot: slotLabel, Candidate: "lab", Subject: lab.SubjectName, Time: lab.Time, Score: score})
			if score > 0 && score > bestLab.score {
				bestLab = scored{index: i, score: score}
			}
		}

		bestCourse := scored{index: -1}
		for i, course := range courses {
			if !timeslot.Overlaps(slot, course.Time) {
				continue
			}
			score := ScoreCourse(course)
			e.tracer.Trace(ctx, TraceEvent{Kind: TraceCandidateScore, Student: name, Slot: slotLabel, Candidate: "course", Subject: course.SubjectName, Time: course.Time, Score: score})
			if score > bestCourse.score {
				bestCourse = scored{index: i, score: score}
			}
		}

		switch {
		case bestLab.index >= 0 && (bestCourse.index < 0 || bestLab.score >= bestCourse.score):
			lab := labs[bestLab.index]
			resolution.Lectures = append(resolution.Lectures, lecture(lab.Course, lab.Group, eventDay))
			e.tracer.Trace(ctx, TraceEvent{Kind: TraceWinnerChosen, Student: name, Slot: slotLabel, Candidate: "lab", Subject: lab.SubjectName, Time: lab.Time, Score: bestLab.score})
		case bestCourse.index >= 0:
			course := courses[bestCourse.index]
			resolution.Lectures = append(resolution.Lectures, lecture(course, "", eventDay))
			e.tracer.Trace(ctx, TraceEvent{Kind: TraceWinnerChosen, Student: name, Slot: slotLabel, Candidate: "course", Subject: course.SubjectName, Time: course.Time, Score: bestCourse.score})
		default:
			e.tracer.Trace(ctx, TraceEvent{Kind: TraceSlotUnmatched, Student: name, Slot: slotLabel})
		}
	}
	return resolution
}

func lecture(c timetable.Course, group, eventDay string) MissedLecture {
	return MissedLecture{
		SubjectCode: c.SubjectCode,
		SubjectName: c.SubjectName,
		Faculty:     c.Faculty,
		FacultyCode: c.FacultyCode,
		Time:        c.Time,
		Group:       group,
		Day:         eventDay,
	}
}

// ResolveAll resolves every student against the slots parsed from eventTime.
// Students are processed concurrently; the result has the same length and
// order as students.
func (e *Engine) ResolveAll(ctx context.Context, students []roster.Student, eventTime, eventDay string, tt timetable.Timetable) []StudentResult {
	slots := timeslot.ParseSlots(eventTime)
	results := make([]StudentResult, len(students))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, student := range students {
		g.Go(func() error {
			resolution := e.Resolve(ctx, student, slots, eventDay, tt)
			results[i] = StudentResult{
				Student:        student,
				MissedLectures: resolution.Lectures,
				Outcome:        resolution.Outcome,
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
