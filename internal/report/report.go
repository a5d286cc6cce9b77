// Package report exports resolved OD requests as xlsx workbooks.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/od-mailer/internal/overlap"
	"github.com/example/od-mailer/internal/roster"
)

// Sheet names of the exported workbook.
const (
	SheetEvent    = "Event"
	SheetStudents = "Students"
	SheetMissed   = "Missed Lectures"
)

var (
	studentHeader = []any{"S.No", "Name", "Program", "Section", "Semester", "Group", "Outcome", "Missed", "Subjects"}
	missedHeader  = []any{"Name", "Program", "Section", "Semester", "Day", "Time", "Subject Code", "Subject", "Faculty", "Group"}
)

// Write renders the event, one row per student and one row per missed
// lecture into an xlsx workbook.
func Write(w io.Writer, meta roster.EventMetadata, results []overlap.StudentResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetEvent); err != nil {
		return err
	}
	for _, name := range []string{SheetStudents, SheetMissed} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	event := [][]any{
		{"Event Name", meta.EventName},
		{"Coordinator", meta.Coordinator},
		{"Event Date", meta.EventDate},
		{"Day", roster.EventDay(meta)},
		{"Event Time", meta.EventTime},
		{"Venue", meta.Venue},
	}
	if err := writeRows(f, SheetEvent, event); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetEvent, "A1", fmt.Sprintf("A%d", len(event)), bold); err != nil {
		return err
	}

	students := [][]any{studentHeader}
	missed := [][]any{missedHeader}
	for i, r := range results {
		subjects := make([]string, 0, len(r.MissedLectures))
		for _, lec := range r.MissedLectures {
			subjects = append(subjects, lec.SubjectName)
			missed = append(missed, []any{r.Name, r.Program, r.Section, r.Semester, lec.Day, lec.Time, lec.SubjectCode, lec.SubjectName, lec.Faculty, lec.Group})
		}
		students = append(students, []any{i + 1, r.Name, r.Program, r.Section, r.Semester, r.Group, string(r.Outcome), len(r.MissedLectures), strings.Join(subjects, ", ")})
	}
	if err := writeRows(f, SheetStudents, students); err != nil {
		return err
	}
	if err := writeRows(f, SheetMissed, missed); err != nil {
		return err
	}

	for sheet, width := range map[string]int{SheetStudents: len(studentHeader), SheetMissed: len(missedHeader)} {
		last, err := excelize.CoordinatesToCellName(width, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}
	for _, width := range []struct {
		sheet, col string
		size       float64
	}{
		{SheetEvent, "A", 14}, {SheetEvent, "B", 36},
		{SheetStudents, "B", 28}, {SheetStudents, "I", 48},
		{SheetMissed, "A", 28}, {SheetMissed, "H", 32}, {SheetMissed, "I", 28},
	} {
		if err := f.SetColWidth(width.sheet, width.col, width.col, width.size); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, values := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, ref, &values); err != nil {
			return fmt.Errorf("report: write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
