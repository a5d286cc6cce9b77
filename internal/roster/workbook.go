package roster

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrInvalidWorkbook is returned when the upload is not a readable xlsx file.
	ErrInvalidWorkbook = errors.New("roster: invalid workbook")
	// ErrNoStudents is returned when the workbook has no student rows.
	ErrNoStudents = errors.New("roster: workbook contains no students")
)

// Upload is the parsed content of an OD workbook.
type Upload struct {
	Event    EventMetadata `json:"event"`
	Students []Student     `json:"students"`
	Sheet    string        `json:"sheet"`
}

type metaField int

const (
	fieldNone metaField = iota
	fieldEventName
	fieldCoordinator
	fieldDate
	fieldDay
	fieldTime
	fieldVenue
)

var metaLabels = map[string]metaField{
	"event name":          fieldEventName,
	"event":               fieldEventName,
	"name of event":       fieldEventName,
	"coordinator":         fieldCoordinator,
	"faculty coordinator": fieldCoordinator,
	"event coordinator":   fieldCoordinator,
	"event date":          fieldDate,
	"date":                fieldDate,
	"day":                 fieldDay,
	"event day":           fieldDay,
	"event time":          fieldTime,
	"time":                fieldTime,
	"timing":              fieldTime,
	"timings":             fieldTime,
	"venue":               fieldVenue,
	"place":               fieldVenue,
	"event venue":         fieldVenue,
}

type studentColumns struct {
	name, program, section, semester, group int
}

// ReadWorkbook parses the first sheet of an xlsx upload. Event details are
// read either from label/value rows ("Event Name" | "Hackathon") or from a
// header row followed by a value row. The student table starts at the first
// row with both a name and a program column; its columns are matched by
// header text.
func ReadWorkbook(r io.Reader) (Upload, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Upload{}, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Upload{}, fmt.Errorf("%w: no sheets", ErrInvalidWorkbook)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Upload{}, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}

	upload := Upload{Sheet: sheets[0]}
	var cols *studentColumns
	for i := 0; i < len(rows); i++ {
		row := trimCells(rows[i])
		if isBlank(row) {
			continue
		}
		if cols != nil {
			if student, ok := readStudent(row, *cols); ok {
				upload.Students = append(upload.Students, student)
			}
			continue
		}
		if c, ok := studentHeader(row); ok {
			cols = &c
			continue
		}
		if headers := metaHeaderFields(row); len(headers) >= 2 {
			if i+1 < len(rows) {
				values := trimCells(rows[i+1])
				for col, field := range headers {
					setMeta(&upload.Event, field, cell(values, col))
				}
				i++
			}
			continue
		}
		if field := metaLabel(cell(row, 0)); field != fieldNone {
			setMeta(&upload.Event, field, firstValue(row[1:]))
		}
	}

	if len(upload.Students) == 0 {
		return upload, ErrNoStudents
	}
	return upload, nil
}

func studentHeader(row []string) (studentColumns, bool) {
	cols := studentColumns{name: -1, program: -1, section: -1, semester: -1, group: -1}
	for i, value := range row {
		header := strings.ToLower(value)
		switch {
		case cols.name < 0 && strings.Contains(header, "name") && !strings.Contains(header, "event"):
			cols.name = i
		case cols.program < 0 && (strings.Contains(header, "program") || strings.Contains(header, "course") || header == "branch"):
			cols.program = i
		case cols.section < 0 && (strings.Contains(header, "section") || header == "sec"):
			cols.section = i
		case cols.semester < 0 && (strings.Contains(header, "semester") || header == "sem"):
			cols.semester = i
		case cols.group < 0 && (strings.Contains(header, "group") || header == "grp"):
			cols.group = i
		}
	}
	return cols, cols.name >= 0 && cols.program >= 0
}

func readStudent(row []string, cols studentColumns) (Student, bool) {
	student := Student{
		Name:     cell(row, cols.name),
		Program:  cell(row, cols.program),
		Section:  cell(row, cols.section),
		Semester: cell(row, cols.semester),
		Group:    cell(row, cols.group),
	}
	return student, student.Name != ""
}

func metaHeaderFields(row []string) map[int]metaField {
	fields := map[int]metaField{}
	for i, value := range row {
		if field := metaLabel(value); field != fieldNone {
			fields[i] = field
		}
	}
	return fields
}

func metaLabel(value string) metaField {
	label := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ":")))
	return metaLabels[label]
}

func setMeta(meta *EventMetadata, field metaField, value string) {
	if value == "" {
		return
	}
	switch field {
	case fieldEventName:
		meta.EventName = value
	case fieldCoordinator:
		meta.Coordinator = value
	case fieldDate:
		meta.EventDate = value
	case fieldDay:
		meta.Day = value
	case fieldTime:
		meta.EventTime = value
	case fieldVenue:
		meta.Venue = value
	}
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func firstValue(cells []string) string {
	for _, value := range cells {
		if value != "" {
			return value
		}
	}
	return ""
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, value := range row {
		out[i] = strings.TrimSpace(value)
	}
	return out
}

func isBlank(row []string) bool {
	return firstValue(row) == ""
}

// SampleStudents is the placeholder row written into blank templates.
func SampleStudents() []Student {
	return []Student{{Name: "Student Name", Program: "B.Tech CSE", Section: "A", Semester: "3", Group: "G1"}}
}

// WriteTemplate writes an upload workbook with the expected layout, the given
// event metadata and one row per student.
func WriteTemplate(w io.Writer, event EventMetadata, students []Student) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "OD Request"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Event Name", event.EventName},
		{"Coordinator", event.Coordinator},
		{"Event Date", event.EventDate},
		{"Day", event.Day},
		{"Event Time", event.EventTime},
		{"Venue", event.Venue},
		{},
		{"S.No", "Name", "Program", "Section", "Semester", "Group"},
	}
	for i, s := range students {
		rows = append(rows, []any{i + 1, s.Name, s.Program, s.Section, s.Semester, s.Group})
	}

	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, ref, &values); err != nil {
			return fmt.Errorf("roster: write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 28); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}
