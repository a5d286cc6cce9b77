package timetable

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrUnrecognizedShape is returned when a document matches none of the accepted timetable shapes.
	ErrUnrecognizedShape = errors.New("timetable: unrecognized document shape")

	labSubject    = regexp.MustCompile(`(?i)\bLAB\b`)
	labType       = regexp.MustCompile(`(?i)lab`)
	facultyParens = regexp.MustCompile(`^\s*(.*?)\s*\(([^)]+)\)\s*$`)
	bTechPrefix   = regexp.MustCompile(`(?i)\bB\.?\s*Tech\.?`)
	bTechIT       = regexp.MustCompile(`(?i)B\.Tech\s+IT\b`)
	bTechCSE      = regexp.MustCompile(`(?i)B\.Tech\s+CSE\b`)
)

var romanSemesters = map[string]string{
	"I": "1", "II": "2", "III": "3", "IV": "4",
	"V": "5", "VI": "6", "VII": "7", "VIII": "8",
}

// Shape names reported in ConvertStats.
const (
	ShapeCanonical   = "canonical"
	ShapeClassBlocks = "class_blocks"
	ShapeRows        = "rows"
)

// ConvertStats describes what a conversion produced and skipped.
type ConvertStats struct {
	Shape          string `json:"shape"`
	Entries        int    `json:"entries"`
	SkippedClasses int    `json:"skippedClasses"`
	SkippedEntries int    `json:"skippedEntries"`
}

// Row is one flat timetable record. Either ClassName or Program must be set.
type Row struct {
	ClassName   string `json:"class_name,omitempty"`
	Program     string `json:"program,omitempty"`
	Section     string `json:"section,omitempty"`
	Semester    string `json:"semester,omitempty"`
	Day         string `json:"day"`
	Time        string `json:"time"`
	Subject     string `json:"subject,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
	SubjectCode string `json:"subject_code,omitempty"`
	Faculty     string `json:"faculty,omitempty"`
	FacultyCode string `json:"faculty_code,omitempty"`
	Type        string `json:"type,omitempty"`
	Group       string `json:"group,omitempty"`
}

// ClassName is the parsed form of a class label such as "B.Tech (CSE) III A".
type ClassName struct {
	Program  string
	Section  string
	Semester string
}

// Decode parses a JSON document in any accepted shape.
func Decode(data []byte) (Timetable, error) {
	tt, _, err := DecodeWithStats(data)
	return tt, err
}

// DecodeWithStats parses a JSON document and reports conversion statistics.
func DecodeWithStats(data []byte) (Timetable, ConvertStats, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Timetable{}, ConvertStats{}, fmt.Errorf("timetable: decode: %w", err)
	}
	tt, stats, ok := convert(doc)
	if !ok {
		return Timetable{}, stats, ErrUnrecognizedShape
	}
	return tt, stats, nil
}

// Convert turns a generic JSON value into the canonical schema. It accepts the
// canonical {"Programs": ...} object, an array of class blocks
// [{"class_name": ..., "timetable": {"Monday": [...]}}], an array of flat rows
// or an object {"classes": [rows]}. The boolean is false for any other shape.
func Convert(v any) (Timetable, bool) {
	tt, _, ok := convert(v)
	return tt, ok
}

func convert(v any) (Timetable, ConvertStats, bool) {
	switch doc := v.(type) {
	case map[string]any:
		if programs, ok := doc["Programs"].(map[string]any); ok {
			return convertCanonical(programs)
		}
		if classes, ok := doc["classes"].([]any); ok && len(classes) > 0 {
			tt, stats := ConvertRows(rowsFromJSON(classes))
			return tt, stats, true
		}
	case []any:
		if len(doc) == 0 {
			break
		}
		if first, ok := doc[0].(map[string]any); ok {
			if _, ok := first["timetable"].(map[string]any); ok {
				tt, stats := convertClassBlocks(doc)
				return tt, stats, true
			}
		}
		tt, stats := ConvertRows(rowsFromJSON(doc))
		return tt, stats, true
	}
	return Timetable{}, ConvertStats{}, false
}

func convertCanonical(programs map[string]any) (Timetable, ConvertStats, bool) {
	stats := ConvertStats{Shape: ShapeCanonical}
	tt := Empty()
	for name, raw := range programs {
		obj, _ := raw.(map[string]any)
		program := Program{Semester: text(obj["Semester"]), Sections: map[string]Section{}}
		sections, _ := obj["Sections"].(map[string]any)
		for key, rawSection := range sections {
			secObj, _ := rawSection.(map[string]any)
			section := newSection()
			for _, item := range list(secObj["Courses"]) {
				section.Courses = append(section.Courses, courseFromJSON(item))
			}
			for _, item := range list(secObj["Labs"]) {
				section.Labs = append(section.Labs, Lab{Course: courseFromJSON(item), Group: text(item["group"])})
			}
			stats.Entries += len(section.Courses) + len(section.Labs)
			program.Sections[key] = section
		}
		tt.Programs[name] = program
	}
	return tt, stats, true
}

func convertClassBlocks(blocks []any) (Timetable, ConvertStats) {
	stats := ConvertStats{Shape: ShapeClassBlocks}
	b := newBuilder()
	for _, raw := range blocks {
		block, _ := raw.(map[string]any)
		class, ok := ParseClassName(text(block["class_name"]))
		if !ok {
			stats.SkippedClasses++
			continue
		}
		days, _ := block["timetable"].(map[string]any)
		for _, day := range sortedKeys(days) {
			for _, slot := range list(days[day]) {
				row := rowFromJSON(slot)
				row.Day = day
				if b.add(class, row) {
					stats.Entries++
				} else {
					stats.SkippedEntries++
				}
			}
		}
	}
	return b.tt, stats
}

// ConvertRows builds a canonical timetable from flat rows. Rows carrying an
// explicit program keep their program and section labels; otherwise the class
// name is parsed. Rows without a subject or a usable class are skipped.
func ConvertRows(rows []Row) (Timetable, ConvertStats) {
	stats := ConvertStats{Shape: ShapeRows}
	b := newBuilder()
	for _, row := range rows {
		class, ok := classOf(row)
		if !ok {
			stats.SkippedClasses++
			continue
		}
		if b.add(class, row) {
			stats.Entries++
		} else {
			stats.SkippedEntries++
		}
	}
	return b.tt, stats
}

// Rows flattens a timetable into rows, programs and sections in sorted order.
func Rows(tt Timetable) []Row {
	var rows []Row
	for _, name := range tt.ProgramKeys() {
		program := tt.Programs[name]
		for _, key := range program.SectionKeys() {
			section := program.Sections[key]
			base := Row{Program: name, Section: key, Semester: program.Semester}
			for _, c := range section.Courses {
				rows = append(rows, entryRow(base, c, "course", ""))
			}
			for _, l := range section.Labs {
				rows = append(rows, entryRow(base, l.Course, "lab", l.Group))
			}
		}
	}
	return rows
}

func entryRow(base Row, c Course, kind, group string) Row {
	base.Day = c.Day
	base.Time = c.Time
	base.SubjectName = c.SubjectName
	base.SubjectCode = c.SubjectCode
	base.Faculty = c.Faculty
	base.FacultyCode = c.FacultyCode
	base.Type = kind
	base.Group = group
	return base
}

func classOf(row Row) (ClassName, bool) {
	if row.ClassName == "" && strings.TrimSpace(row.Program) != "" {
		section := strings.TrimSpace(row.Section)
		if section == "" {
			section = "A"
		}
		return ClassName{
			Program:  strings.TrimSpace(row.Program),
			Section:  section,
			Semester: semesterNumber(row.Semester),
		}, true
	}
	return ParseClassName(row.ClassName)
}

// ParseClassName extracts program, section and semester from labels such as
// "B.Tech (CSE) III A" or "B.Tech IT V Section B". The semester is the last
// Roman numeral (or bare number) token, the section the last standalone
// upper-case letter, defaulting to "A". The boolean is false when no program
// text remains.
func ParseClassName(label string) (ClassName, bool) {
	tokens := strings.Fields(strings.NewReplacer("(", " ", ")", " ").Replace(label))
	if len(tokens) == 0 {
		return ClassName{}, false
	}

	cut := len(tokens)
	for i, token := range tokens {
		if strings.EqualFold(token, "section") || strings.EqualFold(token, "sec") {
			cut = i
			break
		}
	}

	var semesterIdx []int
	for i, token := range tokens {
		if isSemesterToken(token) {
			semesterIdx = append(semesterIdx, i)
		}
	}
	semIdx := -1
	if n := len(semesterIdx); n > 0 {
		semIdx = semesterIdx[n-1]
	}

	secIdx := -1
	for i := len(tokens) - 1; i >= 0; i-- {
		if i != semIdx && isSectionLetter(tokens[i]) {
			secIdx = i
			break
		}
	}
	// "CSE III I": a trailing single-letter numeral is the section when an
	// earlier numeral supplies the semester.
	if secIdx < semIdx && len(semesterIdx) > 1 && semIdx == len(tokens)-1 && isSectionLetter(tokens[semIdx]) {
		secIdx = semIdx
		semIdx = semesterIdx[len(semesterIdx)-2]
	}

	class := ClassName{Section: "A"}
	if semIdx >= 0 {
		class.Semester = semesterNumber(tokens[semIdx])
	}
	if secIdx >= 0 {
		class.Section = tokens[secIdx]
	}

	var words []string
	for i, token := range tokens[:cut] {
		if i == semIdx || i == secIdx {
			continue
		}
		words = append(words, token)
	}
	program := programName(strings.Join(words, " "))
	if program == "" {
		return ClassName{}, false
	}
	class.Program = program
	return class, true
}

func programName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = bTechPrefix.ReplaceAllString(s, "B.Tech")
	switch {
	case bTechIT.MatchString(s):
		return "B.Tech IT"
	case bTechCSE.MatchString(s):
		return "B.Tech CSE"
	}
	return s
}

func isSemesterToken(token string) bool {
	if _, ok := romanSemesters[strings.ToUpper(token)]; ok {
		return true
	}
	n, err := strconv.Atoi(token)
	return err == nil && n >= 1 && n <= 12
}

func isSectionLetter(token string) bool {
	return len(token) == 1 && token[0] >= 'A' && token[0] <= 'Z'
}

// semesterNumber maps "III", "3" or "3rd" to "3"; unknown values pass through trimmed.
func semesterNumber(s string) string {
	s = strings.TrimSpace(s)
	if n, ok := romanSemesters[strings.ToUpper(s)]; ok {
		return n
	}
	digits := strings.TrimRightFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if _, err := strconv.Atoi(digits); err == nil {
		return digits
	}
	return s
}

// splitFaculty turns "RMK (Dr. Ram Kumar)" into ("Dr. Ram Kumar", "RMK").
func splitFaculty(s string) (name, code string) {
	s = strings.TrimSpace(s)
	if m := facultyParens.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[2]), m[1]
	}
	return s, ""
}

// builder accumulates converted entries, creating programs and sections on demand.
type builder struct {
	tt Timetable
}

func newBuilder() *builder {
	return &builder{tt: Empty()}
}

func (b *builder) add(class ClassName, row Row) bool {
	subject := strings.TrimSpace(row.SubjectName)
	if subject == "" {
		subject = strings.TrimSpace(row.Subject)
	}
	if subject == "" {
		return false
	}

	faculty, code := splitFaculty(row.Faculty)
	if explicit := strings.TrimSpace(row.FacultyCode); explicit != "" {
		code = explicit
	}
	course := Course{
		SubjectCode: strings.TrimSpace(row.SubjectCode),
		SubjectName: subject,
		Faculty:     faculty,
		FacultyCode: code,
		Day:         strings.TrimSpace(row.Day),
		Time:        strings.TrimSpace(row.Time),
	}

	program, ok := b.tt.Programs[class.Program]
	if !ok {
		program = Program{Semester: class.Semester, Sections: map[string]Section{}}
	} else if program.Semester == "" {
		program.Semester = class.Semester
	}
	section, ok := program.Sections[class.Section]
	if !ok {
		section = newSection()
	}
	if labSubject.MatchString(subject) || labType.MatchString(row.Type) {
		section.Labs = append(section.Labs, Lab{Course: course, Group: strings.TrimSpace(row.Group)})
	} else {
		section.Courses = append(section.Courses, course)
	}
	program.Sections[class.Section] = section
	b.tt.Programs[class.Program] = program
	return true
}

func rowsFromJSON(items []any) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		rows = append(rows, rowFromJSON(obj))
	}
	return rows
}

func rowFromJSON(obj map[string]any) Row {
	return Row{
		ClassName:   text(obj["class_name"]),
		Program:     text(obj["program"]),
		Section:     text(obj["section"]),
		Semester:    text(obj["semester"]),
		Day:         text(obj["day"]),
		Time:        text(obj["time"]),
		Subject:     text(obj["subject"]),
		SubjectName: text(obj["subject_name"]),
		SubjectCode: text(obj["subject_code"]),
		Faculty:     text(obj["faculty"]),
		FacultyCode: text(obj["faculty_code"]),
		Type:        text(obj["type"]),
		Group:       text(obj["group"]),
	}
}

func courseFromJSON(obj map[string]any) Course {
	return Course{
		SubjectCode: text(obj["subject_code"]),
		SubjectName: text(obj["subject_name"]),
		Faculty:     text(obj["faculty"]),
		FacultyCode: text(obj["faculty_code"]),
		Day:         text(obj["day"]),
		Time:        text(obj["time"]),
	}
}

// list returns the object elements of a JSON array, skipping anything else.
func list(v any) []map[string]any {
	items, _ := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// text renders scalar JSON values as strings; null and non-scalars become "".
func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
