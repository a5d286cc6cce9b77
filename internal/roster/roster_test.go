package roster

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestNormalizeStudent(t *testing.T) {
	t.Parallel()

	in := Student{Name: "  adarsh singh ", Program: " btech (cse) ", Section: "Section a", Semester: "III", Group: " G1 "}
	got := NormalizeStudent(in)
	want := Student{Name: "adarsh singh", Program: "btech (cse)", Section: "A", Semester: "3", Group: "G1", NormalizedProgram: "B.Tech CSE"}
	if got != want {
		t.Fatalf("NormalizeStudent = %+v, want %+v", got, want)
	}
	if in.Section != "Section a" {
		t.Fatalf("input was modified")
	}
}

func TestNormalizeSemester(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"III":          "3",
		"iv":           "4",
		"3rd":          "3",
		"1st":          "1",
		"Sem 5":        "5",
		"Semester VI":  "6",
		"05":           "5",
		"":             "",
		"final":        "final",
		" semester 2 ": "2",
	}
	for input, want := range cases {
		if got := NormalizeSemester(input); got != want {
			t.Fatalf("NormalizeSemester(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestEventDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		meta EventMetadata
		want string
	}{
		{"explicit day wins", EventMetadata{Day: "Friday", EventDate: "02-06-2025"}, "Friday"},
		{"day first dashes", EventMetadata{EventDate: "02-06-2025"}, "Monday"},
		{"day first slashes", EventMetadata{EventDate: "15/11/2023"}, "Wednesday"},
		{"iso", EventMetadata{EventDate: "2023-11-15"}, "Wednesday"},
		{"spelled out", EventMetadata{EventDate: "November 15, 2023"}, "Wednesday"},
		{"day month name", EventMetadata{EventDate: "15 Nov 2023"}, "Wednesday"},
		{"spreadsheet serial", EventMetadata{EventDate: "45245"}, "Wednesday"},
		{"overflowing date", EventMetadata{EventDate: "31-02-2024"}, ""},
		{"nothing usable", EventMetadata{EventDate: "soon"}, ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := EventDay(tc.meta); got != tc.want {
				t.Fatalf("EventDay(%+v) = %q, want %q", tc.meta, got, tc.want)
			}
		})
	}
}

func TestFormatEventDate(t *testing.T) {
	t.Parallel()

	if got := FormatEventDate("2023-11-15"); got != "15-11-2023" {
		t.Fatalf("FormatEventDate = %q", got)
	}
	if got := FormatEventDate("next week"); got != "next week" {
		t.Fatalf("unparseable dates should pass through, got %q", got)
	}
	date, ok := ParseEventDate("2-6-2025")
	if !ok || !date.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParseEventDate = %v, %v", date, ok)
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	t.Parallel()

	event := EventMetadata{
		EventName:   "Coding Workshop",
		Coordinator: "Dr. John Smith",
		EventDate:   "15-11-2023",
		Day:         "Wednesday",
		EventTime:   "10:00-12:00",
		Venue:       "Computer Lab 101",
	}
	students := []Student{
		{Name: "John Doe", Program: "B.Tech CSE", Section: "A", Semester: "3", Group: "Group 1"},
		{Name: "Jane Smith", Program: "B.Tech CSE", Section: "B", Semester: "3", Group: "Group 2"},
	}

	var buf bytes.Buffer
	if err := WriteTemplate(&buf, event, students); err != nil {
		t.Fatalf("WriteTemplate returned error: %v", err)
	}

	upload, err := ReadWorkbook(&buf)
	if err != nil {
		t.Fatalf("ReadWorkbook returned error: %v", err)
	}
	if upload.Event != event {
		t.Fatalf("event mismatch: got %+v, want %+v", upload.Event, event)
	}
	if len(upload.Students) != 2 || upload.Students[1] != students[1] {
		t.Fatalf("students mismatch: %+v", upload.Students)
	}
	if upload.Sheet != "OD Request" {
		t.Fatalf("unexpected sheet %q", upload.Sheet)
	}
}

func TestReadWorkbookHorizontalHeader(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	rows := [][]any{
		{"Event Name", "Date", "Day", "Time", "Venue", "Coordinator"},
		{"Hack Day", "02-06-2025", "", "9:15-10:10_10:15-11:10", "Amity University", "Dr. Ram Kumar"},
		{},
		{"S.No", "Name", "Program", "Section", "Semester", "Group", "Email"},
		{1, "Adarsh Singh", "CSE", "A", 3, "1", "adarsh@example.com"},
		{2, "", "CSE", "A", 3, "1", ""},
		{3, "Namma Singh", "BCA", "A", 3, "1", "namma@example.com"},
	}
	for i, values := range rows {
		ref, _ := excelize.CoordinatesToCellName(1, i+1)
		values := values
		if err := f.SetSheetRow("Sheet1", ref, &values); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	upload, err := ReadWorkbook(&buf)
	if err != nil {
		t.Fatalf("ReadWorkbook returned error: %v", err)
	}
	if upload.Event.EventName != "Hack Day" || upload.Event.EventTime != "9:15-10:10_10:15-11:10" || upload.Event.Coordinator != "Dr. Ram Kumar" {
		t.Fatalf("unexpected event %+v", upload.Event)
	}
	if upload.Event.Day != "" || EventDay(upload.Event) != "Monday" {
		t.Fatalf("expected day derived from date, got %q", EventDay(upload.Event))
	}
	if len(upload.Students) != 2 {
		t.Fatalf("rows without a name should be skipped, got %+v", upload.Students)
	}
	if upload.Students[0].Semester != "3" || upload.Students[1].Program != "BCA" {
		t.Fatalf("unexpected students %+v", upload.Students)
	}
}

func TestReadWorkbookErrors(t *testing.T) {
	t.Parallel()

	if _, err := ReadWorkbook(bytes.NewReader([]byte("not a workbook"))); !errors.Is(err, ErrInvalidWorkbook) {
		t.Fatalf("expected ErrInvalidWorkbook, got %v", err)
	}

	var buf bytes.Buffer
	if err := WriteTemplate(&buf, EventMetadata{EventName: "Empty"}, nil); err != nil {
		t.Fatalf("WriteTemplate returned error: %v", err)
	}
	upload, err := ReadWorkbook(&buf)
	if !errors.Is(err, ErrNoStudents) {
		t.Fatalf("expected ErrNoStudents, got %v", err)
	}
	if upload.Event.EventName != "Empty" {
		t.Fatalf("metadata should still be returned, got %+v", upload.Event)
	}
}
