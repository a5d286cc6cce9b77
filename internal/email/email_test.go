package email

import (
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/example/od-mailer/internal/overlap"
	"github.com/example/od-mailer/internal/roster"
)

func result(name, program, section, semester string, lectures ...overlap.MissedLecture) overlap.StudentResult {
	if lectures == nil {
		lectures = []overlap.MissedLecture{}
	}
	return overlap.StudentResult{
		Student:        roster.Student{Name: name, Program: program, Section: section, Semester: semester},
		MissedLectures: lectures,
	}
}

func missed(subject, faculty, time, group string) overlap.MissedLecture {
	return overlap.MissedLecture{SubjectName: subject, Faculty: faculty, Time: time, Group: group, Day: "Wednesday"}
}

func sampleMeta() roster.EventMetadata {
	return roster.EventMetadata{
		EventName:   "Hackathon",
		Coordinator: "priya SHARMA",
		EventDate:   "12-11-2025",
		Day:         "Wednesday",
		EventTime:   "11:15-12:10",
		Venue:       "Main Auditorium",
	}
}

func TestGroupStudentsKeepsFirstAppearanceOrder(t *testing.T) {
	t.Parallel()

	groups := GroupStudents([]overlap.StudentResult{
		result("a", "B.Tech CSE", "b", "3"),
		result("b", "BBA", "A", "1"),
		result("c", "b.tech cse", "B", "3"),
		result("d", "B.Tech CSE", "B", "5"),
	})
	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	want := []string{"B.TECH CSE|B|3", "BBA|A|1", "B.TECH CSE|B|5"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if len(groups[0].Students) != 2 || groups[0].Students[1].Name != "c" {
		t.Fatalf("case-insensitive members should share a group: %+v", groups[0].Students)
	}
	if groups[0].Program != "B.Tech CSE" {
		t.Fatalf("group keeps the first member's labels, got %q", groups[0].Program)
	}
}

func TestSubject(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		meta roster.EventMetadata
		want string
	}{
		{"full", sampleMeta(), "On Duty (OD) Approval for Hackathon - 12-11-2025"},
		{"slash date", roster.EventMetadata{EventName: "Expo", EventDate: "5/6/2025"}, "On Duty (OD) Approval for Expo - 05-06-2025"},
		{"missing", roster.EventMetadata{}, "On Duty (OD) Approval for Event - TBD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Subject(tc.meta); got != tc.want {
				t.Fatalf("Subject = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"ASHA VERMA":        "Asha Verma",
		"  rahul   kumar  ": "Rahul Kumar",
		"":                  "",
	} {
		if got := TitleCase(in); got != want {
			t.Fatalf("TitleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlainTextBody(t *testing.T) {
	t.Parallel()

	groups := GroupStudents([]overlap.StudentResult{
		result("zara khan", "B.Tech CSE", "B", "3", missed("DSC LAB", "Dr. Rao", "11:15-12:10", "G2")),
		result("ASHA VERMA", "B.Tech CSE", "A", "3",
			missed("Maths", "Dr. Iyer", "11:15-12:10", ""),
			missed("Library", "", "12:10-13:00", ""),
		),
		result("ravi", "B.Tech CSE", "A", "3", missed("Maths", "Dr. Iyer", "11:15-12:10", "")),
		result("idle", "BBA", "A", "1"),
	})
	body := PlainText(sampleMeta(), groups)

	wantLines := []string{
		"Dear Faculty,",
		"Please grant On Duty (OD) approval for the following students who participated in Hackathon organized on 12-11-2025 (Wednesday) at Main Auditorium.",
		"Coordinator: Priya Sharma",
		"Event Time: 11:15-12:10",
		"B.TECH CSE - A (Semester 3)",
		"Subject: Maths",
		"Faculty: Dr. Iyer",
		"Timing: 11:15-12:10",
		"• Asha Verma",
		"• Ravi",
		"Group: G2",
		"• Zara Khan",
	}
	for _, line := range wantLines {
		if !strings.Contains(body, line+"\n") {
			t.Fatalf("body is missing line %q:\n%s", line, body)
		}
	}
	if strings.Contains(body, "Library") {
		t.Fatalf("filler periods must be left out:\n%s", body)
	}
	if strings.Contains(body, "BBA") {
		t.Fatalf("groups without missed lectures must be left out:\n%s", body)
	}
	if strings.Index(body, "B.TECH CSE - A") > strings.Index(body, "B.TECH CSE - B") {
		t.Fatalf("groups should be sorted by section:\n%s", body)
	}
	if !strings.HasSuffix(body, "Best regards,\nPriya Sharma\nEvent Coordinator") {
		t.Fatalf("unexpected closing:\n%s", body)
	}
}

func TestPlainTextDefaults(t *testing.T) {
	t.Parallel()

	body := PlainText(roster.EventMetadata{}, nil)
	for _, want := range []string{"participated in the event organized on TBD at the venue.", "Event Time: N/A"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body is missing %q:\n%s", want, body)
		}
	}
}

func TestHTMLEscapesAndListsParticipants(t *testing.T) {
	t.Parallel()

	meta := sampleMeta()
	meta.EventName = "<Code & Coffee>"
	groups := GroupStudents([]overlap.StudentResult{
		result("asha verma", "B.Tech CSE", "A", "3", missed("Maths", "Dr. Iyer", "11:15-12:10", "")),
		result("idle one", "BBA", "A", "1"),
	})
	html, err := HTML(meta, groups)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if strings.Contains(html, "<Code & Coffee>") || !strings.Contains(html, "&lt;Code &amp; Coffee&gt;") {
		t.Fatalf("event name should be escaped:\n%s", html)
	}
	for _, want := range []string{"Idle One", "<li>Asha Verma</li>", "<b>Timing:</b> 11:15-12:10"} {
		if !strings.Contains(html, want) {
			t.Fatalf("html is missing %q:\n%s", want, html)
		}
	}
}

func TestComposeURLs(t *testing.T) {
	t.Parallel()

	mailto := MailtoURL("OD & approval", "line one\nline two")
	if mailto != "mailto:?subject=OD%20%26%20approval&body=line%20one%0Aline%20two" {
		t.Fatalf("unexpected mailto %q", mailto)
	}

	short, tooLong := GmailComposeURL("s", "b")
	if tooLong {
		t.Fatalf("short url flagged as too long")
	}
	parsed, err := url.Parse(short)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q := parsed.Query(); q.Get("view") != "cm" || q.Get("su") != "s" || q.Get("body") != "b" {
		t.Fatalf("unexpected query %v", q)
	}

	if _, tooLong := GmailComposeURL("s", strings.Repeat("x", GmailURLLimit)); !tooLong {
		t.Fatalf("long url should be flagged")
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	content, err := Build(sampleMeta(), []overlap.StudentResult{
		result("asha verma", "B.Tech CSE", "A", "3", missed("Maths", "Dr. Iyer", "11:15-12:10", "")),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if content.Subject != Subject(sampleMeta()) {
		t.Fatalf("unexpected subject %q", content.Subject)
	}
	if !strings.Contains(content.Body, "• Asha Verma") || !strings.Contains(content.HTML, "Asha Verma") {
		t.Fatalf("student missing from content %+v", content)
	}
	if !strings.HasPrefix(content.MailtoURL, "mailto:?subject=") || content.GmailTooLong {
		t.Fatalf("unexpected links %+v", content)
	}
}

func TestValidateAndSummarize(t *testing.T) {
	t.Parallel()

	groups := GroupStudents([]overlap.StudentResult{
		result("a", "B.Tech CSE", "A", "3", missed("Maths", "x", "09:15-10:10", ""), missed("Physics", "y", "10:15-11:10", "")),
		result("b", "B.Tech CSE", "A", "3"),
		result("c", "BBA", "A", "1"),
	})

	if warnings := Validate(sampleMeta(), groups); !reflect.DeepEqual(warnings, []string{"2 students have no missed lectures"}) {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	if warnings := Validate(roster.EventMetadata{}, nil); len(warnings) != 5 {
		t.Fatalf("expected five warnings for empty input, got %v", warnings)
	}

	want := Summary{TotalStudents: 3, TotalGroups: 2, TotalMissedLectures: 2, EventName: "Hackathon", EventDate: "12-11-2025"}
	if got := Summarize(sampleMeta(), groups); got != want {
		t.Fatalf("Summarize = %+v, want %+v", got, want)
	}
	if got := Summarize(roster.EventMetadata{}, nil); got.EventName != "N/A" || got.EventDate != "N/A" {
		t.Fatalf("missing metadata should default to N/A, got %+v", got)
	}
}
