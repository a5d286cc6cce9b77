package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/example/od-mailer/internal/overlap"
	"github.com/example/od-mailer/internal/roster"
)

// GmailURLLimit is the longest compose URL browsers reliably open.
const GmailURLLimit = 8000

const (
	separator = "-----------------------------"
	bullet    = "•"
)

// Content is a fully rendered mail.
type Content struct {
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	HTML         string `json:"html"`
	MailtoURL    string `json:"mailtoUrl"`
	GmailURL     string `json:"gmailUrl"`
	GmailTooLong bool   `json:"gmailTooLong"`
}

var titleCaser = sync.Pool{New: func() any { return cases.Title(language.English) }}

// TitleCase capitalizes each word of a name and lower-cases the rest.
func TitleCase(s string) string {
	caser := titleCaser.Get().(cases.Caser)
	defer titleCaser.Put(caser)
	return caser.String(strings.Join(strings.Fields(s), " "))
}

// Subject renders "On Duty (OD) Approval for <event> - <DD-MM-YYYY>".
func Subject(meta roster.EventMetadata) string {
	name := strings.TrimSpace(meta.EventName)
	if name == "" {
		name = "Event"
	}
	date := "TBD"
	if strings.TrimSpace(meta.EventDate) != "" {
		date = roster.FormatEventDate(meta.EventDate)
	}
	return fmt.Sprintf("On Duty (OD) Approval for %s - %s", name, date)
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}

func dayClause(meta roster.EventMetadata) string {
	if day := strings.TrimSpace(meta.Day); day != "" {
		return " (" + day + ")"
	}
	return ""
}

// PlainText renders the mail body. Only groups with missed lectures are
// listed, sorted by program, section and semester.
func PlainText(meta roster.EventMetadata, groups []Group) string {
	coordinator := TitleCase(meta.Coordinator)

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("Dear Faculty,")
	line("")
	line("I hope this email finds you well.")
	line("")
	line("Please grant On Duty (OD) approval for the following students who participated in %s organized on %s%s at %s.",
		orDefault(meta.EventName, "the event"), orDefault(meta.EventDate, "TBD"), dayClause(meta), orDefault(meta.Venue, "the venue"))
	line("")
	line("Coordinator: %s", coordinator)
	line("Event Time: %s", orDefault(meta.EventTime, "N/A"))
	line("")
	line(separator)
	line("")

	for _, g := range sortGroups(groups) {
		if !g.HasMissedLectures() {
			continue
		}
		line("%s - %s (Semester %s)", strings.ToUpper(g.Program), strings.ToUpper(g.Section), g.Semester)
		line("Missed Lectures:")
		line("")
		for _, bucket := range bucketLectures(g) {
			line("Subject: %s", bucket.Subject)
			line("Faculty: %s", bucket.Faculty)
			line("Timing: %s", bucket.Time)
			if bucket.Group != "" {
				line("Group: %s", bucket.Group)
			}
			for _, name := range bucket.Students {
				line("%s %s", bullet, name)
			}
			line("")
		}
		line(separator)
		line("")
	}

	line("I kindly request OD approval for the mentioned students.")
	line("")
	line("Thank you for your consideration.")
	line("")
	line("Best regards,")
	line("%s", coordinator)
	b.WriteString("Event Coordinator")
	return b.String()
}

var htmlBody = template.Must(template.New("od").Parse(`<div style="font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 0 auto;">
<p><b>Dear Faculty,</b></p>
<p>I hope this email finds you well.</p>
<p>Please grant <b>On Duty (OD) approval</b> for the following students, who participated in <b>{{.EventName}}</b> organized on <b>{{.EventDate}}{{.Day}}</b> at <b>{{.Venue}}</b>.</p>
<p><b>Coordinator:</b> {{.Coordinator}}<br>
<b>Event Time:</b> {{.EventTime}}</p>
{{- if .Participants}}
<p><b>Participants:</b></p>
{{- range .Participants}}
<p><b>{{.Program}} - Section {{.Section}} (Semester {{.Semester}}):</b><br>{{.Names}}</p>
{{- end}}
{{- end}}
{{- if .Missed}}
<div style="margin-top: 30px;">
{{- range .Missed}}
<p style="margin: 25px 0 10px 0; font-size: 1.1em;"><b>{{.Program}} - Section {{.Section}} (Semester {{.Semester}})</b></p>
<p><b>Missed Lectures:</b></p>
{{- range .Lectures}}
<div style="margin: 15px 0 20px 15px;">
<p style="margin: 5px 0;"><b>Subject:</b> <b>{{.Subject}}</b><br>
<b>Faculty:</b> {{.Faculty}}<br>
<b>Timing:</b> {{.Time}}{{if .Group}}<br><b>Group:</b> {{.Group}}{{end}}</p>
<ul style="margin: 5px 0 0 20px; padding: 0;">{{range .Students}}<li>{{.}}</li>{{end}}</ul>
</div>
{{- end}}
{{- end}}
</div>
{{- end}}
<div style="margin-top: 30px;">
<p>I kindly request OD approval for the mentioned students.</p>
<p>Thank you for your consideration.</p>
<p style="margin-top: 20px;">Best regards,<br>
<span style="color: #1a365d; font-weight: 500;">{{.Coordinator}}</span><br>
<span style="font-size: 0.9em; color: #4a5568;">Event Coordinator</span></p>
</div>
<div style="margin-top: 40px; padding-top: 15px; border-top: 1px solid #e2e8f0; font-size: 0.8em; color: #718096;">
<p>This is an auto-generated email. Please do not reply directly to this message.</p>
</div>
</div>`))

type htmlParticipants struct {
	Program, Section, Semester, Names string
}

type htmlMissed struct {
	Program, Section, Semester string
	Lectures                   []lectureBucket
}

// HTML renders the mail as an HTML fragment. Participants are listed for
// every group; missed lectures only for groups that have any.
func HTML(meta roster.EventMetadata, groups []Group) (string, error) {
	data := struct {
		EventName, EventDate, Day, Venue, Coordinator, EventTime string
		Participants                                             []htmlParticipants
		Missed                                                   []htmlMissed
	}{
		EventName:   orDefault(meta.EventName, "the event"),
		EventDate:   strings.TrimSpace(meta.EventDate),
		Day:         dayClause(meta),
		Venue:       orDefault(meta.Venue, "the venue"),
		Coordinator: strings.TrimSpace(meta.Coordinator),
		EventTime:   strings.TrimSpace(meta.EventTime),
	}
	for _, g := range groups {
		if len(g.Students) == 0 {
			continue
		}
		names := make([]string, len(g.Students))
		for i, s := range g.Students {
			names[i] = TitleCase(s.Name)
		}
		data.Participants = append(data.Participants, htmlParticipants{
			Program: g.Program, Section: g.Section, Semester: g.Semester, Names: strings.Join(names, ", "),
		})
		if lectures := bucketLectures(g); len(lectures) > 0 {
			data.Missed = append(data.Missed, htmlMissed{Program: g.Program, Section: g.Section, Semester: g.Semester, Lectures: lectures})
		}
	}

	var buf bytes.Buffer
	if err := htmlBody.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("email: render html: %w", err)
	}
	return buf.String(), nil
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// MailtoURL builds a mailto link with no recipient.
func MailtoURL(subject, body string) string {
	return "mailto:?subject=" + encodeComponent(subject) + "&body=" + encodeComponent(body)
}

// GmailComposeURL builds a Gmail compose link. tooLong reports that the URL
// exceeds GmailURLLimit and the caller should fall back to copying the body.
func GmailComposeURL(subject, body string) (composeURL string, tooLong bool) {
	composeURL = "https://mail.google.com/mail/?view=cm&fs=1&su=" + encodeComponent(subject) + "&body=" + encodeComponent(body)
	return composeURL, len(composeURL) > GmailURLLimit
}

// Build renders every part of the mail for the resolved students.
func Build(meta roster.EventMetadata, students []overlap.StudentResult) (Content, error) {
	groups := GroupStudents(students)
	subject := Subject(meta)
	body := PlainText(meta, groups)
	html, err := HTML(meta, groups)
	if err != nil {
		return Content{}, err
	}
	gmail, tooLong := GmailComposeURL(subject, body)
	return Content{
		Subject:      subject,
		Body:         body,
		HTML:         html,
		MailtoURL:    MailtoURL(subject, body),
		GmailURL:     gmail,
		GmailTooLong: tooLong,
	}, nil
}
