package roster

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var dayMonthYear = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)

// dateLayouts are tried after the day-first numeric forms.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"Monday, January 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2006-01-02T15:04:05Z07:00",
}

// EventDay returns the weekday the event happens on. An explicit Day wins;
// otherwise it is derived from EventDate. The result is "" when neither is usable.
func EventDay(meta EventMetadata) string {
	if day := strings.TrimSpace(meta.Day); day != "" {
		return day
	}
	date, ok := ParseEventDate(meta.EventDate)
	if !ok {
		return ""
	}
	return date.Weekday().String()
}

// ParseEventDate parses DD-MM-YYYY, DD/MM/YYYY, ISO dates, spelled-out
// English dates and spreadsheet date serials.
func ParseEventDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow such as 31-02; reject it.
		if date.Day() != day || int(date.Month()) != month {
			return time.Time{}, false
		}
		return date, true
	}

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, s); err == nil {
			return date, true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		if date, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

// FormatEventDate renders the date as DD-MM-YYYY, the form used in mail
// subjects. The raw value is returned when it cannot be parsed.
func FormatEventDate(raw string) string {
	date, ok := ParseEventDate(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}
	return date.Format("02-01-2006")
}
