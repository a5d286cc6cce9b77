// Package timeslot converts free-form time strings such as
// "09:15–10:10_10:15–11:10" or "9:15 am - 10:10 a.m." into ordered slots and
// minute offsets.
package timeslot

import (
	"regexp"
	"strconv"
	"strings"
)

// Slot is a raw start/end pair as written in the source, e.g. {"09:15", "10:10"}.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

var (
	blockSeparator = regexp.MustCompile(`[_;,]+`)
	rangePattern   = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*(?:[ap]\.?m\.?)?)[\s-]+(\d{1,2}:\d{2}\s*(?:[ap]\.?m\.?)?)`)
	meridiemSuffix = regexp.MustCompile(`(?i)\s*([ap])\.?m\.?$`)
	dashReplacer   = strings.NewReplacer("–", "-", "—", "-", "−", "-")
)

// ParseSlots extracts every "start-end" range from raw in the order they appear.
// Ranges may be separated by underscores, commas or semicolons, or simply follow
// one another. Unmatched input yields an empty result.
func ParseSlots(raw string) []Slot {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	text := dashReplacer.Replace(raw)
	blocks := make([]string, 0, 2)
	for _, block := range blockSeparator.Split(text, -1) {
		if block = strings.TrimSpace(block); block != "" {
			blocks = append(blocks, block)
		}
	}
	if len(blocks) == 0 {
		blocks = append(blocks, text)
	}

	var slots []Slot
	for _, block := range blocks {
		for _, match := range rangePattern.FindAllStringSubmatch(block, -1) {
			start := strings.TrimSpace(match[1])
			end := strings.TrimSpace(match[2])
			if start != "" && end != "" {
				slots = append(slots, Slot{Start: start, End: end})
			}
		}
	}
	return slots
}

// ToMinutes converts a 12- or 24-hour time into minutes since midnight.
// Malformed input yields 0, which callers cannot distinguish from midnight;
// use ParseMinutes when that matters.
func ToMinutes(value string) int {
	minutes, _ := ParseMinutes(value)
	return minutes
}

// ParseMinutes is the strict form of ToMinutes. It reports false when the
// hour or minute component is not numeric or out of range.
func ParseMinutes(value string) (int, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}

	meridiem := ""
	if m := meridiemSuffix.FindStringSubmatch(s); m != nil {
		meridiem = strings.ToLower(m[1])
		s = strings.TrimSpace(s[:len(s)-len(m[0])])
	}

	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	hours, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes := 0
	if hasMinutes {
		minutes, err = strconv.Atoi(strings.TrimSpace(minutePart))
		if err != nil || minutes < 0 || minutes > 59 {
			return 0, false
		}
	}

	switch meridiem {
	case "a":
		if hours > 12 {
			return 0, false
		}
		if hours == 12 {
			hours = 0
		}
	case "p":
		if hours > 12 {
			return 0, false
		}
		if hours != 12 {
			hours += 12
		}
	default:
		if hours > 24 {
			return 0, false
		}
	}

	return hours*60 + minutes, true
}

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals share at least one minute.
// Touching boundaries do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// ToInterval converts a slot to minutes. It reports false when either endpoint is malformed.
func (s Slot) ToInterval() (Interval, bool) {
	start, ok := ParseMinutes(s.Start)
	if !ok {
		return Interval{}, false
	}
	end, ok := ParseMinutes(s.End)
	if !ok {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// String renders the slot as "start-end".
func (s Slot) String() string {
	return s.Start + "-" + s.End
}

// Overlaps reports whether the event slot overlaps any range contained in
// entryTime. Ranges with malformed endpoints are ignored.
func Overlaps(event Slot, entryTime string) bool {
	eventInterval, ok := event.ToInterval()
	if !ok {
		return false
	}
	for _, slot := range ParseSlots(entryTime) {
		entryInterval, ok := slot.ToInterval()
		if !ok {
			continue
		}
		if eventInterval.Overlaps(entryInterval) {
			return true
		}
	}
	return false
}
