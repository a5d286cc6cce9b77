package timeslot

import (
	"reflect"
	"testing"
)

func TestParseSlots(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want []Slot
	}{
		{
			name: "underscore separated ranges keep input order",
			raw:  "09:15-10:10_10:15-11:10",
			want: []Slot{{Start: "09:15", End: "10:10"}, {Start: "10:15", End: "11:10"}},
		},
		{
			name: "en dash and comma",
			raw:  "09:15–10:10, 10:15–11:10",
			want: []Slot{{Start: "09:15", End: "10:10"}, {Start: "10:15", End: "11:10"}},
		},
		{
			name: "meridiem markers with periods",
			raw:  "9:15 a.m. - 10:10 A.M.; 2:15 pm-3:10 PM",
			want: []Slot{{Start: "9:15 a.m.", End: "10:10 A.M."}, {Start: "2:15 pm", End: "3:10 PM"}},
		},
		{
			name: "ranges without explicit delimiters",
			raw:  "09:15-10:10 10:15-11:10",
			want: []Slot{{Start: "09:15", End: "10:10"}, {Start: "10:15", End: "11:10"}},
		},
		{name: "garbage yields nothing", raw: "after lunch", want: nil},
		{name: "empty yields nothing", raw: "   ", want: nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParseSlots(tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseSlots(%q) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestToMinutes(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"12:00 am":  0,
		"12:30 pm":  750,
		"9:05":      545,
		"09:15":     555,
		"10:10 PM":  1330,
		"1:00 p.m.": 780,
		"9":         540,
		"13:15":     795,
		"nonsense":  0,
		"":          0,
		"7:75":      0,
	}
	for input, want := range cases {
		if got := ToMinutes(input); got != want {
			t.Fatalf("ToMinutes(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestParseMinutesReportsMalformedInput(t *testing.T) {
	t.Parallel()

	if _, ok := ParseMinutes("ab:cd"); ok {
		t.Fatalf("expected malformed input to be reported")
	}
	if _, ok := ParseMinutes("13:00 pm"); ok {
		t.Fatalf("expected 13 pm to be rejected")
	}
	if got, ok := ParseMinutes("00:00"); !ok || got != 0 {
		t.Fatalf("expected true midnight to parse, got %d %v", got, ok)
	}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	first := "9:15-10:10"
	second := "10:15-11:10"

	t.Run("event matching first lecture", func(t *testing.T) {
		event := Slot{Start: "9:15", End: "10:10"}
		if !Overlaps(event, first) {
			t.Fatalf("expected overlap with first lecture")
		}
		if Overlaps(event, second) {
			t.Fatalf("did not expect overlap with second lecture")
		}
	})

	t.Run("boundary touching gap overlaps nothing", func(t *testing.T) {
		event := Slot{Start: "10:10", End: "10:15"}
		if Overlaps(event, first) || Overlaps(event, second) {
			t.Fatalf("boundary-touching slot must not overlap")
		}
	})

	t.Run("any range of a multi-range entry counts", func(t *testing.T) {
		event := Slot{Start: "10:30", End: "10:45"}
		if !Overlaps(event, "09:15-10:10_10:15-11:10") {
			t.Fatalf("expected overlap with the second range")
		}
	})

	t.Run("12 hour entries compare against 24 hour events", func(t *testing.T) {
		event := Slot{Start: "14:00", End: "15:00"}
		if !Overlaps(event, "2:15 pm - 3:10 pm") {
			t.Fatalf("expected overlap across clock formats")
		}
	})

	t.Run("malformed entry never overlaps", func(t *testing.T) {
		event := Slot{Start: "00:00", End: "00:30"}
		if Overlaps(event, "TBA") {
			t.Fatalf("malformed entry must not overlap")
		}
	})
}
