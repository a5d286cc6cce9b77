package labels

import (
	"reflect"
	"testing"
)

func TestDay(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Mon":        "monday",
		"MONDAY":     "monday",
		"tues":       "tuesday",
		" Wed ":      "wednesday",
		"Thurs":      "thursday",
		"thu":        "thursday",
		"Fri.":       "friday",
		"saturdays":  "saturday",
		"Sun":        "sunday",
		"":           "",
		"Holiday":    "holiday",
		"Wednesday ": "wednesday",
	}
	for input, want := range cases {
		if got := Day(input); got != want {
			t.Fatalf("Day(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestGroupTokens(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label string
		want  []string
	}{
		{"G1", []string{"1"}},
		{"Grp-2", []string{"2"}},
		{"Group 2", []string{"2"}},
		{"1 & 2", []string{"1", "2"}},
		{"A/B", []string{"a", "b"}},
		{"Group A", []string{"a"}},
		{"Both", []string{"both"}},
		{"All groups", []string{"all"}},
		{"g1, g1", []string{"1"}},
		{"", nil},
		{"lab", nil},
	}
	for _, tc := range cases {
		if got := GroupTokens(tc.label); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("GroupTokens(%q) = %#v, want %#v", tc.label, got, tc.want)
		}
	}
}

func TestGroupHelpers(t *testing.T) {
	t.Parallel()

	if !IsAllGroups([]string{"both"}) || IsAllGroups([]string{"1"}) {
		t.Fatalf("IsAllGroups misclassified tokens")
	}
	if !GroupsIntersect([]string{"2"}, []string{"1", "2"}) {
		t.Fatalf("expected intersection")
	}
	if GroupsIntersect(nil, []string{"1"}) {
		t.Fatalf("student without tokens must not intersect")
	}
}

func TestResolveProgram(t *testing.T) {
	t.Parallel()

	keys := []string{"B.Tech CSE", "B.Tech IT", "BCA"}

	cases := []struct {
		name    string
		program string
		want    string
		ok      bool
	}{
		{"exact case-insensitive", "b.tech cse", "B.Tech CSE", true},
		{"spelling without dot", "BTech CSE", "B.Tech CSE", true},
		{"expanded abbreviation", "B.Tech Information Technology", "B.Tech IT", true},
		{"expanded computer applications", "Bachelor of Computer Applications", "BCA", true},
		{"diacritics folded", "B.Téch IT", "B.Tech IT", true},
		{"unknown program", "MBA", "", false},
		{"empty program never matches", "", "", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveProgram(tc.program, keys)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ResolveProgram(%q) = (%q, %v), want (%q, %v)", tc.program, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestResolveProgramPrefersExactOverFuzzy(t *testing.T) {
	t.Parallel()

	keys := []string{"B.Tech CSE (AI)", "B.Tech CSE"}
	got, ok := ResolveProgram("B.Tech CSE", keys)
	if !ok || got != "B.Tech CSE" {
		t.Fatalf("expected exact key, got %q", got)
	}
}

func TestResolveProgramPrefersEqualVariantOverSubstring(t *testing.T) {
	t.Parallel()

	cases := []struct {
		program string
		keys    []string
		want    string
	}{
		{program: "btech cse", keys: []string{"B.Tech", "B.Tech CSE"}, want: "B.Tech CSE"},
		{program: "btech it", keys: []string{"B.Tech CSE", "B.Tech", "B.Tech IT"}, want: "B.Tech IT"},
		{program: "btech", keys: []string{"B.Tech CSE", "B.Tech"}, want: "B.Tech"},
	}

	for _, tc := range cases {
		t.Run(tc.program, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveProgram(tc.program, tc.keys)
			if !ok || got != tc.want {
				t.Fatalf("ResolveProgram(%q, %v) = (%q, %v), want %q", tc.program, tc.keys, got, ok, tc.want)
			}
		})
	}
}

func TestResolveSection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		label string
		keys  []string
		want  string
		ok    bool
	}{
		{"plain letter", "A", []string{"A", "B"}, "A", true},
		{"lower-case letter", "b", []string{"A", "B"}, "B", true},
		{"prefixed label to plain key", "Section C", []string{"A", "C"}, "C", true},
		{"plain label to prefixed key", "D", []string{"SECTION D", "SECTION E"}, "SECTION D", true},
		{"abbreviated key", "e", []string{"Sec E"}, "Sec E", true},
		{"letter carried by key", "F", []string{"CSE-F"}, "CSE-F", true},
		{"no matching key", "Z", []string{"A", "B"}, "", false},
		{"empty label", "", []string{"A"}, "", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveSection(tc.label, tc.keys)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ResolveSection(%q) = (%q, %v), want (%q, %v)", tc.label, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestNormalizers(t *testing.T) {
	t.Parallel()

	if got := NormalizeProgram("btech (cse)"); got != "B.Tech CSE" {
		t.Fatalf("NormalizeProgram = %q", got)
	}
	if got := NormalizeSection("sec. b"); got != "B" {
		t.Fatalf("NormalizeSection = %q", got)
	}
	if got := NormalizeSection("Section A"); got != "A" {
		t.Fatalf("NormalizeSection = %q", got)
	}
	if got := Fold("  B.Téch   CSE "); got != "b.tech cse" {
		t.Fatalf("Fold = %q", got)
	}
}
