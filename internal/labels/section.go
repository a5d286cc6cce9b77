package labels

import (
	"regexp"
	"slices"
	"strings"
)

var (
	trailingLetter   = regexp.MustCompile(`\b([A-Z])\b$`)
	standaloneLetter = regexp.MustCompile(`\b([A-Z])\b`)
	sectionPrefix    = regexp.MustCompile(`(?i)^\s*(section|sec)\b\.?[\s:-]*`)
)

// SectionLetter extracts the section letter from labels such as "A",
// "Section B" or "B.Tech CSE III C". The trailing standalone letter is
// preferred, then the first standalone letter, then the whole upper-cased label.
func SectionLetter(label string) string {
	upper := strings.ToUpper(strings.TrimSpace(label))
	if upper == "" {
		return ""
	}
	if m := trailingLetter.FindStringSubmatch(upper); m != nil {
		return m[1]
	}
	if m := standaloneLetter.FindStringSubmatch(upper); m != nil {
		return m[1]
	}
	return upper
}

// ResolveSection finds the section key matching a free-text section label.
// Candidates "X", "SECTION X" and "SEC X" are matched case-insensitively; when
// none hit, a key carrying the same letter, and finally any key containing
// the letter, is accepted.
func ResolveSection(label string, keys []string) (string, bool) {
	raw := strings.TrimSpace(label)
	if raw == "" || len(keys) == 0 {
		return "", false
	}

	ordered := slices.Clone(keys)
	slices.Sort(ordered)

	letter := SectionLetter(raw)
	candidates := make(map[string]struct{}, 4)
	for _, candidate := range []string{strings.ToUpper(raw), letter, "SECTION " + letter, "SEC " + letter} {
		candidates[candidate] = struct{}{}
	}

	for _, key := range ordered {
		if key == raw {
			return key, true
		}
		if _, ok := candidates[strings.ToUpper(strings.TrimSpace(key))]; ok {
			return key, true
		}
	}

	for _, key := range ordered {
		if SectionLetter(key) == letter {
			return key, true
		}
	}

	for _, key := range ordered {
		if strings.Contains(strings.ToUpper(key), letter) {
			return key, true
		}
	}
	return "", false
}

// NormalizeSection strips "Section"/"Sec" prefixes and upper-cases the rest,
// e.g. "sec. b" -> "B".
func NormalizeSection(section string) string {
	s := sectionPrefix.ReplaceAllString(strings.TrimSpace(section), "")
	return strings.ToUpper(strings.TrimSpace(s))
}
