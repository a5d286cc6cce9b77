package labels

import (
	"regexp"
	"slices"
	"strings"
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	parenChars      = regexp.MustCompile(`[()]`)
	parenGroup      = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	bTechDotted     = regexp.MustCompile(`b\.?\s*tech\.?`)
	bTechPlain      = regexp.MustCompile(`\bbtech\b`)
	cseAbbreviation = regexp.MustCompile(`\bcse\b`)
	itAbbreviation  = regexp.MustCompile(`\bit\b`)
	bcaAbbreviation = regexp.MustCompile(`\bbca\b`)
	bTechSpelling   = regexp.MustCompile(`(?i)\bb\.?\s*tech\.?`)
)

// programVariant derives one alternative spelling of a folded timetable key.
type programVariant func(key string) string

// programVariants are tried in order, from the most to the least literal.
var programVariants = []programVariant{
	func(key string) string { return key },
	func(key string) string { return whitespaceRun.ReplaceAllString(key, "") },
	func(key string) string { return parenChars.ReplaceAllString(key, "") },
	func(key string) string { return strings.TrimSpace(parenGroup.ReplaceAllString(key, " ")) },
	func(key string) string { return replaceFirst(bTechDotted, key, "btech") },
	func(key string) string { return replaceFirst(bTechPlain, key, "b.tech") },
	func(key string) string { return replaceFirst(cseAbbreviation, key, "computer science") },
	func(key string) string { return replaceFirst(itAbbreviation, key, "information technology") },
	func(key string) string { return replaceFirst(bcaAbbreviation, key, "bachelor of computer applications") },
}

// ResolveProgram finds the timetable program key that best matches a
// free-text program name. An exact case-insensitive match wins; otherwise each
// variant strategy is tried against every key: a key whose variant equals the
// input wins, then the first key whose variant contains the input or is
// contained by it. Keys are visited in
// sorted order so the result does not depend on map iteration.
func ResolveProgram(program string, keys []string) (string, bool) {
	input := Fold(program)
	if input == "" || len(keys) == 0 {
		return "", false
	}

	ordered := slices.Clone(keys)
	slices.Sort(ordered)

	folded := make([]string, len(ordered))
	for i, key := range ordered {
		folded[i] = Fold(key)
		if folded[i] == input {
			return ordered[i], true
		}
	}

	candidates := make([]string, len(ordered))
	for _, variant := range programVariants {
		for i := range ordered {
			candidates[i] = variant(folded[i])
			if candidates[i] == input {
				return ordered[i], true
			}
		}
		for i, candidate := range candidates {
			if candidate == "" {
				continue
			}
			if strings.Contains(candidate, input) || strings.Contains(input, candidate) {
				return ordered[i], true
			}
		}
	}
	return "", false
}

// NormalizeProgram unifies common spellings of a student's program, e.g.
// "btech (cse)" -> "B.Tech CSE".
func NormalizeProgram(program string) string {
	s := strings.TrimSpace(program)
	if s == "" {
		return ""
	}
	s = parenChars.ReplaceAllString(s, " ")
	s = bTechSpelling.ReplaceAllString(s, "B.Tech")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	words := strings.Fields(s)
	for i, word := range words {
		upper := strings.ToUpper(word)
		switch upper {
		case "CSE", "IT", "ECE", "EEE", "ME", "CE", "BCA", "MCA", "AI", "ML", "DS":
			words[i] = upper
		}
	}
	return strings.Join(words, " ")
}

func replaceFirst(re *regexp.Regexp, s, replacement string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + replacement + s[loc[1]:]
}
