package labels

import (
	"regexp"
	"slices"
)

// Sentinel group tokens that match every student in a section.
const (
	GroupAll  = "all"
	GroupBoth = "both"
)

var (
	groupDelimiters = regexp.MustCompile(`[,&/|+\-\s]+`)
	groupSentinel   = regexp.MustCompile(`\b(all|both)\b`)
	digitRun        = regexp.MustCompile(`\d+`)
	singleLetter    = regexp.MustCompile(`^[a-z]$`)
)

// GroupTokens splits a possibly multi-valued group label into canonical tokens.
//
//	"G1"          -> ["1"]
//	"Group 1 & 2" -> ["1", "2"]
//	"A/B"         -> ["a", "b"]
//	"Both"        -> ["both"]
//
// An empty label yields no tokens.
func GroupTokens(label string) []string {
	s := Fold(label)
	if s == "" {
		return nil
	}
	if m := groupSentinel.FindStringSubmatch(s); m != nil {
		return []string{m[1]}
	}

	var tokens []string
	for _, part := range groupDelimiters.Split(s, -1) {
		if part == "" {
			continue
		}
		token := ""
		if runs := digitRun.FindAllString(part, -1); len(runs) > 0 {
			token = runs[len(runs)-1]
		} else if singleLetter.MatchString(part) {
			token = part
		}
		if token != "" && !slices.Contains(tokens, token) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// IsAllGroups reports whether the tokens carry the all/both sentinel.
func IsAllGroups(tokens []string) bool {
	return slices.Contains(tokens, GroupAll) || slices.Contains(tokens, GroupBoth)
}

// GroupsIntersect reports whether any student token appears in the entry tokens.
func GroupsIntersect(student, entry []string) bool {
	for _, token := range student {
		if slices.Contains(entry, token) {
			return true
		}
	}
	return false
}
