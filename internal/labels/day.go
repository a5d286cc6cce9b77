package labels

var dayAliases = map[string]string{
	"mon": "monday", "monday": "monday",
	"tue": "tuesday", "tues": "tuesday", "tuesday": "tuesday",
	"wed": "wednesday", "weds": "wednesday", "wednesday": "wednesday",
	"thu": "thursday", "thur": "thursday", "thurs": "thursday", "thursday": "thursday",
	"fri": "friday", "friday": "friday",
	"sat": "saturday", "saturday": "saturday",
	"sun": "sunday", "sunday": "sunday",
}

// Day maps abbreviations and full day names to one of the seven lower-case
// canonical names. Unrecognized input is returned folded but otherwise unchanged.
func Day(day string) string {
	s := Fold(day)
	if s == "" {
		return ""
	}
	if canonical, ok := dayAliases[s]; ok {
		return canonical
	}
	if len(s) > 3 {
		if canonical, ok := dayAliases[s[:3]]; ok {
			return canonical
		}
	}
	return s
}
