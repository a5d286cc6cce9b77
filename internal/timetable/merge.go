package timetable

// Merge folds the given timetables left to right into a new timetable.
// Programs and sections are unioned; course and lab entries are appended
// unless an entry with the same lower-cased subject code, subject name, day
// and time was already seen in that section. The first value seen wins,
// including a program's Semester. Inputs are never modified.
func Merge(sources ...Timetable) Timetable {
	merged := Empty()
	seen := map[string]map[string]struct{}{}

	for _, src := range sources {
		for _, name := range src.ProgramKeys() {
			in := src.Programs[name]
			out, ok := merged.Programs[name]
			if !ok {
				out = Program{Semester: in.Semester, Sections: map[string]Section{}}
			} else if out.Semester == "" {
				out.Semester = in.Semester
			}

			for _, key := range in.SectionKeys() {
				section, ok := out.Sections[key]
				if !ok {
					section = newSection()
				}
				scope := name + "\x00" + key
				courses := seenSet(seen, "course\x00"+scope)
				labs := seenSet(seen, "lab\x00"+scope)

				for _, c := range in.Sections[key].Courses {
					if addOnce(courses, c.dedupKey()) {
						section.Courses = append(section.Courses, c)
					}
				}
				for _, l := range in.Sections[key].Labs {
					if addOnce(labs, l.dedupKey()) {
						section.Labs = append(section.Labs, l)
					}
				}
				out.Sections[key] = section
			}
			merged.Programs[name] = out
		}
	}
	return merged
}

func seenSet(seen map[string]map[string]struct{}, scope string) map[string]struct{} {
	set, ok := seen[scope]
	if !ok {
		set = map[string]struct{}{}
		seen[scope] = set
	}
	return set
}

func addOnce(set map[string]struct{}, key string) bool {
	if _, ok := set[key]; ok {
		return false
	}
	set[key] = struct{}{}
	return true
}
