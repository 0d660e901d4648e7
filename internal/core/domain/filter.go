package domain

import "fmt"

// Filter selects which profiles the list screen shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterFlagged   Filter = "requisitoriados"
	FilterUnflagged Filter = "no_requisitoriados"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterFlagged, FilterUnflagged}

// ParseFilter maps a filter name to a Filter.
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q (want one of %v)", s, Filters)
}

// FilterProfiles returns the profiles matching f, preserving order.
// FilterAll returns the input slice itself.
func FilterProfiles(profiles []Profile, f Filter) []Profile {
	switch f {
	case FilterFlagged:
		return selectProfiles(profiles, true)
	case FilterUnflagged:
		return selectProfiles(profiles, false)
	default:
		return profiles
	}
}

func selectProfiles(profiles []Profile, flagged bool) []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.Requisitoriado == flagged {
			out = append(out, p)
		}
	}
	return out
}
