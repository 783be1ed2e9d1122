package poller

import (
	"fmt"
	"strings"
)

// Category is a bit set selecting which change kinds the poller fetches and reports.
type Category uint8

const (
	EventStatus Category = 1 << iota
	MatchRoster
	MatchScore
	MapScore
	Objective
)

const (
	None Category = 0
	// WvW selects every matchup category.
	WvW = MatchRoster | MatchScore | MapScore | Objective
	// All selects everything.
	All = EventStatus | WvW

	// details is the set of categories that need the scoreboard of the watched matchup.
	details = MatchScore | MapScore | Objective
)

var leaves = []struct {
	cat  Category
	name string
}{
	{EventStatus, "event_status"},
	{MatchRoster, "match_roster"},
	{MatchScore, "match_score"},
	{MapScore, "map_score"},
	{Objective, "objective"},
}

// Has reports whether every bit of flag is set.
func (c Category) Has(flag Category) bool {
	return flag != None && c&flag == flag
}

// Any reports whether at least one bit of flags is set.
func (c Category) Any(flags Category) bool {
	return c&flags != 0
}

// Names lists the single categories in c, in dispatch order.
func (c Category) Names() []string {
	out := make([]string, 0, len(leaves))
	for _, l := range leaves {
		if c.Has(l.cat) {
			out = append(out, l.name)
		}
	}
	return out
}

func (c Category) String() string {
	if c&All == None {
		return "none"
	}
	return strings.Join(c.Names(), "|")
}

// ParseCategories builds a filter from names. Besides the single categories it
// accepts the groups "wvw", "all" and "none". An entry may hold several names
// separated by commas or pipes.
func ParseCategories(entries []string) (Category, error) {
	var c Category
	for _, entry := range entries {
		for _, raw := range strings.FieldsFunc(entry, isSeparator) {
			cat, err := parseOne(raw)
			if err != nil {
				return None, err
			}
			c |= cat
		}
	}
	return c, nil
}

func isSeparator(r rune) bool {
	return r == ',' || r == '|' || r == ' '
}

func parseOne(raw string) (Category, error) {
	switch name := strings.ToLower(strings.TrimSpace(raw)); name {
	case "none":
		return None, nil
	case "wvw":
		return WvW, nil
	case "all":
		return All, nil
	default:
		for _, l := range leaves {
			if l.name == name {
				return l.cat, nil
			}
		}
	}
	return None, fmt.Errorf("unknown category %q", raw)
}
