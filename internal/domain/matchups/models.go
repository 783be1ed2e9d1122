package matchups

import "github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"

// Matchup groups the three worlds competing against each other this week.
type Matchup struct {
	ID    string       `json:"id"`
	Red   worlds.World `json:"red"`
	Blue  worlds.World `json:"blue"`
	Green worlds.World `json:"green"`
}

// World returns the world playing as team t.
func (m Matchup) World(t Team) (worlds.World, bool) {
	switch t {
	case TeamRed:
		return m.Red, true
	case TeamBlue:
		return m.Blue, true
	case TeamGreen:
		return m.Green, true
	default:
		return worlds.World{}, false
	}
}

// TeamOf returns the side worldID plays on in this matchup.
func (m Matchup) TeamOf(worldID string) (Team, bool) {
	for _, t := range Teams {
		if w, _ := m.World(t); worlds.SameWorld(w, worlds.World{ID: worldID}) {
			return t, true
		}
	}
	return TeamUnknown, false
}

// Details is the scoreboard of one matchup at fetch time.
type Details struct {
	Matchup Matchup       `json:"matchup"`
	Score   Score         `json:"score"`
	Maps    []MapStanding `json:"maps"`
}

// MapStanding is the score and objective ownership of one battleground.
type MapStanding struct {
	MatchupID  string      `json:"matchupId"`
	Type       string      `json:"type"`
	Score      Score       `json:"score"`
	Objectives []Objective `json:"objectives"`
}

// Objective is a capturable point and its current owner.
type Objective struct {
	MapType string `json:"mapType"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Owner   Team   `json:"owner"`
}

// NewDetails builds a Details value that does not share backing arrays with its inputs.
func NewDetails(m Matchup, score Score, maps []MapStanding) Details {
	d := Details{Matchup: m, Score: score}
	if maps != nil {
		d.Maps = make([]MapStanding, len(maps))
		for i, mp := range maps {
			d.Maps[i] = mp.Clone()
		}
	}
	return d
}

// Clone returns a deep copy.
func (d Details) Clone() Details {
	return NewDetails(d.Matchup, d.Score, d.Maps)
}

// Map returns the standing for the given map type.
func (d Details) Map(mapType string) (MapStanding, bool) {
	for _, m := range d.Maps {
		if m.Type == mapType {
			return m, true
		}
	}
	return MapStanding{}, false
}

// Clone returns a deep copy.
func (m MapStanding) Clone() MapStanding {
	out := m
	if m.Objectives != nil {
		out.Objectives = make([]Objective, len(m.Objectives))
		copy(out.Objectives, m.Objectives)
	}
	return out
}

// Objective returns the objective with the given id.
func (m MapStanding) Objective(id string) (Objective, bool) {
	for _, o := range m.Objectives {
		if SameObjective(o, Objective{ID: id}) {
			return o, true
		}
	}
	return Objective{}, false
}

// FindByWorld returns the matchup worldID currently plays in.
func FindByWorld(roster map[string]Matchup, worldID string) (Matchup, bool) {
	for _, m := range roster {
		if _, ok := m.TeamOf(worldID); ok {
			return m, true
		}
	}
	return Matchup{}, false
}

// CloneRoster copies an id->matchup mapping.
func CloneRoster(in map[string]Matchup) map[string]Matchup {
	if in == nil {
		return nil
	}
	out := make(map[string]Matchup, len(in))
	for id, m := range in {
		out[id] = m
	}
	return out
}
