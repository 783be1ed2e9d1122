package matchups

// Identity and change comparisons are kept apart: Same* answers "is this the
// same thing", Unchanged answers "did it change since the last poll".

// SameMatchup reports whether a and b have the same id.
func SameMatchup(a, b Matchup) bool {
	return a.ID == b.ID
}

// SameObjective reports whether a and b have the same id.
func SameObjective(a, b Objective) bool {
	return a.ID == b.ID
}

// MatchupUnchanged compares id and the three world ids.
func MatchupUnchanged(a, b Matchup) bool {
	return a.ID == b.ID &&
		a.Red.ID == b.Red.ID &&
		a.Blue.ID == b.Blue.ID &&
		a.Green.ID == b.Green.ID
}

// RosterUnchanged compares two rosters as unordered sets of matchups.
func RosterUnchanged(a, b map[string]Matchup) bool {
	if len(a) != len(b) {
		return false
	}
	for id, m := range a {
		other, ok := b[id]
		if !ok || !MatchupUnchanged(m, other) {
			return false
		}
	}
	return true
}

// DetailsUnchanged compares the matchup, the score and every map. Maps are
// paired by type, so a reordered list is not a change.
func DetailsUnchanged(a, b Details) bool {
	if !MatchupUnchanged(a.Matchup, b.Matchup) || !a.Score.Equal(b.Score) || len(a.Maps) != len(b.Maps) {
		return false
	}
	for _, before := range a.Maps {
		after, ok := b.Map(before.Type)
		if !ok || !MapUnchanged(before, after) {
			return false
		}
	}
	return true
}

// MapUnchanged compares type, score and every objective. Objectives are paired by id.
func MapUnchanged(a, b MapStanding) bool {
	if a.Type != b.Type || !a.Score.Equal(b.Score) || len(a.Objectives) != len(b.Objectives) {
		return false
	}
	for _, before := range a.Objectives {
		after, ok := b.Objective(before.ID)
		if !ok || !ObjectiveUnchanged(before, after) {
			return false
		}
	}
	return true
}

// ObjectiveUnchanged compares id and owner.
func ObjectiveUnchanged(a, b Objective) bool {
	return a.ID == b.ID && a.Owner == b.Owner
}
