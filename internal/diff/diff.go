package diff

import (
	"sort"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
)

// Events walks the previous snapshot in id order and reports every event whose
// status differs in curr. Ids absent from curr are collected into an
// *InconsistentSnapshotError; events only present in curr are not reported.
func Events(worldID string, prev, curr map[string]events.Event) ([]EventStatusChange, error) {
	if prev == nil {
		return nil, nil
	}

	ids := make([]string, 0, len(prev))
	for id := range prev {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		changes []EventStatusChange
		missing []string
	)
	for _, id := range ids {
		before := prev[id]
		after, ok := curr[id]
		if !ok || !events.Same(before, after) {
			missing = append(missing, id)
			continue
		}
		if !events.Unchanged(before, after) {
			changes = append(changes, EventStatusChange{Previous: before, Current: after})
		}
	}

	if len(missing) > 0 {
		return changes, &InconsistentSnapshotError{WorldID: worldID, IDs: missing}
	}
	return changes, nil
}

// Roster reports whether the matchup set changed. A nil prev is a seed.
func Roster(prev, curr map[string]matchups.Matchup) (RosterChange, bool) {
	if prev == nil || matchups.RosterUnchanged(prev, curr) {
		return RosterChange{}, false
	}
	return RosterChange{
		Previous: matchups.CloneRoster(prev),
		Current:  matchups.CloneRoster(curr),
	}, true
}

// Comparable reports whether prev is a baseline for curr: it must exist and
// describe the same matchup with the same three worlds. Matchup ids are tier
// slots that survive the weekly reset, so the line-up is compared too.
func Comparable(prev *matchups.Details, curr matchups.Details) bool {
	return prev != nil && matchups.MatchupUnchanged(prev.Matchup, curr.Matchup)
}

// DetailsUnchanged reports whether curr holds no change of any kind relative
// to a comparable prev.
func DetailsUnchanged(prev *matchups.Details, curr matchups.Details) bool {
	return Comparable(prev, curr) && matchups.DetailsUnchanged(*prev, curr)
}

// MatchScore reports a change of the aggregate score.
func MatchScore(prev *matchups.Details, curr matchups.Details) (MatchScoreChange, bool) {
	if !Comparable(prev, curr) || prev.Score.Equal(curr.Score) {
		return MatchScoreChange{}, false
	}
	return MatchScoreChange{Previous: prev.Clone(), Current: curr.Clone()}, true
}

// MapScores reports every map, present in both snapshots, whose score changed.
// Results follow the order of the previous snapshot.
func MapScores(prev *matchups.Details, curr matchups.Details) []MapScoreChange {
	if !Comparable(prev, curr) {
		return nil
	}
	var changes []MapScoreChange
	for _, before := range prev.Maps {
		after, ok := curr.Map(before.Type)
		if !ok || before.Score.Equal(after.Score) {
			continue
		}
		changes = append(changes, MapScoreChange{Previous: before.Clone(), Current: after.Clone()})
	}
	return changes
}

// Objectives reports every objective, present in both snapshots, whose owner changed.
// Results follow map order then objective order of the previous snapshot.
func Objectives(prev *matchups.Details, curr matchups.Details) []ObjectiveChange {
	if !Comparable(prev, curr) {
		return nil
	}
	var changes []ObjectiveChange
	for _, beforeMap := range prev.Maps {
		afterMap, ok := curr.Map(beforeMap.Type)
		if !ok {
			continue
		}
		for _, before := range beforeMap.Objectives {
			after, ok := afterMap.Objective(before.ID)
			if !ok || matchups.ObjectiveUnchanged(before, after) {
				continue
			}
			changes = append(changes, ObjectiveChange{Previous: before, Current: after})
		}
	}
	return changes
}
