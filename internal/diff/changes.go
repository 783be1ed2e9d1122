package diff

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
)

// EventStatusChange reports an event whose status moved between polls.
type EventStatusChange struct {
	Previous events.Event `json:"previous"`
	Current  events.Event `json:"current"`
}

// RosterChange reports that the set of running matchups is different.
type RosterChange struct {
	Previous map[string]matchups.Matchup `json:"previous"`
	Current  map[string]matchups.Matchup `json:"current"`
}

// MatchScoreChange reports a new aggregate score for the watched matchup.
type MatchScoreChange struct {
	Previous matchups.Details `json:"previous"`
	Current  matchups.Details `json:"current"`
}

// MapScoreChange reports a new score on one map of the watched matchup.
type MapScoreChange struct {
	Previous matchups.MapStanding `json:"previous"`
	Current  matchups.MapStanding `json:"current"`
}

// ObjectiveChange reports an objective that changed hands.
type ObjectiveChange struct {
	Previous matchups.Objective `json:"previous"`
	Current  matchups.Objective `json:"current"`
}

// InconsistentSnapshotError lists event ids that were in the previous snapshot
// but are missing from the current one. It is not fatal: the ids are skipped.
type InconsistentSnapshotError struct {
	WorldID string
	IDs     []string
}

func (e *InconsistentSnapshotError) Error() string {
	return fmt.Sprintf("events missing from world %s snapshot: %s", e.WorldID, strings.Join(e.IDs, ","))
}
