package testutil

import (
	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"
)

// SampleWorld returns a world fixture named after its id.
func SampleWorld(id string) worlds.World {
	return worlds.World{ID: id, Name: "World " + id}
}

// SampleEvent returns an event on world 1001 in the given state.
func SampleEvent(id string, status events.Status) events.Event {
	return events.Event{
		ID:     id,
		Name:   "Event " + id,
		World:  SampleWorld("1001"),
		Map:    worlds.Map{ID: "15", Name: "Queensdale"},
		Status: status,
	}
}

// SampleMatchup returns a matchup with the given red, blue and green world ids.
func SampleMatchup(id, red, blue, green string) matchups.Matchup {
	return matchups.Matchup{
		ID:    id,
		Red:   SampleWorld(red),
		Blue:  SampleWorld(blue),
		Green: SampleWorld(green),
	}
}

// SampleDetails returns a scoreboard for m with one Center map holding a single objective.
func SampleDetails(m matchups.Matchup, score matchups.Score) matchups.Details {
	return matchups.NewDetails(m, score, []matchups.MapStanding{
		{
			MatchupID: m.ID,
			Type:      "Center",
			Score:     score,
			Objectives: []matchups.Objective{
				{MapType: "Center", ID: "9", Name: "Stonemist Castle", Owner: matchups.TeamRed},
			},
		},
	})
}
