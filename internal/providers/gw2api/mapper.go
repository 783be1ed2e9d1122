package gw2api

import (
	"fmt"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"
	"github.com/preston-bernstein/gw2-watcher/internal/names"
	"github.com/preston-bernstein/gw2-watcher/internal/providers"
)

func mapWorld(r providers.NameResolver, id idString) worlds.World {
	return worlds.World{ID: string(id), Name: providers.ResolveOrID(r, names.KindWorld, string(id))}
}

func mapEvents(r providers.NameResolver, payload eventsResponse) (map[string]events.Event, error) {
	out := make(map[string]events.Event, len(payload.Events))
	for _, e := range payload.Events {
		status, err := events.ParseStatus(e.State)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", e.EventID, err)
		}
		id := string(e.EventID)
		out[id] = events.Event{
			ID:    id,
			Name:  providers.ResolveOrID(r, names.KindEvent, id),
			World: mapWorld(r, e.WorldID),
			Map: worlds.Map{
				ID:   string(e.MapID),
				Name: providers.ResolveOrID(r, names.KindMap, string(e.MapID)),
			},
			Status: status,
		}
	}
	return out, nil
}

func mapMatches(r providers.NameResolver, payload matchesResponse) map[string]matchups.Matchup {
	out := make(map[string]matchups.Matchup, len(payload.Matches))
	for _, m := range payload.Matches {
		out[string(m.ID)] = matchups.Matchup{
			ID:    string(m.ID),
			Red:   mapWorld(r, m.RedWorldID),
			Blue:  mapWorld(r, m.BlueWorldID),
			Green: mapWorld(r, m.GreenWorldID),
		}
	}
	return out
}

func mapDetails(r providers.NameResolver, m matchups.Matchup, payload detailsResponse) (matchups.Details, error) {
	score, err := matchups.ScoreFromSlice(payload.Scores)
	if err != nil {
		return matchups.Details{}, err
	}
	maps := make([]matchups.MapStanding, 0, len(payload.Maps))
	for _, mp := range payload.Maps {
		mapScore, err := matchups.ScoreFromSlice(mp.Scores)
		if err != nil {
			return matchups.Details{}, fmt.Errorf("map %s: %w", mp.Type, err)
		}
		standing := matchups.MapStanding{
			MatchupID:  m.ID,
			Type:       mp.Type,
			Score:      mapScore,
			Objectives: make([]matchups.Objective, 0, len(mp.Objectives)),
		}
		for _, o := range mp.Objectives {
			owner, err := matchups.ParseTeam(o.Owner)
			if err != nil {
				return matchups.Details{}, fmt.Errorf("objective %s: %w", o.ID, err)
			}
			standing.Objectives = append(standing.Objectives, matchups.Objective{
				MapType: mp.Type,
				ID:      string(o.ID),
				Name:    providers.ResolveOrID(r, names.KindObjective, string(o.ID)),
				Owner:   owner,
			})
		}
		maps = append(maps, standing)
	}
	return matchups.Details{Matchup: m, Score: score, Maps: maps}, nil
}
