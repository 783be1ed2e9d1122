package fixture

import (
	"context"
	"fmt"
	"sync"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"
	"github.com/preston-bernstein/gw2-watcher/internal/names"
	"github.com/preston-bernstein/gw2-watcher/internal/providers"
)

// driftScore is added to the red team on every details fetch when drift is on.
const driftScore = 25

var eventCycle = []events.Status{
	events.StatusWarmup,
	events.StatusPreparation,
	events.StatusActive,
	events.StatusSuccess,
}

// Provider serves a dataset from memory. With drift enabled, scores grow,
// objectives change hands and event states advance on each fetch so a local
// run has something to report.
type Provider struct {
	data  Dataset
	drift bool

	mu           sync.Mutex
	eventCalls   map[string]int
	detailsCalls map[string]int
}

// New creates a fixture provider over data.
func New(data Dataset, drift bool) *Provider {
	return &Provider{
		data:         data,
		drift:        drift,
		eventCalls:   make(map[string]int),
		detailsCalls: make(map[string]int),
	}
}

func (p *Provider) ListWorlds(ctx context.Context) ([]worlds.World, error) {
	out := make([]worlds.World, 0, len(p.data.Worlds))
	for _, w := range p.data.Worlds {
		out = append(out, worlds.World{ID: w.ID, Name: w.Name})
	}
	return out, ctx.Err()
}

func (p *Provider) ListMaps(ctx context.Context) ([]worlds.Map, error) {
	out := make([]worlds.Map, 0, len(p.data.Maps))
	for _, m := range p.data.Maps {
		out = append(out, worlds.Map{ID: m.ID, Name: m.Name})
	}
	return out, ctx.Err()
}

func (p *Provider) GetEvents(ctx context.Context, worldID string) (map[string]events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	step := p.eventCalls[worldID]
	p.eventCalls[worldID]++
	p.mu.Unlock()

	w := p.world(worldID)
	out := make(map[string]events.Event, len(p.data.Events[worldID]))
	for i, e := range p.data.Events[worldID] {
		status := e.Status
		if p.drift && i == 0 {
			status = eventCycle[step%len(eventCycle)]
		}
		out[e.ID] = events.Event{
			ID:     e.ID,
			Name:   e.Name,
			World:  w,
			Map:    worlds.Map{ID: e.Map, Name: p.mapName(e.Map)},
			Status: status,
		}
	}
	return out, nil
}

func (p *Provider) GetMatchups(ctx context.Context) (map[string]matchups.Matchup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]matchups.Matchup, len(p.data.Matchups))
	for _, m := range p.data.Matchups {
		out[m.ID] = p.matchup(m)
	}
	return out, nil
}

func (p *Provider) GetMatchupDetails(ctx context.Context, matchupID string) (matchups.Details, error) {
	if err := ctx.Err(); err != nil {
		return matchups.Details{}, err
	}
	var entry *MatchupEntry
	for i := range p.data.Matchups {
		if p.data.Matchups[i].ID == matchupID {
			entry = &p.data.Matchups[i]
			break
		}
	}
	if entry == nil {
		return matchups.Details{}, &providers.TransportError{
			Provider: "fixture",
			Op:       providers.OpGetMatchupDetails,
			Err:      fmt.Errorf("matchup %s: %w", matchupID, providers.ErrNotFound),
		}
	}

	p.mu.Lock()
	step := p.detailsCalls[matchupID]
	p.detailsCalls[matchupID]++
	p.mu.Unlock()

	score, _ := matchups.ScoreFromSlice(entry.Score)
	maps := make([]matchups.MapStanding, 0, len(entry.Maps))
	for i, mp := range entry.Maps {
		mapScore, _ := matchups.ScoreFromSlice(mp.Score)
		standing := matchups.MapStanding{MatchupID: entry.ID, Type: mp.Type, Score: mapScore}
		for j, o := range mp.Objectives {
			owner, _ := matchups.ParseTeam(o.Owner)
			if p.drift && i == 0 && j == 0 && step > 0 {
				owner = matchups.Teams[step/3%len(matchups.Teams)]
			}
			standing.Objectives = append(standing.Objectives, matchups.Objective{
				MapType: mp.Type,
				ID:      o.ID,
				Name:    o.Name,
				Owner:   owner,
			})
		}
		if p.drift && i == 0 {
			standing.Score[matchups.TeamRed] += driftScore * step
		}
		maps = append(maps, standing)
	}
	if p.drift {
		score[matchups.TeamRed] += driftScore * step
	}
	return matchups.Details{Matchup: p.matchup(*entry), Score: score, Maps: maps}, nil
}

// FetchNames serves the dataset's names so a names.Cache can run offline.
func (p *Provider) FetchNames(ctx context.Context, kind names.Kind, _ string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	switch kind {
	case names.KindWorld:
		for _, w := range p.data.Worlds {
			out[w.ID] = w.Name
		}
	case names.KindMap:
		for _, m := range p.data.Maps {
			out[m.ID] = m.Name
		}
	case names.KindEvent:
		for _, evs := range p.data.Events {
			for _, e := range evs {
				out[e.ID] = e.Name
			}
		}
	case names.KindObjective:
		for _, m := range p.data.Matchups {
			for _, mp := range m.Maps {
				for _, o := range mp.Objectives {
					out[o.ID] = o.Name
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown name kind %q", kind)
	}
	return out, nil
}

func (p *Provider) matchup(m MatchupEntry) matchups.Matchup {
	return matchups.Matchup{ID: m.ID, Red: p.world(m.Red), Blue: p.world(m.Blue), Green: p.world(m.Green)}
}

func (p *Provider) world(id string) worlds.World {
	for _, w := range p.data.Worlds {
		if w.ID == id {
			return worlds.World{ID: w.ID, Name: w.Name}
		}
	}
	return worlds.World{ID: id, Name: id}
}

func (p *Provider) mapName(id string) string {
	for _, m := range p.data.Maps {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}
