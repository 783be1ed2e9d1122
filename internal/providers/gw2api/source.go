package gw2api

import (
	"context"
	"sort"
	"sync"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"
	"github.com/preston-bernstein/gw2-watcher/internal/names"
	"github.com/preston-bernstein/gw2-watcher/internal/providers"
)

// Source adapts Client to providers.DataSource, resolving display names
// through resolver. A nil resolver leaves names equal to ids.
type Source struct {
	client   *Client
	resolver providers.NameResolver

	mu     sync.RWMutex
	roster map[string]matchups.Matchup
}

// NewSource wraps client.
func NewSource(client *Client, resolver providers.NameResolver) *Source {
	return &Source{client: client, resolver: resolver}
}

// ListWorlds returns every world sorted by id.
func (s *Source) ListWorlds(ctx context.Context) ([]worlds.World, error) {
	table, err := s.client.FetchNames(ctx, names.KindWorld, "")
	if err != nil {
		return nil, err
	}
	out := make([]worlds.World, 0, len(table))
	for id, name := range table {
		out = append(out, worlds.World{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListMaps returns every map sorted by id.
func (s *Source) ListMaps(ctx context.Context) ([]worlds.Map, error) {
	table, err := s.client.FetchNames(ctx, names.KindMap, "")
	if err != nil {
		return nil, err
	}
	out := make([]worlds.Map, 0, len(table))
	for id, name := range table {
		out = append(out, worlds.Map{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Source) GetEvents(ctx context.Context, worldID string) (map[string]events.Event, error) {
	payload, err := s.client.fetchEvents(ctx, worldID)
	if err != nil {
		return nil, err
	}
	out, err := mapEvents(s.resolver, payload)
	if err != nil {
		return nil, s.client.validated(providers.OpGetEvents, err)
	}
	return out, nil
}

func (s *Source) GetMatchups(ctx context.Context) (map[string]matchups.Matchup, error) {
	payload, err := s.client.fetchMatches(ctx)
	if err != nil {
		return nil, err
	}
	out := mapMatches(s.resolver, payload)

	s.mu.Lock()
	s.roster = matchups.CloneRoster(out)
	s.mu.Unlock()
	return out, nil
}

// GetMatchupDetails fetches the scoreboard of matchupID. The competing worlds
// are filled in from the last roster fetched by this source.
func (s *Source) GetMatchupDetails(ctx context.Context, matchupID string) (matchups.Details, error) {
	payload, err := s.client.fetchMatchDetails(ctx, matchupID)
	if err != nil {
		return matchups.Details{}, err
	}

	s.mu.RLock()
	m, ok := s.roster[string(payload.MatchID)]
	s.mu.RUnlock()
	if !ok {
		m = matchups.Matchup{ID: string(payload.MatchID)}
	}

	out, err := mapDetails(s.resolver, m, payload)
	if err != nil {
		return matchups.Details{}, s.client.validated(providers.OpGetMatchupDetails, err)
	}
	return out, nil
}
