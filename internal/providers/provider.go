package providers

import (
	"context"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"
	"github.com/preston-bernstein/gw2-watcher/internal/names"
)

// WorldProvider lists the static world and map catalogues.
type WorldProvider interface {
	ListWorlds(ctx context.Context) ([]worlds.World, error)
	ListMaps(ctx context.Context) ([]worlds.Map, error)
}

// EventProvider fetches the dynamic event states of one world keyed by event id.
type EventProvider interface {
	GetEvents(ctx context.Context, worldID string) (map[string]events.Event, error)
}

// MatchupProvider fetches the current WvW roster and per-matchup scoreboards.
type MatchupProvider interface {
	GetMatchups(ctx context.Context) (map[string]matchups.Matchup, error)
	GetMatchupDetails(ctx context.Context, matchupID string) (matchups.Details, error)
}

// DataSource combines all provider capabilities the watcher consumes.
// Every call is synchronous and may fail; implementations should honor ctx cancellation.
type DataSource interface {
	WorldProvider
	EventProvider
	MatchupProvider
}

// NameResolver maps an id of a given kind to its display name.
type NameResolver interface {
	ResolveName(kind names.Kind, id string) (string, bool)
}

// ResolveOrID returns the resolved name, or the id itself when the resolver has none.
func ResolveOrID(r NameResolver, kind names.Kind, id string) string {
	if r == nil {
		return id
	}
	if name, ok := r.ResolveName(kind, id); ok && name != "" {
		return name
	}
	return id
}
