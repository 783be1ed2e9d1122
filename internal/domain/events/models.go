package events

import (
	"fmt"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"
)

// Status is the lifecycle state the upstream reports for a dynamic event.
type Status string

const (
	StatusActive      Status = "Active"
	StatusSuccess     Status = "Success"
	StatusFail        Status = "Fail"
	StatusWarmup      Status = "Warmup"
	StatusPreparation Status = "Preparation"
	StatusInactive    Status = "Inactive"
)

var knownStatuses = map[Status]struct{}{
	StatusActive:      {},
	StatusSuccess:     {},
	StatusFail:        {},
	StatusWarmup:      {},
	StatusPreparation: {},
	StatusInactive:    {},
}

// ParseStatus validates an upstream state string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := knownStatuses[s]; !ok {
		return "", fmt.Errorf("unknown event status %q", raw)
	}
	return s, nil
}

// Event is one dynamic event on one world at the time it was fetched.
type Event struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	World  worlds.World `json:"world"`
	Map    worlds.Map   `json:"map"`
	Status Status       `json:"status"`
}

// Same reports whether a and b are the same event, regardless of state.
func Same(a, b Event) bool {
	return a.ID == b.ID
}

// Unchanged reports whether b carries no change relative to a.
func Unchanged(a, b Event) bool {
	return a.ID == b.ID && a.Status == b.Status
}

// CloneMap copies an id->event mapping so callers can hold it past the next poll.
func CloneMap(in map[string]Event) map[string]Event {
	if in == nil {
		return nil
	}
	out := make(map[string]Event, len(in))
	for id, ev := range in {
		out[id] = ev
	}
	return out
}
