package notify

import (
	"encoding/json"
	"time"
)

// Kinds carried in Envelope.Kind. The change kinds match the filter names.
const (
	KindEventStatus    = "event_status"
	KindMatchRoster    = "match_roster"
	KindMatchScore     = "match_score"
	KindMapScore       = "map_score"
	KindObjective      = "objective"
	KindCycleCompleted = "cycle_completed"
)

// Envelope is the wire form of a single notification.
type Envelope struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind"`
	World   string          `json:"world,omitempty"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

// Sink receives every envelope produced by Attach.
type Sink interface {
	Notify(Envelope) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Envelope) error

func (f SinkFunc) Notify(env Envelope) error { return f(env) }
