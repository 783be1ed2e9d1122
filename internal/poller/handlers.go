package poller

import (
	"time"

	"github.com/preston-bernstein/gw2-watcher/internal/diff"
)

// Handlers holds one optional callback per notification kind. Callbacks run on
// the polling goroutine in the order events, roster, match score, map scores,
// objectives, then CycleCompleted. A callback must not call Enable or
// Reconfigure synchronously; hand the work to another goroutine instead.
type Handlers struct {
	EventStatusChanged func(diff.EventStatusChange)
	MatchRosterChanged func(diff.RosterChange)
	MatchScoreChanged  func(diff.MatchScoreChange)
	MapScoreChanged    func(diff.MapScoreChange)
	ObjectiveChanged   func(diff.ObjectiveChange)
	CycleCompleted     func(CycleReport)
}

// CycleReport summarises one committed poll cycle.
type CycleReport struct {
	ID            string        `json:"id"`
	World         string        `json:"world"`
	Filter        Category      `json:"-"`
	StartedAt     time.Time     `json:"startedAt"`
	Duration      time.Duration `json:"duration"`
	Notifications int           `json:"notifications"`
	Err           error         `json:"-"`
}

// batch collects the changes of one cycle before dispatch.
type batch struct {
	events     []diff.EventStatusChange
	roster     *diff.RosterChange
	score      *diff.MatchScoreChange
	maps       []diff.MapScoreChange
	objectives []diff.ObjectiveChange
}

func (b batch) size() int {
	n := len(b.events) + len(b.maps) + len(b.objectives)
	if b.roster != nil {
		n++
	}
	if b.score != nil {
		n++
	}
	return n
}
