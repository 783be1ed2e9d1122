package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/preston-bernstein/gw2-watcher/internal/diff"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"
	"github.com/preston-bernstein/gw2-watcher/internal/metrics"
	"github.com/preston-bernstein/gw2-watcher/internal/poller"
	"github.com/preston-bernstein/gw2-watcher/internal/providers"
)

// ErrWorldNotFound is returned by FindWorld when nothing matches.
var ErrWorldNotFound = errors.New("world not found")

// Settings is the user-facing configuration of a Watcher.
type Settings struct {
	World    string
	Filter   poller.Category
	Interval time.Duration
}

func (s Settings) config() poller.Config {
	return poller.Config{World: s.World, Filter: s.Filter, Interval: s.Interval}
}

// Watcher is the public face of the engine: it owns a poller, restarts it when
// the settings change and exposes the latest snapshots.
type Watcher struct {
	source providers.DataSource
	poller *poller.Poller

	mu       sync.Mutex
	handlers poller.Handlers
}

// New builds a stopped Watcher. resync may be nil.
func New(source providers.DataSource, resync poller.Resyncer, logger *slog.Logger, recorder *metrics.Recorder, settings Settings) *Watcher {
	return &Watcher{
		source: source,
		poller: poller.New(source, resync, logger, recorder, settings.config()),
	}
}

// Settings returns the current settings.
func (w *Watcher) Settings() Settings {
	cfg := w.poller.Config()
	return Settings{World: cfg.World, Filter: cfg.Filter, Interval: cfg.Interval}
}

// Apply replaces every setting at once, restarting the poller a single time when it is running.
func (w *Watcher) Apply(s Settings) error {
	return w.poller.Reconfigure(s.config())
}

// Update edits the settings in one locked step, so concurrent edits of
// different fields do not overwrite each other. The edit is rejected as a
// whole when the result is invalid.
func (w *Watcher) Update(change func(*Settings)) error {
	return w.poller.Update(func(c *poller.Config) {
		s := Settings{World: c.World, Filter: c.Filter, Interval: c.Interval}
		change(&s)
		*c = s.config()
	})
}

// World returns the id of the watched world.
func (w *Watcher) World() string { return w.poller.Config().World }

// SetWorld changes the watched world.
func (w *Watcher) SetWorld(id string) error {
	return w.Update(func(s *Settings) { s.World = id })
}

// Filter returns the categories currently fetched and reported.
func (w *Watcher) Filter() poller.Category { return w.poller.Config().Filter }

// SetFilter changes which categories are fetched and reported.
func (w *Watcher) SetFilter(c poller.Category) error {
	return w.Update(func(s *Settings) { s.Filter = c })
}

// Interval returns the pause between cycles.
func (w *Watcher) Interval() time.Duration { return w.poller.Config().Interval }

// SetInterval changes the pause between cycles. Non-positive values are rejected.
func (w *Watcher) SetInterval(d time.Duration) error {
	return w.Update(func(s *Settings) { s.Interval = d })
}

// Enable starts or stops polling.
func (w *Watcher) Enable(enabled bool) error {
	return w.poller.Enable(enabled)
}

// Enabled reports whether polling is running.
func (w *Watcher) Enabled() bool {
	return w.poller.Running()
}

// Status returns the poller health.
func (w *Watcher) Status() poller.Status {
	return w.poller.Status()
}

// Events returns the latest event states of the watched world, or nil before the first cycle.
func (w *Watcher) Events() map[string]events.Event {
	return w.poller.Snapshot().Events
}

// Matchups returns the latest matchup roster, or nil before the first cycle.
func (w *Watcher) Matchups() map[string]matchups.Matchup {
	return w.poller.Snapshot().Roster
}

// Details returns the latest scoreboard of the watched world's matchup.
func (w *Watcher) Details() (matchups.Details, bool) {
	d := w.poller.Snapshot().Details
	if d == nil {
		return matchups.Details{}, false
	}
	return *d, true
}

// Worlds lists every world known upstream.
func (w *Watcher) Worlds(ctx context.Context) ([]worlds.World, error) {
	return w.source.ListWorlds(ctx)
}

// Maps lists every map known upstream.
func (w *Watcher) Maps(ctx context.Context) ([]worlds.Map, error) {
	return w.source.ListMaps(ctx)
}

// FindWorld looks a world up by id or by case-insensitive name.
func (w *Watcher) FindWorld(ctx context.Context, nameOrID string) (worlds.World, error) {
	all, err := w.source.ListWorlds(ctx)
	if err != nil {
		return worlds.World{}, err
	}
	key := strings.TrimSpace(nameOrID)
	for _, wd := range all {
		if worlds.SameWorld(wd, worlds.World{ID: key}) {
			return wd, nil
		}
	}
	for _, wd := range all {
		if strings.EqualFold(wd.Name, key) {
			return wd, nil
		}
	}
	return worlds.World{}, fmt.Errorf("%q: %w", nameOrID, ErrWorldNotFound)
}

// OnEventStatusChanged registers a callback for event state transitions of the watched world.
func (w *Watcher) OnEventStatusChanged(fn func(diff.EventStatusChange)) {
	w.update(func(h *poller.Handlers) { h.EventStatusChanged = fn })
}

// OnMatchRosterChanged registers a callback for changes of the matchup roster.
func (w *Watcher) OnMatchRosterChanged(fn func(diff.RosterChange)) {
	w.update(func(h *poller.Handlers) { h.MatchRosterChanged = fn })
}

// OnMatchScoreChanged registers a callback for changes of the matchup total score.
func (w *Watcher) OnMatchScoreChanged(fn func(diff.MatchScoreChange)) {
	w.update(func(h *poller.Handlers) { h.MatchScoreChanged = fn })
}

// OnMapScoreChanged registers a callback fired once per map whose score changed.
func (w *Watcher) OnMapScoreChanged(fn func(diff.MapScoreChange)) {
	w.update(func(h *poller.Handlers) { h.MapScoreChanged = fn })
}

// OnObjectiveChanged registers a callback fired once per objective that changed hands.
func (w *Watcher) OnObjectiveChanged(fn func(diff.ObjectiveChange)) {
	w.update(func(h *poller.Handlers) { h.ObjectiveChanged = fn })
}

// OnCycleCompleted registers a callback fired once after every committed cycle.
func (w *Watcher) OnCycleCompleted(fn func(poller.CycleReport)) {
	w.update(func(h *poller.Handlers) { h.CycleCompleted = fn })
}

func (w *Watcher) update(set func(*poller.Handlers)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	set(&w.handlers)
	w.poller.SetHandlers(w.handlers)
}
