package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/logging"
	"github.com/preston-bernstein/gw2-watcher/internal/metrics"
	"github.com/preston-bernstein/gw2-watcher/internal/providers"
)

const defaultInterval = 15 * time.Second

// Config selects what the poller watches.
type Config struct {
	World    string
	Filter   Category
	Interval time.Duration
}

// Resyncer reloads the name tables when a snapshot refers to ids it no longer knows.
type Resyncer interface {
	Refresh(ctx context.Context) error
}

// Snapshot is the last committed view of the upstream data. A nil map or
// Details means the category has not been seeded since the last start.
type Snapshot struct {
	Events  map[string]events.Event
	Roster  map[string]matchups.Matchup
	Details *matchups.Details
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Events: events.CloneMap(s.Events),
		Roster: matchups.CloneRoster(s.Roster),
	}
	if s.Details != nil {
		d := s.Details.Clone()
		out.Details = &d
	}
	return out
}

// Poller fetches the selected categories on an interval, diffs them against the
// previous snapshot and dispatches one notification per change.
type Poller struct {
	source  providers.DataSource
	resync  Resyncer
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
	newID   func() string
	wait    func(ctx context.Context, d time.Duration) bool

	// lifecycleMu serialises Enable and Update so a restart is atomic.
	lifecycleMu sync.Mutex

	mu       sync.Mutex
	cfg      Config
	running  bool
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	snap     Snapshot
	handlers Handlers
	status   Status
}

// New constructs a stopped Poller. A non-positive interval falls back to the default.
func New(source providers.DataSource, resync Resyncer, logger *slog.Logger, recorder *metrics.Recorder, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	return &Poller{
		source:  source,
		resync:  resync,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
		newID:   uuid.NewString,
		wait:    sleepContext,
		cfg:     cfg,
	}
}

// SetHandlers replaces the notification callbacks. It takes effect from the next dispatch.
func (p *Poller) SetHandlers(h Handlers) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = h
}

// Config returns the current configuration.
func (p *Poller) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Running reports whether the polling loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Snapshot returns a copy of the last committed snapshot.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap.clone()
}

// Enable starts or stops polling. Starting clears every snapshot so the first
// cycle only seeds; starting without a world fails with a *ConfigError.
// Stopping cancels any in-flight fetch and waits for the loop to exit.
// Both directions are no-ops when already in the requested state.
func (p *Poller) Enable(enabled bool) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	if !enabled {
		p.stopLocked()
		return nil
	}
	return p.startLocked()
}

// Reconfigure applies cfg. While running, the loop is restarted so the new
// configuration begins from empty snapshots; while stopped, cfg is only stored.
func (p *Poller) Reconfigure(cfg Config) error {
	return p.Update(func(c *Config) { *c = cfg })
}

// Update edits the configuration in place under the lifecycle lock, so
// concurrent partial edits never overwrite each other. A rejected edit leaves
// the configuration and a running loop untouched. A running poller cannot be
// moved to an empty world; disable it instead.
func (p *Poller) Update(change func(*Config)) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	p.mu.Lock()
	cfg := p.cfg
	wasRunning := p.running
	p.mu.Unlock()

	change(&cfg)
	if cfg.Interval <= 0 {
		return &ConfigError{Field: "interval", Err: ErrInvalidInterval}
	}
	if wasRunning && cfg.World == "" {
		return &ConfigError{Field: "world", Err: ErrNoWorld}
	}

	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()

	if !wasRunning {
		return nil
	}
	p.stopLocked()
	p.metrics.RecordRestart()
	logging.Info(p.logger, "poller restarting",
		logging.FieldWorld, cfg.World,
		logging.FieldFilter, cfg.Filter.String(),
		logging.FieldInterval, cfg.Interval.String(),
	)
	return p.startLocked()
}

func (p *Poller) startLocked() error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	cfg := p.cfg
	if cfg.World == "" {
		p.mu.Unlock()
		return &ConfigError{Field: "world", Err: ErrNoWorld}
	}
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.WithLogger(ctx, p.logger)
	done := make(chan struct{})
	p.gen++
	gen := p.gen
	p.snap = Snapshot{}
	p.running = true
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	logging.Info(p.logger, "poller started",
		logging.FieldWorld, cfg.World,
		logging.FieldFilter, cfg.Filter.String(),
		slog.Int64(logging.FieldDurationMS, cfg.Interval.Milliseconds()),
	)
	go p.loop(ctx, gen, cfg, done)
	return nil
}

func (p *Poller) stopLocked() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.gen++
	p.running = false
	p.cancel = nil
	p.done = nil
	p.snap = Snapshot{}
	p.mu.Unlock()

	cancel()
	<-done
	logging.Info(p.logger, "poller stopped")
}

func (p *Poller) loop(ctx context.Context, gen uint64, cfg Config, done chan struct{}) {
	defer close(done)
	for {
		p.runCycle(ctx, gen, cfg)
		if !p.wait(ctx, cfg.Interval) {
			return
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
