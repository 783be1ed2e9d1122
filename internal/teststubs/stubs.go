package teststubs

import (
	"context"
	"sync"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"
)

// Operation names used by StubSource for call counting, error injection and blocking.
const (
	OpListWorlds  = "list_worlds"
	OpListMaps    = "list_maps"
	OpEvents      = "get_events"
	OpMatchups    = "get_matchups"
	OpDetails     = "get_matchup_details"
	OpNameRefresh = "refresh"
)

// StubSource is a mutable test double for providers.DataSource. Tests change
// what the next poll sees through the Set* methods; all access is locked so the
// stub can back a running poll loop.
type StubSource struct {
	mu       sync.Mutex
	worlds   []worlds.World
	maps     []worlds.Map
	events   map[string]map[string]events.Event
	roster   map[string]matchups.Matchup
	details  map[string]matchups.Details
	errs     map[string]error
	calls    map[string]int
	blockOn  map[string]bool
	entered  chan string
	detailID []string
}

// NewStubSource returns an empty stub. Entered, when non-nil, receives the
// operation name each time a blocking operation starts waiting.
func NewStubSource() *StubSource {
	return &StubSource{
		events:  make(map[string]map[string]events.Event),
		details: make(map[string]matchups.Details),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
		blockOn: make(map[string]bool),
		entered: make(chan string, 16),
	}
}

func (s *StubSource) SetWorlds(w []worlds.World) { s.mu.Lock(); s.worlds = w; s.mu.Unlock() }
func (s *StubSource) SetMaps(m []worlds.Map)     { s.mu.Lock(); s.maps = m; s.mu.Unlock() }

// SetEvents replaces the event states returned for worldID.
func (s *StubSource) SetEvents(worldID string, evs map[string]events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[worldID] = events.CloneMap(evs)
}

// SetRoster replaces the matchup set.
func (s *StubSource) SetRoster(roster map[string]matchups.Matchup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = matchups.CloneRoster(roster)
}

// SetDetails replaces the scoreboard for d.Matchup.ID.
func (s *StubSource) SetDetails(d matchups.Details) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[d.Matchup.ID] = d.Clone()
}

// SetErr makes op fail with err until cleared with a nil err.
func (s *StubSource) SetErr(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, op)
		return
	}
	s.errs[op] = err
}

// BlockOn makes op wait for ctx cancellation instead of returning.
func (s *StubSource) BlockOn(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockOn[op] = true
}

// Entered reports blocking operations as they start waiting.
func (s *StubSource) Entered() <-chan string {
	return s.entered
}

// Calls returns how many times op was invoked.
func (s *StubSource) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// DetailRequests returns the matchup ids passed to GetMatchupDetails in order.
func (s *StubSource) DetailRequests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.detailID...)
}

func (s *StubSource) begin(ctx context.Context, op string) error {
	s.mu.Lock()
	s.calls[op]++
	block := s.blockOn[op]
	err := s.errs[op]
	s.mu.Unlock()

	if block {
		select {
		case s.entered <- op:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *StubSource) ListWorlds(ctx context.Context) ([]worlds.World, error) {
	if err := s.begin(ctx, OpListWorlds); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]worlds.World(nil), s.worlds...), nil
}

func (s *StubSource) ListMaps(ctx context.Context) ([]worlds.Map, error) {
	if err := s.begin(ctx, OpListMaps); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]worlds.Map(nil), s.maps...), nil
}

func (s *StubSource) GetEvents(ctx context.Context, worldID string) (map[string]events.Event, error) {
	if err := s.begin(ctx, OpEvents); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := events.CloneMap(s.events[worldID])
	if out == nil {
		out = map[string]events.Event{}
	}
	return out, nil
}

func (s *StubSource) GetMatchups(ctx context.Context) (map[string]matchups.Matchup, error) {
	if err := s.begin(ctx, OpMatchups); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := matchups.CloneRoster(s.roster)
	if out == nil {
		out = map[string]matchups.Matchup{}
	}
	return out, nil
}

func (s *StubSource) GetMatchupDetails(ctx context.Context, matchupID string) (matchups.Details, error) {
	if err := s.begin(ctx, OpDetails); err != nil {
		return matchups.Details{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailID = append(s.detailID, matchupID)
	d, ok := s.details[matchupID]
	if !ok {
		return matchups.Details{Matchup: matchups.Matchup{ID: matchupID}}, nil
	}
	return d.Clone(), nil
}

// StubResyncer counts name-cache refresh requests.
type StubResyncer struct {
	mu    sync.Mutex
	calls int
	Err   error
}

func (r *StubResyncer) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.Err
}

// Calls returns the number of Refresh invocations.
func (r *StubResyncer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
