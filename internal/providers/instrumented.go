package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/worlds"
	"github.com/preston-bernstein/gw2-watcher/internal/logging"
	"github.com/preston-bernstein/gw2-watcher/internal/metrics"
)

const (
	OpListWorlds        = "list_worlds"
	OpListMaps          = "list_maps"
	OpGetEvents         = "get_events"
	OpGetMatchups       = "get_matchups"
	OpGetMatchupDetails = "get_matchup_details"
)

// instrumentedSource wraps a DataSource with latency/error metrics and failure logs.
// Errors that are not already TransportErrors are wrapped into one.
type instrumentedSource struct {
	inner   DataSource
	name    string
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewInstrumentedSource decorates inner. A nil inner yields a source that always
// fails with ErrProviderUnavailable.
func NewInstrumentedSource(inner DataSource, name string, logger *slog.Logger, recorder *metrics.Recorder) DataSource {
	if name == "" {
		name = "unknown"
	}
	return &instrumentedSource{
		inner:   inner,
		name:    name,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
	}
}

func (s *instrumentedSource) ListWorlds(ctx context.Context) ([]worlds.World, error) {
	var out []worlds.World
	err := s.observe(ctx, OpListWorlds, func() (err error) {
		out, err = s.inner.ListWorlds(ctx)
		return err
	})
	return out, err
}

func (s *instrumentedSource) ListMaps(ctx context.Context) ([]worlds.Map, error) {
	var out []worlds.Map
	err := s.observe(ctx, OpListMaps, func() (err error) {
		out, err = s.inner.ListMaps(ctx)
		return err
	})
	return out, err
}

func (s *instrumentedSource) GetEvents(ctx context.Context, worldID string) (map[string]events.Event, error) {
	var out map[string]events.Event
	err := s.observe(ctx, OpGetEvents, func() (err error) {
		out, err = s.inner.GetEvents(ctx, worldID)
		return err
	})
	return out, err
}

func (s *instrumentedSource) GetMatchups(ctx context.Context) (map[string]matchups.Matchup, error) {
	var out map[string]matchups.Matchup
	err := s.observe(ctx, OpGetMatchups, func() (err error) {
		out, err = s.inner.GetMatchups(ctx)
		return err
	})
	return out, err
}

func (s *instrumentedSource) GetMatchupDetails(ctx context.Context, matchupID string) (matchups.Details, error) {
	var out matchups.Details
	err := s.observe(ctx, OpGetMatchupDetails, func() (err error) {
		out, err = s.inner.GetMatchupDetails(ctx, matchupID)
		return err
	})
	return out, err
}

func (s *instrumentedSource) observe(ctx context.Context, op string, call func() error) error {
	if s == nil || s.inner == nil {
		return &TransportError{Provider: "none", Op: op, Err: ErrProviderUnavailable}
	}

	start := s.now()
	err := call()
	elapsed := s.now().Sub(start)
	s.metrics.RecordProviderAttempt(s.name, op, elapsed, err)

	if err == nil {
		logWithProvider(ctx, s.logger, slog.LevelDebug, s.name, "provider call complete",
			slog.String(logging.FieldOperation, op),
			slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
		)
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	logWithProvider(ctx, s.logger, slog.LevelWarn, s.name, "provider call failed",
		slog.String(logging.FieldOperation, op),
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
		"error", err,
	)
	if _, ok := AsTransportError(err); ok {
		return err
	}
	return &TransportError{Provider: s.name, Op: op, Err: err}
}
