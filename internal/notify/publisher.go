package notify

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/gw2-watcher/internal/diff"
	"github.com/preston-bernstein/gw2-watcher/internal/logging"
	"github.com/preston-bernstein/gw2-watcher/internal/poller"
)

// Registrar is the callback surface of a watcher.
type Registrar interface {
	OnEventStatusChanged(func(diff.EventStatusChange))
	OnMatchRosterChanged(func(diff.RosterChange))
	OnMatchScoreChanged(func(diff.MatchScoreChange))
	OnMapScoreChanged(func(diff.MapScoreChange))
	OnObjectiveChanged(func(diff.ObjectiveChange))
	OnCycleCompleted(func(poller.CycleReport))
}

// Publisher turns watcher callbacks into envelopes and hands them to sinks.
type Publisher struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Attach registers a Publisher on every callback slot of src. It replaces any
// callbacks registered before.
func Attach(src Registrar, logger *slog.Logger, sinks ...Sink) *Publisher {
	p := &Publisher{
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	src.OnEventStatusChanged(func(c diff.EventStatusChange) {
		p.publish(KindEventStatus, c.Current.World.ID, c)
	})
	src.OnMatchRosterChanged(func(c diff.RosterChange) { p.publish(KindMatchRoster, "", c) })
	src.OnMatchScoreChanged(func(c diff.MatchScoreChange) { p.publish(KindMatchScore, "", c) })
	src.OnMapScoreChanged(func(c diff.MapScoreChange) { p.publish(KindMapScore, "", c) })
	src.OnObjectiveChanged(func(c diff.ObjectiveChange) { p.publish(KindObjective, "", c) })
	src.OnCycleCompleted(func(r poller.CycleReport) { p.publish(KindCycleCompleted, r.World, r) })
	return p
}

func (p *Publisher) publish(kind, world string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logging.Error(p.logger, "notification encode failed", err, logging.FieldCategory, kind)
		return
	}
	env := Envelope{
		ID:      p.newID(),
		Kind:    kind,
		World:   world,
		At:      p.now().UTC(),
		Payload: raw,
	}
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Notify(env); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logging.Warn(p.logger, "notification delivery failed", logging.FieldCategory, kind, "err", err)
	}
}

// LogSink writes one structured log line per envelope.
func LogSink(logger *slog.Logger) Sink {
	return SinkFunc(func(env Envelope) error {
		args := []any{
			logging.FieldCategory, env.Kind,
			"notification_id", env.ID,
		}
		if env.World != "" {
			args = append(args, logging.FieldWorld, env.World)
		}
		if env.Kind == KindCycleCompleted {
			logging.Debug(logger, "cycle completed", args...)
			return nil
		}
		logging.Info(logger, "change detected", args...)
		return nil
	})
}
