package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/gw2-watcher/internal/diff"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
	"github.com/preston-bernstein/gw2-watcher/internal/logging"
)

// runCycle performs fetch, diff, commit and dispatch for one tick. Nothing is
// committed or dispatched when ctx is cancelled or the run generation moved on
// while fetching. A category whose fetch fails keeps its previous snapshot.
func (p *Poller) runCycle(ctx context.Context, gen uint64, cfg Config) {
	start := p.now()
	report := CycleReport{
		ID:        p.newID(),
		World:     cfg.World,
		Filter:    cfg.Filter,
		StartedAt: start,
	}
	p.recordAttempt(start)

	p.mu.Lock()
	prev := p.snap
	p.mu.Unlock()

	next := prev
	var (
		b    batch
		errs []error
	)
	fail := func(cat Category, err error) {
		errs = append(errs, fmt.Errorf("%s: %w", cat, err))
		logging.Warn(p.logger, "poller fetch failed",
			logging.FieldCycleID, report.ID,
			logging.FieldCategory, cat.String(),
			"error", err,
		)
	}

	if cfg.Filter.Has(EventStatus) {
		curr, err := p.source.GetEvents(ctx, cfg.World)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			fail(EventStatus, err)
		} else {
			changes, derr := diff.Events(cfg.World, prev.Events, curr)
			if derr != nil {
				p.handleInconsistent(ctx, report.ID, derr)
			}
			b.events = changes
			next.Events = curr
		}
	}

	if cfg.Filter.Any(WvW) {
		roster, err := p.source.GetMatchups(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			fail(MatchRoster, err)
			roster = prev.Roster
		} else {
			if cfg.Filter.Has(MatchRoster) {
				if change, ok := diff.Roster(prev.Roster, roster); ok {
					b.roster = &change
				}
			}
			next.Roster = roster
		}

		if cfg.Filter.Any(details) && roster != nil {
			m, ok := matchups.FindByWorld(roster, cfg.World)
			if !ok {
				fail(cfg.Filter&details, fmt.Errorf("world %s: %w", cfg.World, ErrWorldNotInMatchup))
			} else {
				curr, err := p.source.GetMatchupDetails(ctx, m.ID)
				if ctx.Err() != nil {
					return
				}
				if err != nil {
					fail(cfg.Filter&details, err)
				} else {
					p.diffDetails(report.ID, cfg.Filter, prev.Details, curr, &b)
					next.Details = &curr
				}
			}
		}
	}

	report.Err = errors.Join(errs...)
	report.Duration = p.now().Sub(start)
	report.Notifications = b.size()

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.snap = next
	handlers := p.handlers
	p.mu.Unlock()

	if report.Err != nil {
		p.recordFailure(report.Err)
	} else {
		p.recordSuccess(start, report.ID)
	}
	p.metrics.RecordPollerCycle(report.Duration, report.Err)
	logging.Debug(p.logger, "poller cycle completed",
		logging.FieldCycleID, report.ID,
		logging.FieldCount, report.Notifications,
		slog.Int64(logging.FieldDurationMS, report.Duration.Milliseconds()),
	)

	p.dispatch(handlers, b, report)
}

func (p *Poller) diffDetails(cycleID string, filter Category, prev *matchups.Details, curr matchups.Details, b *batch) {
	if diff.DetailsUnchanged(prev, curr) {
		return
	}
	if prev != nil && !diff.Comparable(prev, curr) {
		reason := "matchup changed"
		if matchups.SameMatchup(prev.Matchup, curr.Matchup) {
			reason = "line-up changed"
		}
		logging.Info(p.logger, "scoreboard re-seeded",
			logging.FieldCycleID, cycleID,
			logging.FieldMatchup, curr.Matchup.ID,
			"reason", reason,
		)
		return
	}
	if filter.Has(MatchScore) {
		if change, ok := diff.MatchScore(prev, curr); ok {
			b.score = &change
		}
	}
	if filter.Has(MapScore) {
		b.maps = diff.MapScores(prev, curr)
	}
	if filter.Has(Objective) {
		b.objectives = diff.Objectives(prev, curr)
	}
}

// handleInconsistent asks for one name resync per cycle when events vanished upstream.
func (p *Poller) handleInconsistent(ctx context.Context, cycleID string, err error) {
	logging.Warn(p.logger, "event snapshot inconsistent",
		logging.FieldCycleID, cycleID,
		"error", err,
	)
	if p.resync == nil {
		return
	}
	if rerr := p.resync.Refresh(ctx); rerr != nil && ctx.Err() == nil {
		logging.Error(p.logger, "name resync failed", rerr, logging.FieldCycleID, cycleID)
	}
}

func (p *Poller) dispatch(h Handlers, b batch, report CycleReport) {
	for _, c := range b.events {
		p.metrics.RecordNotification(EventStatus.String())
		if h.EventStatusChanged != nil {
			h.EventStatusChanged(c)
		}
	}
	if b.roster != nil {
		p.metrics.RecordNotification(MatchRoster.String())
		if h.MatchRosterChanged != nil {
			h.MatchRosterChanged(*b.roster)
		}
	}
	if b.score != nil {
		p.metrics.RecordNotification(MatchScore.String())
		if h.MatchScoreChanged != nil {
			h.MatchScoreChanged(*b.score)
		}
	}
	for _, c := range b.maps {
		p.metrics.RecordNotification(MapScore.String())
		if h.MapScoreChanged != nil {
			h.MapScoreChanged(c)
		}
	}
	for _, c := range b.objectives {
		p.metrics.RecordNotification(Objective.String())
		if h.ObjectiveChanged != nil {
			h.ObjectiveChanged(c)
		}
	}
	if h.CycleCompleted != nil {
		h.CycleCompleted(report)
	}
}
