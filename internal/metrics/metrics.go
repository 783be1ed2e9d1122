package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	lastCallLatency time.Duration
}

type pollerStats struct {
	cycles      int
	errors      int
	lastLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about provider calls and
// watcher cycles, mirrored to OpenTelemetry instruments when configured.
// A nil Recorder is valid and records nothing.
type Recorder struct {
	mu            sync.Mutex
	providers     map[string]*providerStats
	poller        pollerStats
	notifications map[string]int
	restarts      int
	otel          *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		providers:     make(map[string]*providerStats),
		notifications: make(map[string]int),
		otel:          otel,
	}
}

// RecordProviderAttempt increments counters for one upstream call and stores its latency.
func (r *Recorder) RecordProviderAttempt(provider, op string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, op, duration, err)
	}
}

// RecordPollerCycle tracks poller cycles and whether any category failed.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.poller.cycles++
	r.poller.lastLatency = duration
	if err != nil {
		r.poller.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPoller(duration, err)
	}
}

// RecordNotification counts one dispatched change notification.
func (r *Recorder) RecordNotification(category string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.notifications[category]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordNotification(category)
	}
}

// RecordRestart counts a configuration-driven scheduler restart.
func (r *Recorder) RecordRestart() {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.restarts++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRestart()
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// LastCallLatency returns the last recorded latency for a provider call.
func (r *Recorder) LastCallLatency(provider string) time.Duration {
	return r.Snapshot(provider).LastCallLatency
}

// Notifications returns how many notifications of a category were dispatched.
func (r *Recorder) Notifications(category string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notifications[category]
}

// Restarts returns the number of recorded scheduler restarts.
func (r *Recorder) Restarts() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restarts
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.providers[provider]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		LastCallLatency: stats.lastCallLatency,
	}
}

// PollerSnapshot mirrors Snapshot for the poll loop.
type PollerSnapshot struct {
	Cycles      int
	Errors      int
	LastLatency time.Duration
}

func (r *Recorder) Poller() PollerSnapshot {
	if r == nil {
		return PollerSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return PollerSnapshot{
		Cycles:      r.poller.cycles,
		Errors:      r.poller.errors,
		LastLatency: r.poller.lastLatency,
	}
}

func (r *Recorder) ensureStatsLocked(provider string) *providerStats {
	stats, ok := r.providers[provider]
	if !ok {
		stats = &providerStats{}
		r.providers[provider] = stats
	}
	return stats
}
