package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderTracksProviderAttemptsAndErrors(t *testing.T) {
	rec := NewRecorder()
	rec.RecordProviderAttempt("gw2api", "get_events", 10*time.Millisecond, nil)
	rec.RecordProviderAttempt("gw2api", "get_matchups", 15*time.Millisecond, errors.New("boom"))

	if got := rec.ProviderCalls("gw2api"); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
	if got := rec.ProviderErrors("gw2api"); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if got := rec.LastCallLatency("gw2api"); got != 15*time.Millisecond {
		t.Fatalf("expected last latency to be 15ms, got %s", got)
	}

	snap := rec.Snapshot("gw2api")
	if snap.Calls != 2 || snap.Errors != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if empty := rec.Snapshot("fixture"); empty.Calls != 0 {
		t.Fatalf("expected empty snapshot for unseen provider, got %+v", empty)
	}
}

func TestRecorderTracksPollerCycles(t *testing.T) {
	rec := NewRecorder()
	rec.RecordPollerCycle(5*time.Millisecond, nil)
	rec.RecordPollerCycle(7*time.Millisecond, errors.New("partial"))

	snap := rec.Poller()
	if snap.Cycles != 2 || snap.Errors != 1 || snap.LastLatency != 7*time.Millisecond {
		t.Fatalf("unexpected poller snapshot %+v", snap)
	}
}

func TestRecorderTracksNotificationsAndRestarts(t *testing.T) {
	rec := NewRecorder()
	rec.RecordNotification("objective")
	rec.RecordNotification("objective")
	rec.RecordNotification("event_status")
	rec.RecordRestart()

	if got := rec.Notifications("objective"); got != 2 {
		t.Fatalf("expected 2 objective notifications, got %d", got)
	}
	if got := rec.Notifications("map_score"); got != 0 {
		t.Fatalf("expected no map_score notifications, got %d", got)
	}
	if got := rec.Restarts(); got != 1 {
		t.Fatalf("expected 1 restart, got %d", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordProviderAttempt("p", "op", time.Millisecond, nil)
	rec.RecordPollerCycle(time.Millisecond, nil)
	rec.RecordNotification("objective")
	rec.RecordRestart()
	rec.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)

	if rec.ProviderCalls("p") != 0 || rec.Restarts() != 0 || rec.Notifications("objective") != 0 {
		t.Fatalf("expected zero values from nil recorder")
	}
	if rec.Poller().Cycles != 0 {
		t.Fatalf("expected zero poller stats from nil recorder")
	}
}
