package teststubs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
)

func TestStubSourceReturnsCopies(t *testing.T) {
	s := NewStubSource()
	s.SetEvents("1001", map[string]events.Event{"e": {ID: "e", Status: events.StatusActive}})

	got, err := s.GetEvents(context.Background(), "1001")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	got["e"] = events.Event{ID: "e", Status: events.StatusFail}

	again, _ := s.GetEvents(context.Background(), "1001")
	if again["e"].Status != events.StatusActive {
		t.Fatalf("expected stub state isolated from callers")
	}
	if s.Calls(OpEvents) != 2 {
		t.Fatalf("expected two calls, got %d", s.Calls(OpEvents))
	}
}

func TestStubSourceInjectsErrors(t *testing.T) {
	s := NewStubSource()
	boom := errors.New("boom")
	s.SetErr(OpMatchups, boom)
	if _, err := s.GetMatchups(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	s.SetErr(OpMatchups, nil)
	if _, err := s.GetMatchups(context.Background()); err != nil {
		t.Fatalf("expected error cleared, got %v", err)
	}
}

func TestStubSourceDetailsFallback(t *testing.T) {
	s := NewStubSource()
	d, err := s.GetMatchupDetails(context.Background(), "1-2")
	if err != nil || d.Matchup.ID != "1-2" {
		t.Fatalf("expected empty details for unknown matchup, got %+v %v", d, err)
	}
	s.SetDetails(matchups.Details{Matchup: matchups.Matchup{ID: "1-2"}, Score: matchups.Score{1, 2, 3}})
	d, _ = s.GetMatchupDetails(context.Background(), "1-2")
	if d.Score != (matchups.Score{1, 2, 3}) {
		t.Fatalf("unexpected details %+v", d)
	}
	if got := s.DetailRequests(); len(got) != 2 {
		t.Fatalf("expected two detail requests, got %v", got)
	}
}

func TestStubSourceBlocksUntilCancelled(t *testing.T) {
	s := NewStubSource()
	s.BlockOn(OpListWorlds)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := s.ListWorlds(ctx)
		done <- err
	}()
	select {
	case op := <-s.Entered():
		if op != OpListWorlds {
			t.Fatalf("unexpected op %s", op)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for block")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStubResyncerCounts(t *testing.T) {
	r := &StubResyncer{}
	_ = r.Refresh(context.Background())
	_ = r.Refresh(context.Background())
	if r.Calls() != 2 {
		t.Fatalf("expected 2 calls, got %d", r.Calls())
	}
}
