package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func receive(t *testing.T, ch <-chan Envelope) Envelope {
	t.Helper()
	select {
	case env, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed")
		}
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
	}
	return Envelope{}
}

func TestBusDeliversToEverySubscriber(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	second, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	want := Envelope{
		ID:      "n-1",
		Kind:    KindMatchScore,
		At:      fixedAt,
		Payload: json.RawMessage(`{"current":{"score":[10,5,4]}}`),
	}
	if err := bus.Notify(want); err != nil {
		t.Fatalf("notify: %v", err)
	}

	for _, ch := range []<-chan Envelope{first, second} {
		got := receive(t, ch)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestBusSubscriptionEndsWithContext(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not close")
	}
}

func TestBusRejectsSubscribeAfterClose(t *testing.T) {
	bus := NewBus(nil)
	if err := bus.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := bus.Subscribe(context.Background()); err == nil {
		t.Fatal("expected error after close")
	}
}
