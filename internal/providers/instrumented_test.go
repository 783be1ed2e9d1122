package providers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/metrics"
	"github.com/preston-bernstein/gw2-watcher/internal/teststubs"
	"github.com/preston-bernstein/gw2-watcher/internal/testutil"
)

func TestInstrumentedSourceRecordsSuccess(t *testing.T) {
	stub := teststubs.NewStubSource()
	stub.SetEvents("1001", map[string]events.Event{"e": {ID: "e", Status: events.StatusActive}})
	rec := metrics.NewRecorder()
	logger, buf := testutil.NewBufferLogger()

	src := NewInstrumentedSource(stub, "stub", logger, rec)
	got, err := src.GetEvents(context.Background(), "1001")
	if err != nil || len(got) != 1 {
		t.Fatalf("expected passthrough, got %v %v", got, err)
	}
	if rec.ProviderCalls("stub") != 1 || rec.ProviderErrors("stub") != 0 {
		t.Fatalf("expected one successful call recorded, got %+v", rec.Snapshot("stub"))
	}
	if strings.Contains(buf.String(), "provider call failed") {
		t.Fatalf("did not expect failure log: %s", buf.String())
	}
}

func TestInstrumentedSourceWrapsPlainErrors(t *testing.T) {
	stub := teststubs.NewStubSource()
	boom := errors.New("boom")
	stub.SetErr(teststubs.OpMatchups, boom)
	rec := metrics.NewRecorder()
	logger, buf := testutil.NewBufferLogger()

	src := NewInstrumentedSource(stub, "stub", logger, rec)
	_, err := src.GetMatchups(context.Background())

	tErr, ok := AsTransportError(err)
	if !ok || tErr.Op != OpGetMatchups || tErr.Provider != "stub" || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if rec.ProviderErrors("stub") != 1 {
		t.Fatalf("expected error recorded")
	}
	if !strings.Contains(buf.String(), "provider call failed") || !strings.Contains(buf.String(), "provider=stub") {
		t.Fatalf("expected failure log with provider, got %s", buf.String())
	}
}

func TestInstrumentedSourceKeepsTransportErrors(t *testing.T) {
	stub := teststubs.NewStubSource()
	orig := &TransportError{Provider: "gw2api", Op: OpGetMatchupDetails, StatusCode: 503}
	stub.SetErr(teststubs.OpDetails, orig)

	src := NewInstrumentedSource(stub, "gw2api", nil, nil)
	_, err := src.GetMatchupDetails(context.Background(), "1-2")
	if tErr, ok := AsTransportError(err); !ok || tErr != orig {
		t.Fatalf("expected original transport error, got %v", err)
	}
}

func TestInstrumentedSourcePassesCancellation(t *testing.T) {
	stub := teststubs.NewStubSource()
	stub.SetErr(teststubs.OpListWorlds, context.Canceled)

	src := NewInstrumentedSource(stub, "stub", nil, nil)
	_, err := src.ListWorlds(context.Background())
	if err != context.Canceled {
		t.Fatalf("expected bare context.Canceled, got %v", err)
	}
}

func TestInstrumentedSourceMeasuresLatency(t *testing.T) {
	stub := teststubs.NewStubSource()
	rec := metrics.NewRecorder()
	src := NewInstrumentedSource(stub, "", nil, rec).(*instrumentedSource)
	ticks := []time.Time{time.Unix(0, 0), time.Unix(0, 0).Add(40 * time.Millisecond)}
	src.now = func() time.Time {
		now := ticks[0]
		ticks = ticks[1:]
		return now
	}

	if _, err := src.ListMaps(context.Background()); err != nil {
		t.Fatalf("list maps: %v", err)
	}
	if got := rec.LastCallLatency("unknown"); got != 40*time.Millisecond {
		t.Fatalf("expected 40ms latency under default name, got %v", got)
	}
}

func TestInstrumentedSourceWithoutInner(t *testing.T) {
	src := NewInstrumentedSource(nil, "none", nil, nil)
	if _, err := src.GetEvents(context.Background(), "1"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}
