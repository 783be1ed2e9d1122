package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/preston-bernstein/gw2-watcher/internal/config"
	"github.com/preston-bernstein/gw2-watcher/internal/notify"
	"github.com/preston-bernstein/gw2-watcher/internal/poller"
	"github.com/preston-bernstein/gw2-watcher/internal/providers/gw2api"
	"github.com/preston-bernstein/gw2-watcher/internal/testutil"
)

func testConfig() config.Config {
	cfg := *config.New()
	cfg.World = "Blackgate"
	cfg.PollInterval = 5 * time.Millisecond
	cfg.Fixture.Drift = false
	cfg.Metrics.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config, httpSrv httpServer) *Server {
	t.Helper()
	logger, _ := testutil.NewBufferLogger()
	source, cache, err := selectSource(cfg, logger)
	if err != nil {
		t.Fatalf("select source: %v", err)
	}
	srv, err := newServerWithDeps(cfg, logger, deps{source: source, names: cache, http: httpSrv})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func waitUntil(cond func() bool, limit time.Duration) {
	deadline := time.Now().Add(limit)
	for !cond() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServerRunsWatcherEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	httpSrv := &testutil.StubHTTPServer{ListenErr: http.ErrServerClosed}
	srv := newTestServer(t, testConfig(), httpSrv)

	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	router := srv.Handler()
	waitFor(t, "details snapshot", func() bool {
		return testutil.Serve(router, http.MethodGet, "/v1/details", nil).Code == http.StatusOK
	})

	rr := testutil.Serve(router, http.MethodGet, "/v1/status", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var status poller.Status
	testutil.DecodeJSON(t, rr, &status)
	if !status.Running || status.World != "1019" {
		t.Fatalf("expected watcher running on Blackgate, got %+v", status)
	}

	rr = testutil.Serve(router, http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	if _, shutdowns := httpSrv.Calls(); shutdowns != 1 {
		t.Fatalf("expected server Shutdown called once, got %d", shutdowns)
	}
	if srv.Watcher().Enabled() {
		t.Fatalf("expected watcher stopped after shutdown")
	}
}

func TestStartWatcherRespectsDisabledConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	srv := newTestServer(t, cfg, &testutil.StubHTTPServer{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.startNames(ctx)
	srv.startWatcher(ctx)

	if srv.Watcher().Enabled() {
		t.Fatalf("expected watcher to stay disabled")
	}
	if got := srv.Watcher().Settings().World; got != "1019" {
		t.Fatalf("expected world name resolved to id, got %q", got)
	}
}

func TestApplyConfigUpdatesWatcher(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	srv := newTestServer(t, cfg, &testutil.StubHTTPServer{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.startNames(ctx)

	next := testConfig()
	next.Enabled = false
	next.World = "Anvil Rock"
	next.Filter = []string{"match_score"}
	next.PollInterval = time.Minute
	srv.applyConfig(ctx, next)

	got := srv.Watcher().Settings()
	if got.World != "1001" || got.Filter != poller.MatchScore || got.Interval != time.Minute {
		t.Fatalf("unexpected settings %+v", got)
	}

	bad := next
	bad.PollInterval = -time.Second
	srv.applyConfig(ctx, bad)
	if srv.Watcher().Settings().Interval != time.Minute {
		t.Fatalf("expected invalid reload to be ignored")
	}
}

func TestRunReloadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.yaml")
	write := func(body string) {
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	write("world: Blackgate\npoll_interval: 1h\nfixture_drift: false\nmetrics_enabled: false\nwatch_config: true\n")

	loader := &config.Loader{Path: path}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := newTestServer(t, *cfg, &testutil.StubHTTPServer{ListenErr: http.ErrServerClosed})
	srv.loader = loader

	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()
	waitFor(t, "watcher start", srv.Watcher().Enabled)

	// Rewrite periodically: the file watcher starts asynchronously and
	// debounces bursts of writes.
	reloaded := func() bool {
		s := srv.Watcher().Settings()
		return s.World == "1001" && s.Interval == 2*time.Hour
	}
	deadline := time.Now().Add(5 * time.Second)
	for !reloaded() {
		if time.Now().After(deadline) {
			t.Fatalf("config change was not applied, settings %+v", srv.Watcher().Settings())
		}
		write("world: Anvil Rock\npoll_interval: 2h\nfixture_drift: false\nmetrics_enabled: false\nwatch_config: true\n")
		waitUntil(reloaded, 600*time.Millisecond)
	}

	cancel()
	<-done
}

func TestSelectSource(t *testing.T) {
	cfg := testConfig()
	cfg.Provider = config.ProviderGW2API
	src, cache, err := selectSource(cfg, nil)
	if err != nil || cache == nil {
		t.Fatalf("unexpected gw2api result: %v", err)
	}
	if _, ok := src.(*gw2api.Source); !ok {
		t.Fatalf("expected gw2api source, got %T", src)
	}

	cfg.Provider = config.ProviderFixture
	cfg.Fixture.Path = filepath.Join(t.TempDir(), "missing.yaml")
	if _, _, err := selectSource(cfg, nil); err == nil {
		t.Fatalf("expected error for missing dataset")
	}

	cfg.Provider = "carrier-pigeon"
	if _, _, err := selectSource(cfg, nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildSourceIsInstrumented(t *testing.T) {
	rec, _ := testutil.NewRecorderWithShutdown()
	src, cache, err := BuildSource(testConfig(), nil, rec)
	if err != nil {
		t.Fatalf("build source: %v", err)
	}
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh names: %v", err)
	}
	list, err := src.ListWorlds(context.Background())
	if err != nil || len(list) == 0 {
		t.Fatalf("expected fixture worlds, got %v (%v)", list, err)
	}
	if rec.ProviderCalls(config.ProviderFixture) != 1 {
		t.Fatalf("expected one recorded provider call, got %d", rec.ProviderCalls(config.ProviderFixture))
	}
}

func TestGracefulShutdownTimesOutLongRunningShutdown(t *testing.T) {
	blocking := &testutil.StubHTTPServer{Unblock: make(chan struct{})}

	original := shutdownTimeout
	shutdownTimeout = 5 * time.Millisecond
	defer func() { shutdownTimeout = original }()

	srv := newTestServer(t, testConfig(), blocking)

	start := time.Now()
	srv.gracefulShutdown()
	elapsed := time.Since(start)

	if _, shutdowns := blocking.Calls(); shutdowns != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", shutdowns)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("shutdown took too long: %s", elapsed)
	}
}

func TestServerStartHandlesListenErrorAndStops(t *testing.T) {
	srv := newTestServer(t, testConfig(), &testutil.StubHTTPServer{ListenErr: errors.New("listen failure")})

	var wg sync.WaitGroup
	wg.Add(1)
	stopCalled := make(chan struct{})
	stop := func() {
		close(stopCalled)
		wg.Done()
	}

	srv.startServer(stop)

	select {
	case <-stopCalled:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected stop to be called on listen failure")
	}
	wg.Wait()
}

func TestNewRejectsInvalidFilter(t *testing.T) {
	cfg := testConfig()
	cfg.Filter = []string{"weather"}
	if _, err := New(cfg, nil, nil); err == nil {
		t.Fatalf("expected invalid filter to be rejected")
	}
}

func TestStreamRouteIsMounted(t *testing.T) {
	srv := newTestServer(t, testConfig(), &testutil.StubHTTPServer{})

	rr := testutil.Serve(srv.Handler(), http.MethodGet, "/v1/stream", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected the stream route to refuse a non-websocket request, got %d", rr.Code)
	}
}

func TestStreamCarriesWatcherNotifications(t *testing.T) {
	cfg := testConfig()
	cfg.Fixture.Drift = true
	srv := newTestServer(t, cfg, &testutil.StubHTTPServer{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.startNames(ctx)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/v1/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The hub subscribes before upgrading, so the client is live once the dial returns.
	srv.startWatcher(ctx)
	defer func() { _ = srv.Watcher().Enable(false) }()

	seen := map[string]bool{}
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for !seen[notify.KindMatchScore] || !seen[notify.KindCycleCompleted] {
		var env notify.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("read: %v (seen %v)", err, seen)
		}
		seen[env.Kind] = true
	}
}
