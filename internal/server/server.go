package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/gw2-watcher/internal/app/watcher"
	"github.com/preston-bernstein/gw2-watcher/internal/config"
	httpserver "github.com/preston-bernstein/gw2-watcher/internal/http"
	"github.com/preston-bernstein/gw2-watcher/internal/http/handlers"
	"github.com/preston-bernstein/gw2-watcher/internal/logging"
	"github.com/preston-bernstein/gw2-watcher/internal/metrics"
	"github.com/preston-bernstein/gw2-watcher/internal/names"
	"github.com/preston-bernstein/gw2-watcher/internal/notify"
	"github.com/preston-bernstein/gw2-watcher/internal/poller"
	"github.com/preston-bernstein/gw2-watcher/internal/providers"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	loader        *config.Loader
	logger        *slog.Logger
	metrics       *metrics.Recorder
	names         *names.Cache
	watcher       *watcher.Watcher
	bus           *notify.Bus
	router        http.Handler
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// deps are the components tests swap out. A nil http builds the real listener.
type deps struct {
	source   providers.DataSource
	names    *names.Cache
	recorder *metrics.Recorder
	http     httpServer
}

// New constructs a server with the configured provider. loader is used for
// hot reload when watch_config is set and may be nil.
func New(cfg config.Config, logger *slog.Logger, loader *config.Loader) (*Server, error) {
	return newServerWithMetrics(cfg, logger, loader, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, loader *config.Loader, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	source, cache, err := newProviderFactory(logger, recorder).build(cfg)
	if err != nil {
		return nil, err
	}
	srv, err := newServerWithDeps(cfg, logger, deps{source: source, names: cache, recorder: recorder})
	if err != nil {
		return nil, err
	}
	srv.loader = loader
	srv.metricsServer = metricsSrv
	srv.metricsStop = metricsShutdown
	return srv, nil
}

func newServerWithDeps(cfg config.Config, logger *slog.Logger, d deps) (*Server, error) {
	settings, err := settingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	var resync poller.Resyncer
	if d.names != nil {
		resync = d.names
	}
	w := watcher.New(d.source, resync, logger, d.recorder, settings)

	bus := notify.NewBus(logger)
	notify.Attach(w, logger, bus, notify.LogSink(logger))

	router := httpserver.NewRouter(httpserver.Routes{
		Read:    handlers.NewHandler(w, logger),
		Control: handlers.NewControlHandler(w, cfg.AdminToken, logger),
		Stream:  notify.NewHub(bus, logger),
	}, logger, d.recorder)

	httpSrv := d.http
	if httpSrv == nil {
		httpSrv = netHTTPServer{srv: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		}}
	}

	return &Server{
		cfg:        cfg,
		logger:     logger,
		metrics:    d.recorder,
		names:      d.names,
		watcher:    w,
		bus:        bus,
		router:     router,
		httpServer: httpSrv,
	}, nil
}

// Run starts the HTTP servers, warms the name cache and enables the watcher,
// then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.startNames(ctx)
	s.startWatcher(ctx)
	s.startConfigWatch(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) startNames(ctx context.Context) {
	if s.names == nil {
		return
	}
	warmCtx, cancel := context.WithTimeout(ctx, namesWarmTimeout)
	defer cancel()
	if err := s.names.Refresh(warmCtx); err != nil {
		logging.Warn(s.logger, "initial name refresh failed", "error", err)
	}
	go s.names.Run(ctx, s.cfg.NamesRefresh)
}

func (s *Server) startWatcher(ctx context.Context) {
	settings := s.watcher.Settings()
	if resolved := s.resolveWorld(ctx, settings.World); resolved != settings.World {
		settings.World = resolved
		if err := s.watcher.Apply(settings); err != nil {
			logging.Warn(s.logger, "watcher settings rejected", "error", err)
		}
	}
	if !s.cfg.Enabled {
		logging.Info(s.logger, "watcher disabled by config")
		return
	}
	if err := s.watcher.Enable(true); err != nil {
		logging.Warn(s.logger, "watcher not started", "error", err)
		return
	}
	logging.Info(s.logger, "watcher started",
		logging.FieldWorld, settings.World,
		logging.FieldFilter, settings.Filter.String(),
		logging.FieldInterval, settings.Interval.String(),
	)
}

// resolveWorld maps a configured world name to its id. Unknown values are kept
// so the poller reports them.
func (s *Server) resolveWorld(ctx context.Context, world string) string {
	if world == "" {
		return ""
	}
	found, err := s.watcher.FindWorld(ctx, world)
	if err != nil {
		logging.Warn(s.logger, "world lookup failed", logging.FieldWorld, world, "error", err)
		return world
	}
	return found.ID
}

func (s *Server) startConfigWatch(ctx context.Context) {
	if s.loader == nil || !s.cfg.WatchConfig {
		return
	}
	go func() {
		err := s.loader.Watch(ctx, s.logger, func(next *config.Config) {
			s.applyConfig(ctx, *next)
		})
		if err != nil && !errors.Is(err, config.ErrNoConfigFile) {
			logging.Warn(s.logger, "config watch stopped", "error", err)
		}
	}()
}

// applyConfig hands reloaded watcher settings to the facade. Listener, provider
// and telemetry settings only take effect on restart.
func (s *Server) applyConfig(ctx context.Context, next config.Config) {
	settings, err := settingsFromConfig(next)
	if err != nil {
		logging.Warn(s.logger, "reloaded config rejected", "error", err)
		return
	}
	settings.World = s.resolveWorld(ctx, settings.World)
	if err := s.watcher.Apply(settings); err != nil {
		logging.Warn(s.logger, "reloaded config rejected", "error", err)
		return
	}
	if next.Enabled != s.watcher.Enabled() {
		if err := s.watcher.Enable(next.Enabled); err != nil {
			logging.Warn(s.logger, "watcher toggle failed", "error", err)
		}
	}
	logging.Info(s.logger, "config reloaded",
		logging.FieldWorld, settings.World,
		logging.FieldFilter, settings.Filter.String(),
		logging.FieldInterval, settings.Interval.String(),
		"enabled", s.watcher.Enabled(),
	)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if err := s.watcher.Enable(false); err != nil {
		logging.Error(s.logger, "failed to stop watcher", err)
	}

	if err := s.bus.Close(); err != nil {
		logging.Warn(s.logger, "notification bus close failed", "error", err)
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.router
}

// Watcher exposes the watcher facade.
func (s *Server) Watcher() *watcher.Watcher {
	return s.watcher
}
