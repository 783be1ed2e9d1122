package server

import (
	"log/slog"

	"github.com/preston-bernstein/gw2-watcher/internal/config"
	"github.com/preston-bernstein/gw2-watcher/internal/metrics"
	"github.com/preston-bernstein/gw2-watcher/internal/names"
	"github.com/preston-bernstein/gw2-watcher/internal/providers"
)

// providerFactory assembles the data source with the shared instrumentation wrapper.
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

func (f providerFactory) build(cfg config.Config) (providers.DataSource, *names.Cache, error) {
	base, cache, err := selectSource(cfg, f.logger)
	if err != nil {
		return nil, nil, err
	}
	name := normalizeProviderName(cfg.Provider, base)
	return providers.NewInstrumentedSource(base, name, f.logger, f.metrics), cache, nil
}

// BuildSource returns the instrumented data source for cfg and its name cache,
// for callers that need the upstream without a running server.
func BuildSource(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (providers.DataSource, *names.Cache, error) {
	return newProviderFactory(logger, recorder).build(cfg)
}
