package server

import (
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/gw2-watcher/internal/config"
	"github.com/preston-bernstein/gw2-watcher/internal/names"
	"github.com/preston-bernstein/gw2-watcher/internal/providers"
	"github.com/preston-bernstein/gw2-watcher/internal/providers/fixture"
	"github.com/preston-bernstein/gw2-watcher/internal/providers/gw2api"
)

// selectSource builds the configured data source and the name cache it reads from.
func selectSource(cfg config.Config, logger *slog.Logger) (providers.DataSource, *names.Cache, error) {
	switch cfg.Provider {
	case config.ProviderGW2API:
		client := gw2api.NewClient(gw2api.Config{
			BaseURL:  cfg.GW2.BaseURL,
			Timeout:  cfg.GW2.Timeout,
			Language: cfg.GW2.Language,
		})
		cache := names.NewCache(client, client.Language(), logger)
		return gw2api.NewSource(client, cache), cache, nil
	case config.ProviderFixture, "":
		data := fixture.DefaultDataset()
		if cfg.Fixture.Path != "" {
			loaded, err := fixture.LoadDataset(cfg.Fixture.Path)
			if err != nil {
				return nil, nil, err
			}
			data = loaded
		}
		p := fixture.New(data, cfg.Fixture.Drift)
		return p, names.NewCache(p, cfg.GW2.Language, logger), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, cfg.Provider)
	}
}
