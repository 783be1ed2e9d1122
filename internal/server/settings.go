package server

import (
	"github.com/preston-bernstein/gw2-watcher/internal/app/watcher"
	"github.com/preston-bernstein/gw2-watcher/internal/config"
)

func settingsFromConfig(cfg config.Config) (watcher.Settings, error) {
	filter, err := cfg.Categories()
	if err != nil {
		return watcher.Settings{}, err
	}
	return watcher.Settings{
		World:    cfg.World,
		Filter:   filter,
		Interval: cfg.PollInterval,
	}, nil
}
