package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/preston-bernstein/gw2-watcher/internal/logging"
)

const defaultDebounce = 250 * time.Millisecond

// ErrNoConfigFile is returned by Watch when there is no file to watch.
var ErrNoConfigFile = errors.New("no config file to watch")

// Watch reloads the configuration whenever the config file changes and hands
// every valid result to onChange. Invalid files are logged and skipped. The
// parent directory is watched so editors that replace the file are seen.
// Watch blocks until ctx is done.
func (l Loader) Watch(ctx context.Context, logger *slog.Logger, onChange func(*Config)) error {
	return l.watch(ctx, logger, defaultDebounce, onChange)
}

func (l Loader) watch(ctx context.Context, logger *slog.Logger, debounce time.Duration, onChange func(*Config)) error {
	path := l.ResolvedPath()
	if path == "" {
		return ErrNoConfigFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Op.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.Warn(logger, "config watcher error", "error", err)
		case <-reload:
			cfg, err := l.Load()
			if err != nil {
				logging.Error(logger, "config reload rejected", err)
				continue
			}
			logging.Info(logger, "config reloaded", "path", abs)
			onChange(cfg)
		}
	}
}
