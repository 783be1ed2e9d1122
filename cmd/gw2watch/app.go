package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/preston-bernstein/gw2-watcher/internal/config"
	"github.com/preston-bernstein/gw2-watcher/internal/logging"
	"github.com/preston-bernstein/gw2-watcher/internal/server"
)

const serviceName = "gw2-watcher"

// flagKeys maps command line flags to the config keys they override.
var flagKeys = map[string]string{
	"world":      "world",
	"filter":     "filter",
	"interval":   "poll_interval",
	"provider":   "provider",
	"fixture":    "fixture_path",
	"http-addr":  "http_addr",
	"log-level":  "log_level",
	"log-format": "log_format",
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "gw2watch",
		Usage:     "watch a Guild Wars 2 world and report what changes",
		Version:   appVersion,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file (default $GW2WATCH_CONFIG)"},
			&cli.StringFlag{Name: "world", Aliases: []string{"w"}, Usage: "world id or name to watch"},
			&cli.StringSliceFlag{Name: "filter", Aliases: []string{"f"}, Usage: "categories to report (event_status, match_roster, match_score, map_score, objective, wvw, all)"},
			&cli.DurationFlag{Name: "interval", Aliases: []string{"i"}, Usage: "pause between poll cycles"},
			&cli.StringFlag{Name: "provider", Usage: "data source: gw2api or fixture"},
			&cli.StringFlag{Name: "fixture", Usage: "YAML dataset for the fixture provider"},
			&cli.StringFlag{Name: "http-addr", Usage: "listen address of the HTTP API"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
			&cli.BoolFlag{Name: "disabled", Usage: "start with polling disabled"},
		},
		Action: runCommand,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the watcher and its HTTP API until interrupted",
				Action: runCommand,
			},
			{
				Name:   "worlds",
				Usage:  "list world ids and names",
				Action: listCommand(listWorlds),
			},
			{
				Name:   "maps",
				Usage:  "list map ids and names",
				Action: listCommand(listMaps),
			},
		},
	}
}

func loaderFrom(c *cli.Context) *config.Loader {
	overrides := make(map[string]any)
	for flag, key := range flagKeys {
		if !c.IsSet(flag) {
			continue
		}
		switch flag {
		case "filter":
			overrides[key] = c.StringSlice(flag)
		case "interval":
			overrides[key] = c.Duration(flag)
		default:
			overrides[key] = c.String(flag)
		}
	}
	if c.Bool("disabled") {
		overrides["enabled"] = false
	}
	return &config.Loader{Path: c.String("config"), Overrides: overrides}
}

func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	return logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
		Version: appVersion,
		Output:  out,
	})
}

func runCommand(c *cli.Context) error {
	loader := loaderFrom(c)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, c.App.Writer)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(*cfg, logger, loader)
	if err != nil {
		return err
	}
	srv.Run(ctx, stop)
	return nil
}

type row struct{ id, name string }

type lister func(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]row, error)

func listCommand(list lister) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loaderFrom(c).Load()
		if err != nil {
			return err
		}
		logger := newLogger(cfg, c.App.ErrWriter)
		rows, err := list(c.Context, cfg, logger)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", r.id, r.name)
		}
		return tw.Flush()
	}
}

func listWorlds(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]row, error) {
	source, cache, err := server.BuildSource(*cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	if err := cache.Refresh(ctx); err != nil {
		return nil, err
	}
	list, err := source.ListWorlds(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]row, 0, len(list))
	for _, w := range list {
		rows = append(rows, row{id: w.ID, name: w.Name})
	}
	return rows, nil
}

func listMaps(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]row, error) {
	source, cache, err := server.BuildSource(*cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	if err := cache.Refresh(ctx); err != nil {
		return nil, err
	}
	list, err := source.ListMaps(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]row, 0, len(list))
	for _, m := range list {
		rows = append(rows, row{id: m.ID, name: m.Name})
	}
	return rows, nil
}
