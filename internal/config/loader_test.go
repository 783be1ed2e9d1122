package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/preston-bernstein/gw2-watcher/internal/config"
	"github.com/preston-bernstein/gw2-watcher/internal/poller"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gw2watch.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{"GW2WATCH_CONFIG", "GW2WATCH_WORLD", "GW2WATCH_POLL_INTERVAL"} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load("")

			convey.Convey("Then it should use the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":4000")
				convey.So(cfg.PollInterval, convey.ShouldEqual, 15*time.Second)
				convey.So(cfg.Provider, convey.ShouldEqual, config.ProviderFixture)
				convey.So(cfg.GW2.Language, convey.ShouldEqual, "en")
				convey.So(cfg.Metrics.ServiceName, convey.ShouldEqual, "gw2-watcher")
				cats, err := cfg.Categories()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cats, convey.ShouldEqual, poller.All)
			})
		})

		convey.Convey("When loading a YAML file", func() {
			path := writeConfig(t, `
world: "1019"
filter: [match_score, objective]
poll_interval: 30s
provider: gw2api
api_timeout: 2s
language: de
metrics_port: "9191"
`)
			cfg, err := config.Load(path)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.World, convey.ShouldEqual, "1019")
				convey.So(cfg.PollInterval, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.Provider, convey.ShouldEqual, config.ProviderGW2API)
				convey.So(cfg.GW2.Timeout, convey.ShouldEqual, 2*time.Second)
				convey.So(cfg.GW2.Language, convey.ShouldEqual, "de")
				convey.So(cfg.Metrics.Port, convey.ShouldEqual, "9191")
				convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":4000")
				cats, _ := cfg.Categories()
				convey.So(cats, convey.ShouldEqual, poller.MatchScore|poller.Objective)
			})
		})

		convey.Convey("When environment variables are set", func() {
			path := writeConfig(t, "world: \"1019\"\nhttp_addr: \":5000\"\n")
			_ = os.Setenv("GW2WATCH_WORLD", "1001")
			_ = os.Setenv("GW2WATCH_POLL_INTERVAL", "45s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(path)

			convey.Convey("Then env should win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.World, convey.ShouldEqual, "1001")
				convey.So(cfg.PollInterval, convey.ShouldEqual, 45*time.Second)
				convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":5000")
			})
		})

		convey.Convey("When the file comes from GW2WATCH_CONFIG", func() {
			path := writeConfig(t, "world: \"2002\"\n")
			_ = os.Setenv("GW2WATCH_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Loader{}.Load()

			convey.Convey("Then it should be read", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.World, convey.ShouldEqual, "2002")
			})
		})

		convey.Convey("When overrides are given", func() {
			_ = os.Setenv("GW2WATCH_WORLD", "1001")
			defer clearConfigEnvVars()
			l := config.Loader{Overrides: map[string]any{"world": "1019", "poll_interval": time.Minute}}

			cfg, err := l.Load()

			convey.Convey("Then overrides should win over env", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.World, convey.ShouldEqual, "1019")
				convey.So(cfg.PollInterval, convey.ShouldEqual, time.Minute)
			})
		})

		convey.Convey("When the file is invalid YAML", func() {
			path := writeConfig(t, "invalid: yaml: content: [")
			cfg, err := config.Load(path)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file does not exist", func() {
			cfg, err := config.Load("/non/existent/gw2watch.yaml")

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When values fail validation", func() {
			cases := []string{
				"http_addr: \"\"\n",
				"poll_interval: -1s\n",
				"provider: carrier-pigeon\n",
				"filter: [pvp]\n",
				"names_refresh: 0s\n",
				"provider: gw2api\napi_timeout: 0s\n",
			}
			for _, body := range cases {
				_, err := config.Load(writeConfig(t, body))
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}
