package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/preston-bernstein/gw2-watcher/internal/poller"
)

var (
	// ErrInvalidConfig marks a configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a configuration source that could not be read or parsed.
	ErrLoadConfig = errors.New("load config failed")
)

const (
	ProviderGW2API  = "gw2api"
	ProviderFixture = "fixture"
)

// Config holds runtime configuration for the service. Keys are flat so the
// same names work in YAML and as GW2WATCH_* environment variables.
type Config struct {
	World        string        `koanf:"world"`
	Filter       []string      `koanf:"filter"`
	PollInterval time.Duration `koanf:"poll_interval"`
	Enabled      bool          `koanf:"enabled"`
	Provider     string        `koanf:"provider"`
	NamesRefresh time.Duration `koanf:"names_refresh"`
	HTTPAddr     string        `koanf:"http_addr"`
	LogLevel     string        `koanf:"log_level"`
	LogFormat    string        `koanf:"log_format"`
	WatchConfig  bool          `koanf:"watch_config"`
	// AdminToken guards the control routes when set.
	AdminToken string `koanf:"admin_token"`

	GW2     GW2Config     `koanf:",squash"`
	Fixture FixtureConfig `koanf:",squash"`
	Metrics MetricsConfig `koanf:",squash"`
}

// GW2Config controls how we talk to the GW2 API.
type GW2Config struct {
	BaseURL  string        `koanf:"api_base_url"`
	Timeout  time.Duration `koanf:"api_timeout"`
	Language string        `koanf:"language"`
}

// FixtureConfig controls the offline provider.
type FixtureConfig struct {
	Path  string `koanf:"fixture_path"`
	Drift bool   `koanf:"fixture_drift"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		PollInterval: 15 * time.Second,
		Enabled:      true,
		Provider:     ProviderFixture,
		NamesRefresh: time.Hour,
		HTTPAddr:     ":4000",
		LogLevel:     "info",
		LogFormat:    "text",
		GW2: GW2Config{
			BaseURL:  "https://api.guildwars2.com/v1",
			Timeout:  5 * time.Second,
			Language: "en",
		},
		Fixture: FixtureConfig{Drift: true},
		Metrics: defaultMetrics(),
	}
}

// Categories parses the configured filter. An unset filter selects everything.
func (c *Config) Categories() (poller.Category, error) {
	if c.Filter == nil {
		return poller.All, nil
	}
	return poller.ParseCategories(c.Filter)
}

// Validate checks the values a service cannot start without.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: http_addr must not be empty", ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	}
	if c.NamesRefresh <= 0 {
		return fmt.Errorf("%w: names_refresh must be positive", ErrInvalidConfig)
	}
	switch c.Provider {
	case ProviderGW2API:
		if c.GW2.Timeout <= 0 {
			return fmt.Errorf("%w: api_timeout must be positive", ErrInvalidConfig)
		}
	case ProviderFixture:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	if _, err := c.Categories(); err != nil {
		return fmt.Errorf("%w: filter: %v", ErrInvalidConfig, err)
	}
	return nil
}
