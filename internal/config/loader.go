package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "GW2WATCH_"
	envConfig = envPrefix + "CONFIG"
)

// Loader layers configuration sources. Precedence, low to high:
//  1. defaults (New)
//  2. YAML file at Path, or GW2WATCH_CONFIG when Path is empty
//  3. GW2WATCH_* environment variables
//  4. Overrides, usually from command line flags
type Loader struct {
	Path      string
	Overrides map[string]any
}

// Load builds and validates a Config with only the file and environment layers.
func Load(path string) (*Config, error) {
	return Loader{Path: path}.Load()
}

// ResolvedPath returns the config file the loader reads, if any.
func (l Loader) ResolvedPath() string {
	if l.Path != "" {
		return l.Path
	}
	return os.Getenv(envConfig)
}

func (l Loader) Load() (*Config, error) {
	k := koanf.New(".")

	if path := l.ResolvedPath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// GW2WATCH_POLL_INTERVAL -> poll_interval
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	for key, val := range l.Overrides {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("%w: override %s: %v", ErrLoadConfig, key, err)
		}
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
