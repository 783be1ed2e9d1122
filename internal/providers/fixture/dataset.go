package fixture

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/preston-bernstein/gw2-watcher/internal/domain/events"
	"github.com/preston-bernstein/gw2-watcher/internal/domain/matchups"
)

//go:embed testdata/default.yaml
var defaultDataset []byte

// Dataset is the on-disk description of a fake upstream.
type Dataset struct {
	Worlds   []NamedEntry            `yaml:"worlds"`
	Maps     []NamedEntry            `yaml:"maps"`
	Events   map[string][]EventEntry `yaml:"events"`
	Matchups []MatchupEntry          `yaml:"matchups"`
}

type NamedEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type EventEntry struct {
	ID     string        `yaml:"id"`
	Name   string        `yaml:"name"`
	Map    string        `yaml:"map"`
	Status events.Status `yaml:"status"`
}

type MatchupEntry struct {
	ID    string     `yaml:"id"`
	Red   string     `yaml:"red"`
	Blue  string     `yaml:"blue"`
	Green string     `yaml:"green"`
	Score []int      `yaml:"score"`
	Maps  []MapEntry `yaml:"maps"`
}

type MapEntry struct {
	Type       string           `yaml:"type"`
	Score      []int            `yaml:"score"`
	Objectives []ObjectiveEntry `yaml:"objectives"`
}

type ObjectiveEntry struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Owner string `yaml:"owner"`
}

// LoadDataset reads and validates a YAML dataset from path.
func LoadDataset(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read fixture dataset: %w", err)
	}
	return ParseDataset(raw)
}

// ParseDataset decodes and validates a YAML dataset.
func ParseDataset(raw []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode fixture dataset: %w", err)
	}
	if err := ds.validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// DefaultDataset returns the built-in dataset.
func DefaultDataset() Dataset {
	ds, err := ParseDataset(defaultDataset)
	if err != nil {
		panic(fmt.Sprintf("built-in fixture dataset is invalid: %v", err))
	}
	return ds
}

func (ds Dataset) validate() error {
	known := make(map[string]bool, len(ds.Worlds))
	for _, w := range ds.Worlds {
		if w.ID == "" {
			return fmt.Errorf("fixture dataset: world without id")
		}
		known[w.ID] = true
	}
	for worldID, evs := range ds.Events {
		if !known[worldID] {
			return fmt.Errorf("fixture dataset: events for unknown world %s", worldID)
		}
		for _, e := range evs {
			if _, err := events.ParseStatus(string(e.Status)); err != nil {
				return fmt.Errorf("fixture dataset: event %s: %w", e.ID, err)
			}
		}
	}
	for _, m := range ds.Matchups {
		for _, id := range []string{m.Red, m.Blue, m.Green} {
			if !known[id] {
				return fmt.Errorf("fixture dataset: matchup %s references unknown world %q", m.ID, id)
			}
		}
		if _, err := matchups.ScoreFromSlice(m.Score); err != nil {
			return fmt.Errorf("fixture dataset: matchup %s: %w", m.ID, err)
		}
		for _, mp := range m.Maps {
			if _, err := matchups.ScoreFromSlice(mp.Score); err != nil {
				return fmt.Errorf("fixture dataset: matchup %s map %s: %w", m.ID, mp.Type, err)
			}
			for _, o := range mp.Objectives {
				if _, err := matchups.ParseTeam(o.Owner); err != nil {
					return fmt.Errorf("fixture dataset: objective %s: %w", o.ID, err)
				}
			}
		}
	}
	return nil
}
