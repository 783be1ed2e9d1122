package names

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/preston-bernstein/gw2-watcher/internal/logging"
)

// Kind identifies which name table an id belongs to.
type Kind string

const (
	KindWorld     Kind = "world"
	KindMap       Kind = "map"
	KindEvent     Kind = "event"
	KindObjective Kind = "objective"
)

// Kinds lists every table refreshed by the cache.
var Kinds = []Kind{KindWorld, KindMap, KindEvent, KindObjective}

// Source fetches one full id->name table in the given language.
type Source interface {
	FetchNames(ctx context.Context, kind Kind, lang string) (map[string]string, error)
}

// Cache keeps a thread-safe copy of every name table in memory.
type Cache struct {
	source Source
	lang   string
	logger *slog.Logger

	mu          sync.RWMutex
	tables      map[Kind]map[string]string
	refreshedAt time.Time
}

// NewCache constructs an empty Cache. Call Refresh before resolving.
func NewCache(source Source, lang string, logger *slog.Logger) *Cache {
	if lang == "" {
		lang = "en"
	}
	return &Cache{
		source: source,
		lang:   lang,
		logger: logger,
		tables: make(map[Kind]map[string]string),
	}
}

// ResolveName returns the display name for id, or false when the id is unknown.
func (c *Cache) ResolveName(kind Kind, id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name, ok := c.tables[kind][id]
	return name, ok
}

// IDs returns the known ids of one kind in sorted order.
func (c *Cache) IDs(kind Kind) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	table := c.tables[kind]
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RefreshedAt reports when the tables were last replaced.
func (c *Cache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// Refresh fetches every table and swaps them in together. On error the
// previous tables are kept.
func (c *Cache) Refresh(ctx context.Context) error {
	next := make(map[Kind]map[string]string, len(Kinds))
	for _, kind := range Kinds {
		table, err := c.source.FetchNames(ctx, kind, c.lang)
		if err != nil {
			return fmt.Errorf("refresh %s names: %w", kind, err)
		}
		next[kind] = table
	}

	c.mu.Lock()
	c.tables = next
	c.refreshedAt = time.Now()
	c.mu.Unlock()

	logging.Info(c.logger, "name cache refreshed",
		slog.String(logging.FieldLanguage, c.lang),
		slog.Int(logging.FieldCount, c.size()),
	)
	return nil
}

// Run refreshes on every tick until ctx is done.
func (c *Cache) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
				logging.Warn(c.logger, "name cache refresh failed", "error", err)
			}
		}
	}
}

func (c *Cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, table := range c.tables {
		n += len(table)
	}
	return n
}

// Static is a fixed resolver, handy for fixtures and tests.
type Static map[Kind]map[string]string

// ResolveName implements the resolver contract over the fixed tables.
func (s Static) ResolveName(kind Kind, id string) (string, bool) {
	name, ok := s[kind][id]
	return name, ok
}

// FetchNames lets a Static table act as a Source.
func (s Static) FetchNames(_ context.Context, kind Kind, _ string) (map[string]string, error) {
	out := make(map[string]string, len(s[kind]))
	for id, name := range s[kind] {
		out[id] = name
	}
	return out, nil
}
