package server

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/gw2-watcher/internal/providers"
)

// normalizeProviderName returns a lower-cased provider name, deriving from instance when not explicitly configured.
// Used to keep naming consistent in metrics/logs.
func normalizeProviderName(raw string, source providers.DataSource) string {
	if raw != "" {
		return strings.ToLower(raw)
	}
	if source != nil {
		return strings.ToLower(fmt.Sprintf("%T", source))
	}
	return "provider"
}
