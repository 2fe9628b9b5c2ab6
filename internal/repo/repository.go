package repo

import (
	"context"

	"github.com/hamed0406/statusnotifier/internal/domain"
)

// UptimeStore persists the full set of uptime counters, keyed by target name.
// Ports (interfaces): the file store is the default, postgres when configured.
type UptimeStore interface {
	// Load returns an empty map and no error when nothing was stored yet.
	Load(ctx context.Context) (map[string]domain.UptimeCounter, error)
	// Save replaces the stored set with counters.
	Save(ctx context.Context, counters map[string]domain.UptimeCounter) error
}

// Clone copies a counter set so callers never share maps with a store.
func Clone(in map[string]domain.UptimeCounter) map[string]domain.UptimeCounter {
	out := make(map[string]domain.UptimeCounter, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
