package search

import (
	"context"
	"time"

	"github.com/kararbul/kararbul/internal/source"
)

// AdapterResolver binds institution identifiers to source adapters.
// Unknown identifiers must resolve to a stub adapter, never nil.
type AdapterResolver interface {
	Resolve(id string) source.Adapter
}

// NameResolver maps institution identifiers to display names.
type NameResolver interface {
	DisplayName(id string) string
}

// HistoryEntry is one recorded search for a user's history.
type HistoryEntry struct {
	Query        string
	Institutions []string
	ResultCount  int
	ElapsedMS    int64
	At           time.Time
}

// HistoryWriter persists search history. The aggregator calls it
// best-effort: a write failure never affects the search response.
type HistoryWriter interface {
	Record(ctx context.Context, userID string, entry HistoryEntry) error
}
