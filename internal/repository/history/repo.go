// Package history persists a capped per-user list of recent searches.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kararbul/kararbul/internal/usecase/search"
)

// DefaultMaxEntries is how many searches are kept per user.
const DefaultMaxEntries = 50

// store is the consumer interface for history operations (ISP).
type store interface {
	LPush(ctx context.Context, key string, values ...[]byte) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
}

// Repo stores search history as a capped Redis list, newest first.
type Repo struct {
	store      store
	maxEntries int64
}

// New creates a history repository. maxEntries <= 0 uses DefaultMaxEntries.
func New(s store, maxEntries int) *Repo {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Repo{store: s, maxEntries: int64(maxEntries)}
}

func key(userID string) string {
	return "kararbul:history:" + userID
}

// Record prepends one search to the user's history and trims to the cap.
func (r *Repo) Record(ctx context.Context, userID string, e search.HistoryEntry) error {
	data, err := json.Marshal(fromEntry(e))
	if err != nil {
		return fmt.Errorf("history marshal: %w", err)
	}
	k := key(userID)
	if err := r.store.LPush(ctx, k, data); err != nil {
		return fmt.Errorf("history LPUSH %s: %w", k, err)
	}
	if err := r.store.LTrim(ctx, k, 0, r.maxEntries-1); err != nil {
		return fmt.Errorf("history LTRIM %s: %w", k, err)
	}
	return nil
}

// Recent returns up to limit searches, newest first. Entries that fail to
// decode are skipped rather than failing the whole read.
func (r *Repo) Recent(ctx context.Context, userID string, limit int) ([]search.HistoryEntry, error) {
	if limit <= 0 || int64(limit) > r.maxEntries {
		limit = int(r.maxEntries)
	}
	k := key(userID)
	rows, err := r.store.LRange(ctx, k, 0, int64(limit)-1)
	if err != nil {
		return nil, fmt.Errorf("history LRANGE %s: %w", k, err)
	}

	entries := make([]search.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		var d entryDTO
		if json.Unmarshal(row, &d) != nil {
			continue
		}
		entries = append(entries, d.toEntry())
	}
	return entries, nil
}
