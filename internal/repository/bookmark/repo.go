// Package bookmark persists per-user saved documents.
package bookmark

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/kararbul/kararbul/internal/domain"
)

// Bookmark is one saved document.
type Bookmark struct {
	DocumentID  string
	Title       string
	Institution string
	URL         string
	Note        string
	SavedAt     time.Time
}

// store is the consumer interface for bookmark operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
}

// Repo stores bookmarks as one hash per user, keyed by document id.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a bookmark repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// NewWithClock creates a bookmark repository with a fixed clock (test-only).
func NewWithClock(s store, now func() time.Time) *Repo {
	return &Repo{store: s, now: now}
}

func key(userID string) string {
	return "kararbul:bookmarks:" + userID
}

// Save upserts a bookmark. SavedAt is stamped here; a re-save of the same
// document refreshes it.
func (r *Repo) Save(ctx context.Context, userID string, b Bookmark) error {
	if b.DocumentID == "" {
		return fmt.Errorf("%w: document id required", domain.ErrInvalidQuery)
	}
	b.SavedAt = r.now().UTC()

	data, err := json.Marshal(fromBookmark(b))
	if err != nil {
		return fmt.Errorf("bookmark marshal: %w", err)
	}
	k := key(userID)
	if err := r.store.HSet(ctx, k, map[string]string{b.DocumentID: string(data)}); err != nil {
		return fmt.Errorf("bookmark HSET %s: %w", k, err)
	}
	return nil
}

// List returns the user's bookmarks, newest first. Rows that fail to decode
// are skipped.
func (r *Repo) List(ctx context.Context, userID string) ([]Bookmark, error) {
	k := key(userID)
	fields, err := r.store.HGetAll(ctx, k)
	if err != nil {
		return nil, fmt.Errorf("bookmark HGETALL %s: %w", k, err)
	}

	bookmarks := make([]Bookmark, 0, len(fields))
	for _, raw := range fields {
		var d bookmarkDTO
		if json.Unmarshal([]byte(raw), &d) != nil {
			continue
		}
		bookmarks = append(bookmarks, d.toBookmark())
	}
	sort.Slice(bookmarks, func(i, j int) bool {
		return bookmarks[i].SavedAt.After(bookmarks[j].SavedAt)
	})
	return bookmarks, nil
}

// Get returns one bookmark or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, userID, documentID string) (Bookmark, error) {
	k := key(userID)
	fields, err := r.store.HGetAll(ctx, k)
	if err != nil {
		return Bookmark{}, fmt.Errorf("bookmark HGETALL %s: %w", k, err)
	}
	raw, ok := fields[documentID]
	if !ok {
		return Bookmark{}, domain.ErrNotFound
	}
	var d bookmarkDTO
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Bookmark{}, fmt.Errorf("bookmark decode %s: %w", documentID, err)
	}
	return d.toBookmark(), nil
}

// Delete removes one bookmark. Returns domain.ErrNotFound when absent.
func (r *Repo) Delete(ctx context.Context, userID, documentID string) error {
	if _, err := r.Get(ctx, userID, documentID); err != nil {
		return err
	}
	k := key(userID)
	if err := r.store.HDel(ctx, k, documentID); err != nil {
		return fmt.Errorf("bookmark HDEL %s: %w", k, err)
	}
	return nil
}
