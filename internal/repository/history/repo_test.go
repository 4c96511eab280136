package history

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kararbul/kararbul/internal/usecase/search"
)

// fakeStore keeps lists in memory and records trim calls.
type fakeStore struct {
	lists map[string][][]byte
	trims []int64
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{lists: make(map[string][][]byte)}
}

func (f *fakeStore) LPush(_ context.Context, key string, values ...[]byte) error {
	if f.err != nil {
		return f.err
	}
	for _, v := range values {
		f.lists[key] = append([][]byte{v}, f.lists[key]...)
	}
	return nil
}

func (f *fakeStore) LRange(_ context.Context, key string, start, stop int64) ([][]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	l := f.lists[key]
	if start >= int64(len(l)) {
		return nil, nil
	}
	if stop >= int64(len(l)) {
		stop = int64(len(l)) - 1
	}
	return l[start : stop+1], nil
}

func (f *fakeStore) LTrim(_ context.Context, key string, start, stop int64) error {
	if f.err != nil {
		return f.err
	}
	f.trims = append(f.trims, stop)
	l := f.lists[key]
	if stop < int64(len(l))-1 {
		f.lists[key] = l[start : stop+1]
	}
	return nil
}

func entry(q string, n int) search.HistoryEntry {
	return search.HistoryEntry{
		Query:        q,
		Institutions: []string{"yargitay"},
		ResultCount:  n,
		ElapsedMS:    120,
		At:           time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRecordAndRecent(t *testing.T) {
	fs := newFakeStore()
	repo := New(fs, 10)

	ctx := context.Background()
	if err := repo.Record(ctx, "u1", entry("tazminat", 5)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := repo.Record(ctx, "u1", entry("iptal", 3)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := repo.Recent(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Query != "iptal" || got[1].Query != "tazminat" {
		t.Errorf("expected newest first, got %q then %q", got[0].Query, got[1].Query)
	}
	if got[0].ResultCount != 3 || got[0].ElapsedMS != 120 {
		t.Errorf("entry fields lost: %+v", got[0])
	}
	if !got[0].At.Equal(entry("", 0).At) {
		t.Errorf("timestamp not round-tripped: %v", got[0].At)
	}
}

func TestRecordTrimsToCap(t *testing.T) {
	fs := newFakeStore()
	repo := New(fs, 3)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := repo.Record(ctx, "u1", entry("q", i)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if len(fs.lists[key("u1")]) != 3 {
		t.Fatalf("expected list capped at 3, got %d", len(fs.lists[key("u1")]))
	}
	for _, stop := range fs.trims {
		if stop != 2 {
			t.Errorf("expected trim stop index 2, got %d", stop)
		}
	}
}

func TestUsersAreIsolated(t *testing.T) {
	fs := newFakeStore()
	repo := New(fs, 10)

	ctx := context.Background()
	_ = repo.Record(ctx, "u1", entry("a", 1))
	_ = repo.Record(ctx, "u2", entry("b", 2))

	got, err := repo.Recent(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Query != "a" {
		t.Fatalf("u1 history leaked: %+v", got)
	}
}

func TestRecentSkipsCorruptRows(t *testing.T) {
	fs := newFakeStore()
	repo := New(fs, 10)

	ctx := context.Background()
	_ = repo.Record(ctx, "u1", entry("ok", 1))
	fs.lists[key("u1")] = append(fs.lists[key("u1")], []byte("{not json"))

	got, err := repo.Recent(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Query != "ok" {
		t.Fatalf("expected corrupt row skipped, got %+v", got)
	}
}

func TestRecordStoreError(t *testing.T) {
	fs := newFakeStore()
	fs.err = errors.New("down")
	repo := New(fs, 10)

	if err := repo.Record(context.Background(), "u1", entry("q", 1)); err == nil {
		t.Fatal("expected error")
	}
}

func TestStoredShapeIsStable(t *testing.T) {
	fs := newFakeStore()
	repo := New(fs, 10)

	_ = repo.Record(context.Background(), "u1", entry("tazminat", 5))
	var raw map[string]any
	if err := json.Unmarshal(fs.lists[key("u1")][0], &raw); err != nil {
		t.Fatalf("stored row is not JSON: %v", err)
	}
	for _, field := range []string{"query", "institutions", "resultCount", "elapsedMs", "at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("stored row missing %q", field)
		}
	}
}
