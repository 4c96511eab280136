package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestAllow_WithinLimit(t *testing.T) {
	k := NewKeyed(map[string]int{"yargitay": 3}, 0)

	for i := 0; i < 3; i++ {
		if !k.Allow("yargitay") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if k.Allow("yargitay") {
		t.Fatal("request over the limit should be rejected")
	}
}

func TestAllow_WindowSlides(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	k := NewKeyed(map[string]int{"emsal": 2}, 0, WithClock(clock))

	if !k.Allow("emsal") || !k.Allow("emsal") {
		t.Fatal("first two requests should be allowed")
	}
	if k.Allow("emsal") {
		t.Fatal("third request in the same window should be rejected")
	}

	now = now.Add(61 * time.Second)
	if !k.Allow("emsal") {
		t.Fatal("request after the window expired should be allowed")
	}
}

func TestAllow_RejectedRequestNotRecorded(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	k := NewKeyed(map[string]int{"danistay": 1}, 0, WithClock(func() time.Time { return now }))

	k.Allow("danistay")
	for i := 0; i < 5; i++ {
		k.Allow("danistay")
	}

	// A single slot is taken; after the window slides one request fits again.
	now = now.Add(DefaultWindow + time.Second)
	if !k.Allow("danistay") {
		t.Fatal("rejections must not extend the window occupancy")
	}
}

func TestAllow_UnknownKeyUsesFallback(t *testing.T) {
	k := NewKeyed(map[string]int{"yargitay": 30}, 1)

	if !k.Allow("mystery") {
		t.Fatal("first request on unknown key should be allowed")
	}
	if k.Allow("mystery") {
		t.Fatal("second request should hit the fallback limit")
	}

	unlimited := NewKeyed(nil, 0)
	for i := 0; i < 100; i++ {
		if !unlimited.Allow("anything") {
			t.Fatal("zero fallback limit means unlimited")
		}
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	k := NewKeyed(map[string]int{"a": 1, "b": 1}, 0)

	if !k.Allow("a") || !k.Allow("b") {
		t.Fatal("each key has its own window")
	}
	if k.Allow("a") || k.Allow("b") {
		t.Fatal("each key should now be exhausted")
	}
}

func TestReset(t *testing.T) {
	k := NewKeyed(map[string]int{"a": 1}, 0)
	k.Allow("a")
	k.Reset()
	if !k.Allow("a") {
		t.Fatal("Reset should clear the window")
	}
}

func TestRemaining(t *testing.T) {
	k := NewKeyed(map[string]int{"a": 3}, 0)
	if got := k.Remaining("a"); got != 3 {
		t.Fatalf("Remaining = %d, want 3", got)
	}
	k.Allow("a")
	k.Allow("a")
	if got := k.Remaining("a"); got != 1 {
		t.Fatalf("Remaining = %d, want 1", got)
	}
	if got := k.Remaining("unlimited"); got != -1 {
		t.Fatalf("Remaining on unlimited key = %d, want -1", got)
	}
}

func TestAllow_Concurrent(t *testing.T) {
	const limit = 50
	k := NewKeyed(map[string]int{"a": limit}, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if k.Allow("a") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Fatalf("allowed %d concurrent requests, want exactly %d", allowed, limit)
	}
}
