package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kararbul/kararbul/internal/domain"
	"github.com/kararbul/kararbul/internal/ratelimit"
	"github.com/kararbul/kararbul/internal/source"
)

func testConfig(t *testing.T, baseURL string, limits map[string]int) Config {
	t.Helper()
	return Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
		Limiter: ratelimit.NewKeyed(limits, 0),
		Gen: source.NewFallbackGenerator(source.FixedSeed(42), func() time.Time {
			return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
		}),
	}
}

func TestYargitay_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/arama" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["arananKelime"] != "tazminat" {
			t.Errorf("arananKelime = %v", req["arananKelime"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": "y-1", "baslik": "Karar başlığı", "ozet": "Karar özeti", "tarih": "2025-06-01T00:00:00Z"},
			},
			"totalCount": 1,
		})
	}))
	defer srv.Close()

	a := NewYargitay(testConfig(t, srv.URL, nil))
	env, err := a.Search(context.Background(), "tazminat", source.Filters{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.Success {
		t.Fatal("expected success envelope")
	}
	if len(env.Records) != 1 || env.Records[0].Baslik != "Karar başlığı" {
		t.Fatalf("unexpected records: %+v", env.Records)
	}
	if env.TotalCount != 1 {
		t.Fatalf("TotalCount = %d, want 1", env.TotalCount)
	}
}

func TestYargitay_FallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := NewYargitay(testConfig(t, srv.URL, nil))
	env, err := a.Search(context.Background(), "tazminat", source.Filters{})
	if err != nil {
		t.Fatalf("transport faults must be absorbed, got error: %v", err)
	}
	if env.Success {
		t.Fatal("failure envelope expected")
	}
	if len(env.Records) == 0 {
		t.Fatal("failure envelope must carry fallback records")
	}
	if env.Err == "" {
		t.Fatal("failure envelope must carry the cause")
	}
}

func TestYargitay_RateLimited(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	a := NewYargitay(testConfig(t, srv.URL, map[string]int{"yargitay": 1}))

	if _, err := a.Search(context.Background(), "tazminat", source.Filters{}); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}
	_, err := a.Search(context.Background(), "tazminat", source.Filters{})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("rate-limited call must not reach the network, got %d calls", calls)
	}
}

func TestDanistay_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/kararlar/arama" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"kararlar": []map[string]any{
				{"id": "d-1", "baslik": "İptal kararı", "daire": "5. Daire"},
				{"id": "d-2", "baslik": "Görüş", "daire": "1. Daire"},
			},
			"toplamSayisi": 12,
		})
	}))
	defer srv.Close()

	a := NewDanistay(testConfig(t, srv.URL, nil))
	env, err := a.Search(context.Background(), "iptal", source.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.Success || len(env.Records) != 2 || env.TotalCount != 12 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Records[0].Daire != "5. Daire" {
		t.Fatalf("daire = %q", env.Records[0].Daire)
	}
}

func TestEmsal_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "kira" {
			t.Errorf("q = %q", q.Get("q"))
		}
		if q.Get("size") != "5" {
			t.Errorf("size = %q", q.Get("size"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits":  []map[string]any{{"id": "e-1", "title": "Emsal karar"}},
			"total": 40,
			"took":  12,
		})
	}))
	defer srv.Close()

	a := NewEmsal(testConfig(t, srv.URL, nil))
	env, err := a.Search(context.Background(), "kira", source.Filters{Page: 1, PageSize: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.Success || env.TotalCount != 40 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Records[0].Title != "Emsal karar" {
		t.Fatalf("title = %q", env.Records[0].Title)
	}
}

func TestBrave_MapsWebResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Subscription-Token"); got != "test-key" {
			t.Errorf("subscription token = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"web": map[string]any{
				"results": []map[string]any{
					{"title": "KVKK Kurul Kararı", "url": "https://kvkk.gov.tr/k/1", "description": "Veri ihlali"},
				},
				"total_count": 3,
			},
		})
	}))
	defer srv.Close()

	a := NewBrave(testConfig(t, srv.URL, nil))
	env, err := a.Search(context.Background(), "veri ihlali", source.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.Success || env.TotalCount != 3 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	rec := env.Records[0]
	if rec.Title != "KVKK Kurul Kararı" || rec.Summary != "Veri ihlali" || rec.URL == "" {
		t.Fatalf("unexpected record mapping: %+v", rec)
	}
}

func TestBrave_MissingKeyFallsBack(t *testing.T) {
	cfg := testConfig(t, "http://localhost:0", nil)
	cfg.APIKey = ""
	a := NewBrave(cfg)

	env, err := a.Search(context.Background(), "veri", source.Filters{})
	if err != nil {
		t.Fatalf("missing key must be absorbed: %v", err)
	}
	if env.Success || len(env.Records) == 0 {
		t.Fatal("expected failure envelope with fallback records")
	}
}

func TestTavily_MapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tavilySearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.APIKey != "test-key" {
			t.Errorf("api_key = %q", req.APIKey)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "BDDK Kararı", "url": "https://bddk.org.tr/k/9", "content": "Bankacılık düzenlemesi", "score": 0.8},
			},
		})
	}))
	defer srv.Close()

	a := NewTavily(testConfig(t, srv.URL, nil))
	env, err := a.Search(context.Background(), "bankacılık", source.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.Success || len(env.Records) != 1 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	rec := env.Records[0]
	if rec.Score == nil || *rec.Score != 0.8 {
		t.Fatalf("score not mapped: %+v", rec)
	}
}
