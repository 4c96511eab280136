package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kararbul/kararbul/internal/domain"
	"github.com/kararbul/kararbul/internal/ratelimit"
	"github.com/kararbul/kararbul/internal/source"
)

const (
	tavilyInstID   = "bddk"
	tavilyInstName = "BDDK"
	tavilyBaseURL  = "https://api.tavily.com"
	tavilyTimeout  = 25 * time.Second
	tavilySite     = "bddk.org.tr"
)

// Tavily searches BDDK regulatory decisions through the Tavily search API,
// scoped to the institution's domain.
type Tavily struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.Keyed
	gen     *source.FallbackGenerator
	logger  *zap.Logger
}

var _ source.Adapter = (*Tavily)(nil)

// NewTavily creates the Tavily-backed BDDK adapter.
func NewTavily(cfg Config) *Tavily {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = tavilyBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = tavilyTimeout
	}
	return &Tavily{
		client:  newClient(timeout),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		limiter: cfg.Limiter,
		gen:     cfg.Gen,
		logger:  cfg.logger(),
	}
}

// ID implements source.Adapter.
func (a *Tavily) ID() string { return tavilyInstID }

type tavilySearchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	IncludeAnswer  bool     `json:"include_answer"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type tavilySearchResponse struct {
	Results []tavilyResult `json:"results"`
}

// Search implements source.Adapter.
func (a *Tavily) Search(ctx context.Context, text string, f source.Filters) (source.Envelope, error) {
	if !a.limiter.Allow(tavilyInstID) {
		return source.Envelope{}, fmt.Errorf("%s: %w", tavilyInstID, domain.ErrRateLimited)
	}
	if a.apiKey == "" {
		cause := fmt.Errorf("tavily api key not configured: %w", domain.ErrSourceUnavailable)
		return failover(a.gen, a.logger, tavilyInstID, tavilyInstName, text, f, cause), nil
	}

	body, err := json.Marshal(tavilySearchRequest{
		APIKey:         a.apiKey,
		Query:          "site:" + tavilySite + " " + text,
		SearchDepth:    "advanced",
		MaxResults:     pageOr(f.PageSize, 20),
		IncludeDomains: []string{tavilySite},
	})
	if err != nil {
		return failover(a.gen, a.logger, tavilyInstID, tavilyInstName, text, f, err), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return failover(a.gen, a.logger, tavilyInstID, tavilyInstName, text, f, err), nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return failover(a.gen, a.logger, tavilyInstID, tavilyInstName, text, f, err), nil
	}

	var decoded tavilySearchResponse
	if err := decodeJSON(resp, &decoded); err != nil {
		return failover(a.gen, a.logger, tavilyInstID, tavilyInstName, text, f, err), nil
	}

	records := make([]source.Record, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		score := r.Score
		records = append(records, source.Record{
			Title:        r.Title,
			Summary:      r.Content,
			URL:          r.URL,
			DocumentType: "Kurul Kararı",
			Score:        &score,
		})
	}

	return source.Envelope{
		Success:    true,
		Records:    records,
		TotalCount: len(records),
	}, nil
}
