package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kararbul/kararbul/internal/domain"
	"github.com/kararbul/kararbul/internal/ratelimit"
	"github.com/kararbul/kararbul/internal/source"
)

const (
	braveInstID   = "kvkk"
	braveInstName = "KVKK"
	braveBaseURL  = "https://api.search.brave.com"
	braveTimeout  = 20 * time.Second
	braveSite     = "kvkk.gov.tr"
)

// Brave searches KVKK board decisions through the Brave web search API,
// scoped to the institution's domain.
type Brave struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.Keyed
	gen     *source.FallbackGenerator
	logger  *zap.Logger
}

var _ source.Adapter = (*Brave)(nil)

// NewBrave creates the Brave-backed KVKK adapter.
func NewBrave(cfg Config) *Brave {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = braveBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = braveTimeout
	}
	return &Brave{
		client:  newClient(timeout),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		limiter: cfg.Limiter,
		gen:     cfg.Gen,
		logger:  cfg.logger(),
	}
}

// ID implements source.Adapter.
func (a *Brave) ID() string { return braveInstID }

type braveWebResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PageAge     string `json:"page_age"`
}

type braveSearchResponse struct {
	Web struct {
		Results    []braveWebResult `json:"results"`
		TotalCount int              `json:"total_count"`
	} `json:"web"`
}

// Search implements source.Adapter.
func (a *Brave) Search(ctx context.Context, text string, f source.Filters) (source.Envelope, error) {
	if !a.limiter.Allow(braveInstID) {
		return source.Envelope{}, fmt.Errorf("%s: %w", braveInstID, domain.ErrRateLimited)
	}
	if a.apiKey == "" {
		cause := fmt.Errorf("brave api key not configured: %w", domain.ErrSourceUnavailable)
		return failover(a.gen, a.logger, braveInstID, braveInstName, text, f, cause), nil
	}

	pageSize := pageOr(f.PageSize, 20)
	params := url.Values{}
	params.Set("q", "site:"+braveSite+" "+text)
	params.Set("count", strconv.Itoa(pageSize))
	params.Set("offset", strconv.Itoa((pageOr(f.Page, 1)-1)*pageSize))
	params.Set("country", "TR")
	params.Set("search_lang", "tr")

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, a.baseURL+"/res/v1/web/search?"+params.Encode(), nil,
	)
	if err != nil {
		return failover(a.gen, a.logger, braveInstID, braveInstName, text, f, err), nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", a.apiKey)
	req.Header.Set("User-Agent", UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return failover(a.gen, a.logger, braveInstID, braveInstName, text, f, err), nil
	}

	var decoded braveSearchResponse
	if err := decodeJSON(resp, &decoded); err != nil {
		return failover(a.gen, a.logger, braveInstID, braveInstName, text, f, err), nil
	}

	records := make([]source.Record, 0, len(decoded.Web.Results))
	for _, r := range decoded.Web.Results {
		records = append(records, source.Record{
			Title:        r.Title,
			Summary:      r.Description,
			URL:          r.URL,
			Date:         r.PageAge,
			DocumentType: "Kurul Kararı",
		})
	}

	total := decoded.Web.TotalCount
	if total == 0 {
		total = len(records)
	}
	return source.Envelope{
		Success:    true,
		Records:    records,
		TotalCount: total,
	}, nil
}
