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
	emsalID      = "emsal"
	emsalName    = "Emsal (UYAP)"
	emsalBaseURL = "https://emsal.uyap.gov.tr"
	emsalTimeout = 25 * time.Second
)

// Emsal searches the UYAP precedent decision system.
type Emsal struct {
	client  *http.Client
	baseURL string
	limiter *ratelimit.Keyed
	gen     *source.FallbackGenerator
	logger  *zap.Logger
}

var _ source.Adapter = (*Emsal)(nil)

// NewEmsal creates the Emsal adapter.
func NewEmsal(cfg Config) *Emsal {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = emsalBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = emsalTimeout
	}
	return &Emsal{
		client:  newClient(timeout),
		baseURL: baseURL,
		limiter: cfg.Limiter,
		gen:     cfg.Gen,
		logger:  cfg.logger(),
	}
}

// ID implements source.Adapter.
func (a *Emsal) ID() string { return emsalID }

type emsalSearchResponse struct {
	Hits  []source.Record `json:"hits"`
	Total int             `json:"total"`
	Took  int             `json:"took"`
}

// Search implements source.Adapter.
func (a *Emsal) Search(ctx context.Context, text string, f source.Filters) (source.Envelope, error) {
	if !a.limiter.Allow(emsalID) {
		return source.Envelope{}, fmt.Errorf("%s: %w", emsalID, domain.ErrRateLimited)
	}

	params := url.Values{}
	params.Set("q", text)
	if s := dateParam(f.StartDate); s != "" {
		params.Set("start_date", s)
	}
	if e := dateParam(f.EndDate); e != "" {
		params.Set("end_date", e)
	}
	if f.Department != "" {
		params.Set("court", f.Department)
	}
	params.Set("page", strconv.Itoa(pageOr(f.Page, 1)))
	params.Set("size", strconv.Itoa(pageOr(f.PageSize, 20)))

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, a.baseURL+"/api/v1/search?"+params.Encode(), nil,
	)
	if err != nil {
		return failover(a.gen, a.logger, emsalID, emsalName, text, f, err), nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return failover(a.gen, a.logger, emsalID, emsalName, text, f, err), nil
	}

	var decoded emsalSearchResponse
	if err := decodeJSON(resp, &decoded); err != nil {
		return failover(a.gen, a.logger, emsalID, emsalName, text, f, err), nil
	}

	return source.Envelope{
		Success:    true,
		Records:    decoded.Hits,
		TotalCount: decoded.Total,
	}, nil
}
