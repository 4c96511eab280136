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
	yargitayID      = "yargitay"
	yargitayName    = "Yargıtay"
	yargitayBaseURL = "https://karararama.yargitay.gov.tr"
	// The decision archive is flaky behind its WAF; keep the timeout short
	// and fall back quickly.
	yargitayTimeout = 3 * time.Second
)

// Yargitay searches the court of cassation decision archive.
type Yargitay struct {
	client  *http.Client
	baseURL string
	limiter *ratelimit.Keyed
	gen     *source.FallbackGenerator
	logger  *zap.Logger
}

var _ source.Adapter = (*Yargitay)(nil)

// NewYargitay creates the Yargıtay adapter.
func NewYargitay(cfg Config) *Yargitay {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = yargitayBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = yargitayTimeout
	}
	return &Yargitay{
		client:  newClient(timeout),
		baseURL: baseURL,
		limiter: cfg.Limiter,
		gen:     cfg.Gen,
		logger:  cfg.logger(),
	}
}

// ID implements source.Adapter.
func (a *Yargitay) ID() string { return yargitayID }

type yargitaySearchRequest struct {
	ArananKelime    string `json:"arananKelime"`
	BaslangicTarihi string `json:"baslangicTarihi"`
	BitisTarihi     string `json:"bitisTarihi"`
	Daire           string `json:"daire"`
	Sayfa           int    `json:"sayfa"`
	KayitSayisi     int    `json:"kayitSayisi"`
}

type yargitaySearchResponse struct {
	Results    []source.Record `json:"results"`
	TotalCount int             `json:"totalCount"`
}

// Search implements source.Adapter.
func (a *Yargitay) Search(ctx context.Context, text string, f source.Filters) (source.Envelope, error) {
	if !a.limiter.Allow(yargitayID) {
		return source.Envelope{}, fmt.Errorf("%s: %w", yargitayID, domain.ErrRateLimited)
	}

	body, err := json.Marshal(yargitaySearchRequest{
		ArananKelime:    text,
		BaslangicTarihi: dateParam(f.StartDate),
		BitisTarihi:     dateParam(f.EndDate),
		Daire:           f.Department,
		Sayfa:           pageOr(f.Page, 1),
		KayitSayisi:     pageOr(f.PageSize, 20),
	})
	if err != nil {
		return failover(a.gen, a.logger, yargitayID, yargitayName, text, f, err), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/arama", bytes.NewReader(body))
	if err != nil {
		return failover(a.gen, a.logger, yargitayID, yargitayName, text, f, err), nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return failover(a.gen, a.logger, yargitayID, yargitayName, text, f, err), nil
	}

	var decoded yargitaySearchResponse
	if err := decodeJSON(resp, &decoded); err != nil {
		return failover(a.gen, a.logger, yargitayID, yargitayName, text, f, err), nil
	}

	total := decoded.TotalCount
	if total == 0 {
		total = len(decoded.Results)
	}
	return source.Envelope{
		Success:    true,
		Records:    decoded.Results,
		TotalCount: total,
	}, nil
}
