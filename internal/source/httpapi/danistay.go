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
	danistayID      = "danistay"
	danistayName    = "Danıştay"
	danistayBaseURL = "https://www.danistay.gov.tr"
	danistayTimeout = 30 * time.Second
)

// Danistay searches the council of state decision archive.
type Danistay struct {
	client  *http.Client
	baseURL string
	limiter *ratelimit.Keyed
	gen     *source.FallbackGenerator
	logger  *zap.Logger
}

var _ source.Adapter = (*Danistay)(nil)

// NewDanistay creates the Danıştay adapter.
func NewDanistay(cfg Config) *Danistay {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = danistayBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = danistayTimeout
	}
	return &Danistay{
		client:  newClient(timeout),
		baseURL: baseURL,
		limiter: cfg.Limiter,
		gen:     cfg.Gen,
		logger:  cfg.logger(),
	}
}

// ID implements source.Adapter.
func (a *Danistay) ID() string { return danistayID }

type danistaySearchRequest struct {
	AramaTerimi     string `json:"aramaTerimi"`
	BaslangicTarihi string `json:"baslangicTarihi"`
	BitisTarihi     string `json:"bitisTarihi"`
	Daire           string `json:"daire"`
	Sayfa           int    `json:"sayfa"`
	KayitSayisi     int    `json:"kayitSayisi"`
}

type danistaySearchResponse struct {
	Kararlar     []source.Record `json:"kararlar"`
	ToplamSayisi int             `json:"toplamSayisi"`
}

// Search implements source.Adapter.
func (a *Danistay) Search(ctx context.Context, text string, f source.Filters) (source.Envelope, error) {
	if !a.limiter.Allow(danistayID) {
		return source.Envelope{}, fmt.Errorf("%s: %w", danistayID, domain.ErrRateLimited)
	}

	body, err := json.Marshal(danistaySearchRequest{
		AramaTerimi:     text,
		BaslangicTarihi: dateParam(f.StartDate),
		BitisTarihi:     dateParam(f.EndDate),
		Daire:           f.Department,
		Sayfa:           pageOr(f.Page, 1),
		KayitSayisi:     pageOr(f.PageSize, 20),
	})
	if err != nil {
		return failover(a.gen, a.logger, danistayID, danistayName, text, f, err), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/kararlar/arama", bytes.NewReader(body))
	if err != nil {
		return failover(a.gen, a.logger, danistayID, danistayName, text, f, err), nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return failover(a.gen, a.logger, danistayID, danistayName, text, f, err), nil
	}

	var decoded danistaySearchResponse
	if err := decodeJSON(resp, &decoded); err != nil {
		return failover(a.gen, a.logger, danistayID, danistayName, text, f, err), nil
	}

	return source.Envelope{
		Success:    true,
		Records:    decoded.Kararlar,
		TotalCount: decoded.ToplamSayisi,
	}, nil
}
