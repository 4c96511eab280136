// Package httpapi implements source adapters backed by external HTTP search
// APIs. Every adapter issues at most one outbound call per Search, converts
// transport and decode failures into fallback envelopes locally, and checks
// its sliding-window rate limit before touching the network.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kararbul/kararbul/internal/ratelimit"
	"github.com/kararbul/kararbul/internal/source"
)

// UserAgent identifies this client to the institution APIs.
const UserAgent = "kararbul-search/1.0"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// Config holds the shared adapter wiring.
type Config struct {
	// BaseURL overrides the institution endpoint. Empty uses the default.
	BaseURL string
	// APIKey authenticates third-party search providers (Brave, Tavily).
	APIKey string
	// Timeout bounds the outbound call. Zero uses the adapter default.
	Timeout time.Duration
	// Limiter is the shared per-institution request window.
	Limiter *ratelimit.Keyed
	// Gen produces fallback records on failure.
	Gen *source.FallbackGenerator
	Logger *zap.Logger
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// decodeJSON reads a bounded response body into v, treating non-2xx statuses
// as errors.
func decodeJSON(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// failover builds the failure envelope with synthetic records. Adapters call
// it for every absorbed fault so the caller never receives an empty set.
func failover(
	gen *source.FallbackGenerator, logger *zap.Logger,
	instID, instName, text string, f source.Filters, cause error,
) source.Envelope {
	logger.Warn("institution call failed, using fallback data",
		zap.String("institution", instID),
		zap.Error(cause),
	)
	records := gen.Generate(instID, instName, text, f.PageSize)
	return source.Envelope{
		Success:    false,
		Records:    records,
		TotalCount: len(records),
		Err:        cause.Error(),
	}
}

func dateParam(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func pageOr(p, def int) int {
	if p <= 0 {
		return def
	}
	return p
}
