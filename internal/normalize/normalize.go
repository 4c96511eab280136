// Package normalize maps heterogeneous raw source records onto the common
// result shape. Field mapping is a pure function of the record's aliases and
// the fixed defaults; only the fallbacks for missing dates and scores pull
// from the injected clock and score source.
package normalize

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kararbul/kararbul/internal/domain/search/result"
	"github.com/kararbul/kararbul/internal/source"
)

// Defaults substituted when neither field alias is populated.
const (
	DefaultTitle        = "Başlık bulunamadı"
	DefaultSummary      = "Özet bulunamadı"
	DefaultDocumentType = "Belge"
)

// Normalizer converts source records to results.
type Normalizer struct {
	now   func() time.Time
	score func() float64
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the default-date source.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithScoreSource overrides the default-relevance source. Values must lie in
// [0,1). A real-data adapter should supply genuine scores; this fallback only
// exists because synthetic records carry no authoritative relevance signal.
func WithScoreSource(score func() float64) Option {
	return func(n *Normalizer) { n.score = score }
}

// New creates a Normalizer. Defaults: wall clock and a seeded pseudo-random
// score source.
func New(opts ...Option) *Normalizer {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	n := &Normalizer{
		now:   time.Now,
		score: rng.Float64,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Record maps one raw record to a result. seq disambiguates generated ids
// within a response.
func (n *Normalizer) Record(instID, instName string, seq int, rec source.Record) result.Result {
	id := rec.ID
	if id == "" {
		id = fmt.Sprintf("%s-%d-%d", instID, n.now().Unix(), seq)
	}

	date := n.parseDate(firstOf(rec.Date, rec.Tarih))

	var score float64
	switch {
	case rec.RelevanceScore != nil:
		score = *rec.RelevanceScore
	case rec.Score != nil:
		score = *rec.Score
	default:
		score = n.score()
	}

	return result.New(
		id,
		firstOf(rec.Title, rec.Baslik, DefaultTitle),
		instName,
		firstOf(rec.Department, rec.Daire),
		date,
		firstOf(rec.Summary, rec.Ozet, DefaultSummary),
		firstOf(rec.Content, rec.Icerik),
		firstOf(rec.DocumentType, rec.Turu, DefaultDocumentType),
		rec.URL,
		score,
		result.Metadata{
			CaseNumber:     rec.DavaNo,
			DecisionNumber: rec.KararNo,
			Keywords:       rec.Keywords,
		},
	)
}

// Records maps a batch of raw records for one institution.
func (n *Normalizer) Records(instID, instName string, recs []source.Record) []result.Result {
	out := make([]result.Result, 0, len(recs))
	for i, rec := range recs {
		out = append(out, n.Record(instID, instName, i, rec))
	}
	return out
}

// parseDate accepts RFC 3339 or plain dates; anything else defaults to now.
func (n *Normalizer) parseDate(s string) time.Time {
	if s == "" {
		return n.now()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return n.now()
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
