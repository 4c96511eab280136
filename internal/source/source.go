// Package source defines the per-institution retrieval capability and the
// raw record shape shared by every adapter.
package source

import (
	"context"
	"time"
)

// Filters carries the per-call retrieval hints forwarded to an institution.
type Filters struct {
	StartDate    time.Time
	EndDate      time.Time
	Department   string
	DocumentType string
	Page         int
	PageSize     int
}

// Record is a raw source record. Institutions disagree on field naming, so
// every known alias pair is carried side by side (generic name and the
// localized spelling the Turkish court APIs use); normalization picks the
// first populated one. Fields absent from a payload stay zero.
type Record struct {
	ID string `json:"id"`

	Title  string `json:"title"`
	Baslik string `json:"baslik"`

	Summary string `json:"summary"`
	Ozet    string `json:"ozet"`

	Content string `json:"content"`
	Icerik  string `json:"icerik"`

	Date  string `json:"date"`
	Tarih string `json:"tarih"`

	Department string `json:"department"`
	Daire      string `json:"daire"`

	DocumentType string `json:"documentType"`
	Turu         string `json:"turu"`

	URL string `json:"url"`

	RelevanceScore *float64 `json:"relevanceScore"`
	Score          *float64 `json:"score"`

	DavaNo   string   `json:"davaNo"`
	KararNo  string   `json:"kararNo"`
	Keywords []string `json:"keywords"`
}

// Envelope is the adapter result contract. Success=false means the data is
// not authoritative; Records may still hold synthetic fallback entries so
// the caller never has to show an empty page.
type Envelope struct {
	Success    bool
	Records    []Record
	TotalCount int
	Err        string
}

// Adapter retrieves records from one institution. Implementations absorb
// transport and decode failures locally, returning a failure envelope with
// fallback data instead of an error. The only errors returned are
// rate-limit rejections (domain.ErrRateLimited), which indicate caller
// misuse rather than an external fault.
type Adapter interface {
	// ID returns the institution identifier the adapter is bound to.
	ID() string
	// Search performs at most one outbound call for the given query text.
	Search(ctx context.Context, text string, f Filters) (Envelope, error)
}
