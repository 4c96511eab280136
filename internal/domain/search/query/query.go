// Package query defines the validated multi-institution search request.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/kararbul/kararbul/internal/domain"
	"github.com/kararbul/kararbul/internal/domain/search/sortkey"
)

// Search parameter limits.
const (
	MaxQueryLength  = 1024
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DateRange restricts results to decisions between Start and End (inclusive).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Filters narrows a search beyond the free-text query.
type Filters struct {
	DateRange    *DateRange
	DocumentType string
	Department   string
}

// Query is a validated search request.
type Query struct {
	text         string
	institutions []string
	filters      Filters
	page         int
	pageSize     int
	sortBy       sortkey.Key
	sortOrder    sortkey.Order
}

// New validates and normalizes search parameters.
// Defaults: page=1, pageSize=20 (capped at 100), sortBy=date, sortOrder=desc.
// The query text is trimmed and must be non-empty; institution ids are
// lowercased and deduplicated while preserving order.
func New(
	text string,
	institutions []string,
	filters Filters,
	page, pageSize int,
	sortBy sortkey.Key,
	sortOrder sortkey.Order,
) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, domain.ErrEmptyQuery
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if sortBy == "" {
		sortBy = sortkey.Date
	}
	if !sortBy.IsValid() {
		return Query{}, fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidQuery, sortBy)
	}
	if sortOrder == "" {
		sortOrder = sortkey.Desc
	}
	if !sortOrder.IsValid() {
		return Query{}, fmt.Errorf("%w: unknown sort order %q", domain.ErrInvalidQuery, sortOrder)
	}
	if fr := filters.DateRange; fr != nil && !fr.Start.IsZero() && !fr.End.IsZero() && fr.End.Before(fr.Start) {
		return Query{}, fmt.Errorf("%w: date range end before start", domain.ErrInvalidQuery)
	}

	seen := make(map[string]struct{}, len(institutions))
	ids := make([]string, 0, len(institutions))
	for _, id := range institutions {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return Query{
		text:         text,
		institutions: ids,
		filters:      filters,
		page:         page,
		pageSize:     pageSize,
		sortBy:       sortBy,
		sortOrder:    sortOrder,
	}, nil
}

// Text returns the trimmed query text.
func (q *Query) Text() string { return q.text }

// Institutions returns the deduplicated institution ids.
func (q *Query) Institutions() []string { return q.institutions }

// Filters returns the date/type/department filters.
func (q *Query) Filters() Filters { return q.filters }

// Page returns the 1-based page number.
func (q *Query) Page() int { return q.page }

// PageSize returns the page size.
func (q *Query) PageSize() int { return q.pageSize }

// SortBy returns the sort key.
func (q *Query) SortBy() sortkey.Key { return q.sortBy }

// SortOrder returns the sort direction.
func (q *Query) SortOrder() sortkey.Order { return q.sortOrder }
