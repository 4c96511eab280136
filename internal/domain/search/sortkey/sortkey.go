// Package sortkey defines how merged search results are ordered.
package sortkey

// Key is the field results are sorted on.
type Key string

// Sort key constants.
const (
	// Date orders results by decision date.
	Date Key = "date"
	// Relevance orders results by relevance score.
	Relevance Key = "relevance"
)

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	return k == Date || k == Relevance
}

// Order is the sort direction.
type Order string

// Sort order constants.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// IsValid checks if the order is one of the supported values.
func (o Order) IsValid() bool {
	return o == Asc || o == Desc
}
