// Package result defines the normalized cross-institution search hit.
package result

import "time"

// Metadata carries source-specific document identifiers.
type Metadata struct {
	CaseNumber     string
	DecisionNumber string
	Keywords       []string
}

// Result is a single normalized search hit. Constructed once per raw record
// at response time and never mutated after the merge.
type Result struct {
	id           string
	title        string
	institution  string
	department   string
	date         time.Time
	summary      string
	content      string
	documentType string
	url          string
	score        float64
	metadata     Metadata
}

// New creates a normalized search result.
func New(
	id, title, institution, department string,
	date time.Time,
	summary, content, documentType, url string,
	score float64,
	metadata Metadata,
) Result {
	return Result{
		id: id, title: title, institution: institution, department: department,
		date: date, summary: summary, content: content,
		documentType: documentType, url: url, score: score, metadata: metadata,
	}
}

// ID returns the result identifier, unique within a response.
func (r *Result) ID() string { return r.id }

// Title returns the document title.
func (r *Result) Title() string { return r.title }

// Institution returns the source institution display name.
func (r *Result) Institution() string { return r.institution }

// Department returns the ruling chamber or department, if any.
func (r *Result) Department() string { return r.department }

// Date returns the decision date.
func (r *Result) Date() time.Time { return r.date }

// Summary returns the document summary.
func (r *Result) Summary() string { return r.summary }

// Content returns the full document text, if the source supplied one.
func (r *Result) Content() string { return r.content }

// DocumentType returns the document type label.
func (r *Result) DocumentType() string { return r.documentType }

// URL returns the source document link, if any.
func (r *Result) URL() string { return r.url }

// Score returns the relevance score in [0,1).
func (r *Result) Score() float64 { return r.score }

// Metadata returns the case/decision identifiers and keywords.
func (r *Result) Metadata() Metadata { return r.metadata }
