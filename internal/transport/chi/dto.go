package chi

import "time"

// ErrorCode identifies the error class in API responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeValidationFailed  ErrorCode = "validation_failed"
	CodeNotFound          ErrorCode = "not_found"
	CodeRateLimited       ErrorCode = "rate_limited"
	CodeSourceUnavailable ErrorCode = "source_unavailable"
	CodeLLMUnavailable    ErrorCode = "llm_unavailable"
	CodeNotImplemented    ErrorCode = "not_implemented"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /v1/search body. Dates use YYYY-MM-DD.
type SearchRequest struct {
	Query        string   `json:"query"`
	Institutions []string `json:"institutions,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	DocumentType string   `json:"documentType,omitempty"`
	Department   string   `json:"department,omitempty"`
	Page         int      `json:"page,omitempty"`
	PageSize     int      `json:"pageSize,omitempty"`
	SortBy       string   `json:"sortBy,omitempty"`
	SortOrder    string   `json:"sortOrder,omitempty"`
}

// ResultMetadata carries case identifiers and keywords.
type ResultMetadata struct {
	CaseNumber     string   `json:"caseNumber,omitempty"`
	DecisionNumber string   `json:"decisionNumber,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

// SearchResultItem is one normalized document in a search response.
type SearchResultItem struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Institution  string          `json:"institution"`
	Department   string          `json:"department,omitempty"`
	Date         time.Time       `json:"date"`
	Summary      string          `json:"summary"`
	Content      string          `json:"content,omitempty"`
	DocumentType string          `json:"documentType"`
	URL          string          `json:"url,omitempty"`
	Score        float64         `json:"score"`
	Metadata     *ResultMetadata `json:"metadata,omitempty"`
}

// SearchDiagnostics reports per-institution outcomes for one search.
type SearchDiagnostics struct {
	Succeeded            []string `json:"succeeded"`
	RateLimited          []string `json:"rateLimited"`
	FallbackCount        int      `json:"fallbackCount"`
	InstitutionsSearched int      `json:"institutionsSearched"`
}

// SearchResponse is the POST /v1/search reply.
type SearchResponse struct {
	Results     []SearchResultItem `json:"results"`
	TotalCount  int                `json:"totalCount"`
	Page        int                `json:"page"`
	PageSize    int                `json:"pageSize"`
	HasMore     bool               `json:"hasMore"`
	ElapsedMS   int64              `json:"elapsedMs"`
	Diagnostics SearchDiagnostics  `json:"diagnostics"`
}

// InstitutionItem describes one searchable institution.
type InstitutionItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	DocumentTypes []string `json:"documentTypes,omitempty"`
	Active        bool     `json:"active"`
}

// InstitutionsResponse is the GET /v1/institutions reply.
type InstitutionsResponse struct {
	Institutions []InstitutionItem `json:"institutions"`
}

// HistoryItem is one recorded search.
type HistoryItem struct {
	Query        string    `json:"query"`
	Institutions []string  `json:"institutions"`
	ResultCount  int       `json:"resultCount"`
	ElapsedMS    int64     `json:"elapsedMs"`
	At           time.Time `json:"at"`
}

// HistoryResponse is the GET /v1/history reply.
type HistoryResponse struct {
	Searches []HistoryItem `json:"searches"`
}

// BookmarkRequest is the POST /v1/bookmarks body.
type BookmarkRequest struct {
	DocumentID  string `json:"documentId"`
	Title       string `json:"title,omitempty"`
	Institution string `json:"institution,omitempty"`
	URL         string `json:"url,omitempty"`
	Note        string `json:"note,omitempty"`
}

// BookmarkItem is one saved document.
type BookmarkItem struct {
	DocumentID  string    `json:"documentId"`
	Title       string    `json:"title,omitempty"`
	Institution string    `json:"institution,omitempty"`
	URL         string    `json:"url,omitempty"`
	Note        string    `json:"note,omitempty"`
	SavedAt     time.Time `json:"savedAt"`
}

// BookmarksResponse is the GET /v1/bookmarks reply.
type BookmarksResponse struct {
	Bookmarks []BookmarkItem `json:"bookmarks"`
}

// ChatDocument is the document a question refers to.
type ChatDocument struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Institution string `json:"institution,omitempty"`
}

// ChatMessage is one prior conversation turn.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the POST /v1/chat body.
type ChatRequest struct {
	Document            ChatDocument  `json:"document"`
	Question            string        `json:"question"`
	ConversationHistory []ChatMessage `json:"conversationHistory,omitempty"`
}

// ChatResponse is the POST /v1/chat reply.
type ChatResponse struct {
	Response  string `json:"response"`
	ElapsedMS int64  `json:"elapsedMs"`
}

// AnalyzeRequest is the POST /v1/analyze body.
type AnalyzeRequest struct {
	DocumentText string `json:"documentText"`
	AnalysisType string `json:"analysisType"`
}

// AnalyzeResponse is the POST /v1/analyze reply.
type AnalyzeResponse struct {
	AnalysisType string `json:"analysisType"`
	Analysis     string `json:"analysis"`
	ElapsedMS    int64  `json:"elapsedMs"`
}

// HealthResponse is the GET /health reply.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
