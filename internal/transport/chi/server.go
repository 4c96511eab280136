// Package chi implements the HTTP API on the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kararbul/kararbul/internal/domain"
	"github.com/kararbul/kararbul/internal/domain/chat"
	"github.com/kararbul/kararbul/internal/domain/institution"
	"github.com/kararbul/kararbul/internal/domain/search/query"
	"github.com/kararbul/kararbul/internal/domain/search/result"
	"github.com/kararbul/kararbul/internal/domain/search/sortkey"
	"github.com/kararbul/kararbul/internal/repository/bookmark"
	analyzeuc "github.com/kararbul/kararbul/internal/usecase/analyze"
	healthuc "github.com/kararbul/kararbul/internal/usecase/health"
	searchuc "github.com/kararbul/kararbul/internal/usecase/search"
)

const dateLayout = "2006-01-02"

// HistoryReader serves the recent-searches endpoint.
type HistoryReader interface {
	Recent(ctx context.Context, userID string, limit int) ([]searchuc.HistoryEntry, error)
}

// BookmarkStore serves the bookmark endpoints.
type BookmarkStore interface {
	Save(ctx context.Context, userID string, b bookmark.Bookmark) error
	List(ctx context.Context, userID string) ([]bookmark.Bookmark, error)
	Delete(ctx context.Context, userID, documentID string) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	search          *searchuc.Service
	analyze         *analyzeuc.Service
	health          *healthuc.Service
	catalog         *institution.Catalog
	history         HistoryReader
	bookmarks       BookmarkStore
	logger          *zap.Logger
	errorHandlers   []errorHandler
	defaultPageSize int
	maxPageSize     int
}

// NewServer creates an HTTP API server. history and bookmarks may be nil
// when persistence is not configured; their endpoints answer 501.
func NewServer(
	search *searchuc.Service,
	analyze *analyzeuc.Service,
	health *healthuc.Service,
	catalog *institution.Catalog,
	history HistoryReader,
	bookmarks BookmarkStore,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:          search,
		analyze:         analyze,
		health:          health,
		catalog:         catalog,
		history:         history,
		bookmarks:       bookmarks,
		logger:          logger,
		defaultPageSize: query.DefaultPageSize,
		maxPageSize:     query.MaxPageSize,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidAnalysisType, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusBadGateway, CodeSourceUnavailable),
		sentinelHandler(domain.ErrLLMUnavailable, http.StatusBadGateway, CodeLLMUnavailable),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, CodeNotImplemented),
	}
	return s
}

// WithPageLimits overrides the default and maximum search page sizes.
// The package-level ceiling in query still applies.
func (s *Server) WithPageLimits(defaultSize, maxSize int) *Server {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// Mount registers all routes on the given router.
func (s *Server) Mount(r chirouter.Router) {
	r.Post("/v1/search", s.Search)
	r.Post("/v1/chat", s.Chat)
	r.Get("/v1/institutions", s.Institutions)
	r.Get("/v1/history", s.History)
	r.Get("/v1/bookmarks", s.ListBookmarks)
	r.Post("/v1/bookmarks", s.SaveBookmark)
	r.Delete("/v1/bookmarks/{documentID}", s.DeleteBookmark)
	r.Post("/v1/analyze", s.Analyze)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := s.queryFromRequest(req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	outcome, err := s.search.Search(r.Context(), q, UserID(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(&q, outcome))
}

// Institutions handles GET /v1/institutions.
func (s *Server) Institutions(w http.ResponseWriter, r *http.Request) {
	infos := s.catalog.All()
	items := make([]InstitutionItem, len(infos))
	for i, info := range infos {
		items[i] = InstitutionItem{
			ID:            info.ID,
			Name:          info.Name,
			Description:   info.Description,
			DocumentTypes: info.DocumentTypes,
			Active:        info.Active,
		}
	}
	writeJSON(w, http.StatusOK, InstitutionsResponse{Institutions: items})
}

// History handles GET /v1/history.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "history is not configured")
		return
	}
	userID := UserID(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "X-User-ID header required")
		return
	}

	entries, err := s.history.Recent(r.Context(), userID, 0)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = HistoryItem{
			Query:        e.Query,
			Institutions: e.Institutions,
			ResultCount:  e.ResultCount,
			ElapsedMS:    e.ElapsedMS,
			At:           e.At,
		}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Searches: items})
}

// ListBookmarks handles GET /v1/bookmarks.
func (s *Server) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	if s.bookmarks == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "bookmarks are not configured")
		return
	}
	userID := UserID(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "X-User-ID header required")
		return
	}

	saved, err := s.bookmarks.List(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]BookmarkItem, len(saved))
	for i, b := range saved {
		items[i] = bookmarkItemFrom(b)
	}
	writeJSON(w, http.StatusOK, BookmarksResponse{Bookmarks: items})
}

// SaveBookmark handles POST /v1/bookmarks.
func (s *Server) SaveBookmark(w http.ResponseWriter, r *http.Request) {
	if s.bookmarks == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "bookmarks are not configured")
		return
	}
	userID := UserID(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "X-User-ID header required")
		return
	}

	var req BookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	b := bookmark.Bookmark{
		DocumentID:  req.DocumentID,
		Title:       req.Title,
		Institution: req.Institution,
		URL:         req.URL,
		Note:        req.Note,
	}
	if err := s.bookmarks.Save(r.Context(), userID, b); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// DeleteBookmark handles DELETE /v1/bookmarks/{documentID}.
func (s *Server) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	if s.bookmarks == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "bookmarks are not configured")
		return
	}
	userID := UserID(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "X-User-ID header required")
		return
	}

	documentID := chirouter.URLParam(r, "documentID")
	if err := s.bookmarks.Delete(r.Context(), userID, documentID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Analyze handles POST /v1/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	if s.analyze == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "analysis is not configured")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	kind := analyzeuc.Kind(req.AnalysisType)
	if req.AnalysisType == "" {
		kind = analyzeuc.Summary
	}

	analysis, err := s.analyze.Analyze(r.Context(), kind, req.DocumentText)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		AnalysisType: string(analysis.Kind),
		Analysis:     analysis.Text,
		ElapsedMS:    analysis.ElapsedMS,
	})
}

// Chat handles POST /v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	if s.analyze == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "analysis is not configured")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	history := make([]chat.Turn, len(req.ConversationHistory))
	for i, m := range req.ConversationHistory {
		history[i] = chat.Turn{Role: m.Role, Content: m.Content}
	}

	doc := chat.Document{
		Title:       req.Document.Title,
		Content:     req.Document.Content,
		Institution: req.Document.Institution,
	}
	reply, err := s.analyze.Chat(r.Context(), doc, req.Question, history)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:  reply.Text,
		ElapsedMS: reply.ElapsedMS,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string)
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) queryFromRequest(req SearchRequest) (query.Query, error) {
	if req.PageSize <= 0 {
		req.PageSize = s.defaultPageSize
	}
	if req.PageSize > s.maxPageSize {
		req.PageSize = s.maxPageSize
	}

	var filters query.Filters
	filters.DocumentType = req.DocumentType
	filters.Department = req.Department

	if req.StartDate != "" || req.EndDate != "" {
		dr := &query.DateRange{}
		if req.StartDate != "" {
			t, err := time.Parse(dateLayout, req.StartDate)
			if err != nil {
				return query.Query{}, fmt.Errorf("%w: bad startDate %q", domain.ErrInvalidQuery, req.StartDate)
			}
			dr.Start = t
		}
		if req.EndDate != "" {
			t, err := time.Parse(dateLayout, req.EndDate)
			if err != nil {
				return query.Query{}, fmt.Errorf("%w: bad endDate %q", domain.ErrInvalidQuery, req.EndDate)
			}
			dr.End = t
		}
		filters.DateRange = dr
	}

	return query.New(
		req.Query,
		req.Institutions,
		filters,
		req.Page,
		req.PageSize,
		sortkey.Key(req.SortBy),
		sortkey.Order(req.SortOrder),
	)
}

func searchResponseFrom(q *query.Query, o searchuc.Outcome) SearchResponse {
	items := make([]SearchResultItem, len(o.Results))
	for i := range o.Results {
		items[i] = resultItemFrom(&o.Results[i])
	}
	return SearchResponse{
		Results:    items,
		TotalCount: o.TotalCount,
		Page:       o.Page,
		PageSize:   q.PageSize(),
		HasMore:    o.HasMore,
		ElapsedMS:  o.ElapsedMS,
		Diagnostics: SearchDiagnostics{
			Succeeded:            emptyIfNil(o.Diagnostics.Succeeded),
			RateLimited:          emptyIfNil(o.Diagnostics.RateLimited),
			FallbackCount:        o.Diagnostics.FallbackCount,
			InstitutionsSearched: o.Diagnostics.InstitutionsSearched,
		},
	}
}

func resultItemFrom(r *result.Result) SearchResultItem {
	item := SearchResultItem{
		ID:           r.ID(),
		Title:        r.Title(),
		Institution:  r.Institution(),
		Department:   r.Department(),
		Date:         r.Date(),
		Summary:      r.Summary(),
		Content:      r.Content(),
		DocumentType: r.DocumentType(),
		URL:          r.URL(),
		Score:        r.Score(),
	}
	m := r.Metadata()
	if m.CaseNumber != "" || m.DecisionNumber != "" || len(m.Keywords) > 0 {
		item.Metadata = &ResultMetadata{
			CaseNumber:     m.CaseNumber,
			DecisionNumber: m.DecisionNumber,
			Keywords:       m.Keywords,
		}
	}
	return item
}

func bookmarkItemFrom(b bookmark.Bookmark) BookmarkItem {
	return BookmarkItem{
		DocumentID:  b.DocumentID,
		Title:       b.Title,
		Institution: b.Institution,
		URL:         b.URL,
		Note:        b.Note,
		SavedAt:     b.SavedAt,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrInvalidQuery,
		domain.ErrInvalidAnalysisType,
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrSourceUnavailable,
		domain.ErrLLMUnavailable,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
