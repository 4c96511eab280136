// Package search implements the multi-institution search aggregator: fan
// out one retrieval call per requested institution, tolerate per-source
// failure, normalize, merge, sort, and paginate.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kararbul/kararbul/internal/domain"
	"github.com/kararbul/kararbul/internal/domain/search/query"
	"github.com/kararbul/kararbul/internal/domain/search/result"
	"github.com/kararbul/kararbul/internal/domain/search/sortkey"
	"github.com/kararbul/kararbul/internal/metrics"
	"github.com/kararbul/kararbul/internal/normalize"
	"github.com/kararbul/kararbul/internal/source"
)

const defaultHistoryTimeout = 3 * time.Second

// Diagnostics reports which sources produced authoritative data.
type Diagnostics struct {
	// Succeeded lists institutions that returned real, non-fallback data.
	Succeeded []string
	// RateLimited lists institutions rejected by the request window. They
	// are also counted in FallbackCount but kept visible separately:
	// hitting the window indicates misuse, not an external fault.
	RateLimited []string
	// FallbackCount is the number of institutions served synthetic data.
	FallbackCount int
	// InstitutionsSearched is the total number of requested institutions.
	InstitutionsSearched int
}

// Outcome is the aggregate search response.
type Outcome struct {
	Results     []result.Result
	TotalCount  int
	Page        int
	HasMore     bool
	ElapsedMS   int64
	Diagnostics Diagnostics
}

// Service coordinates concurrent adapter calls and merges their results.
type Service struct {
	resolver       AdapterResolver
	names          NameResolver
	normalizer     *normalize.Normalizer
	gen            *source.FallbackGenerator
	history        HistoryWriter
	historyTimeout time.Duration
	logger         *zap.Logger
}

// New creates a search service.
func New(
	resolver AdapterResolver,
	names NameResolver,
	normalizer *normalize.Normalizer,
	gen *source.FallbackGenerator,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver:       resolver,
		names:          names,
		normalizer:     normalizer,
		gen:            gen,
		historyTimeout: defaultHistoryTimeout,
		logger:         logger,
	}
}

// WithHistory attaches a best-effort history writer.
func (s *Service) WithHistory(w HistoryWriter) *Service {
	s.history = w
	return s
}

// settled is one completed adapter call, success or failure.
type settled struct {
	inst string
	env  source.Envelope
	err  error
}

// Search runs the fan-out for a validated query. userID may be empty; when
// present and a history writer is attached, the search is recorded
// asynchronously. Adapter faults never surface as errors: every requested
// institution contributes either real or fallback records.
func (s *Service) Search(ctx context.Context, q query.Query, userID string) (Outcome, error) {
	start := time.Now()
	insts := q.Institutions()
	filters := sourceFilters(q)

	outs := make([]settled, len(insts))
	done := make(chan int, len(insts))
	for i, id := range insts {
		go func(i int, id string) {
			defer func() {
				// An adapter panic is settled as a failed call, same
				// as a rejected promise.
				if r := recover(); r != nil {
					outs[i] = settled{inst: id, err: fmt.Errorf("adapter panic: %v", r)}
				}
				done <- i
			}()
			env, err := s.resolver.Resolve(id).Search(ctx, q.Text(), filters)
			outs[i] = settled{inst: id, env: env, err: err}
		}(i, id)
	}
	for range insts {
		<-done
	}

	var (
		merged      []result.Result
		diagnostics = Diagnostics{InstitutionsSearched: len(insts)}
	)
	for _, out := range outs {
		name := s.names.DisplayName(out.inst)
		switch {
		case out.err == nil && out.env.Success && len(out.env.Records) > 0:
			merged = append(merged, s.normalizer.Records(out.inst, name, out.env.Records)...)
			diagnostics.Succeeded = append(diagnostics.Succeeded, out.inst)
			metrics.SourceResultsTotal.WithLabelValues(out.inst, "real").Inc()

		case errors.Is(out.err, domain.ErrRateLimited):
			s.logger.Warn("institution rate limited, serving fallback data",
				zap.String("institution", out.inst))
			merged = append(merged, s.fallbackResults(out.inst, name, q, filters)...)
			diagnostics.RateLimited = append(diagnostics.RateLimited, out.inst)
			diagnostics.FallbackCount++
			metrics.SourceResultsTotal.WithLabelValues(out.inst, "rate_limited").Inc()

		default:
			if out.err != nil {
				s.logger.Warn("institution call settled with error",
					zap.String("institution", out.inst), zap.Error(out.err))
			}
			// Failure envelopes already carry fallback records; hard
			// errors and empty successes need them generated here.
			records := out.env.Records
			if len(records) == 0 {
				merged = append(merged, s.fallbackResults(out.inst, name, q, filters)...)
			} else {
				merged = append(merged, s.normalizer.Records(out.inst, name, records)...)
			}
			diagnostics.FallbackCount++
			metrics.SourceResultsTotal.WithLabelValues(out.inst, "fallback").Inc()
		}
	}

	sortResults(merged, q.SortBy(), q.SortOrder())

	totalCount := len(merged)
	startIdx := (q.Page() - 1) * q.PageSize()
	endIdx := startIdx + q.PageSize()
	if startIdx > totalCount {
		startIdx = totalCount
	}
	if endIdx > totalCount {
		endIdx = totalCount
	}

	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())

	outcome := Outcome{
		Results:     merged[startIdx:endIdx],
		TotalCount:  totalCount,
		Page:        q.Page(),
		HasMore:     (q.Page()-1)*q.PageSize()+q.PageSize() < totalCount,
		ElapsedMS:   elapsed.Milliseconds(),
		Diagnostics: diagnostics,
	}

	s.recordHistory(ctx, userID, q, outcome)
	return outcome, nil
}

func (s *Service) fallbackResults(instID, instName string, q query.Query, f source.Filters) []result.Result {
	records := s.gen.Generate(instID, instName, q.Text(), f.PageSize)
	return s.normalizer.Records(instID, instName, records)
}

// recordHistory persists the search asynchronously. Errors are logged only.
func (s *Service) recordHistory(ctx context.Context, userID string, q query.Query, o Outcome) {
	if s.history == nil || userID == "" {
		return
	}
	entry := HistoryEntry{
		Query:        q.Text(),
		Institutions: q.Institutions(),
		ResultCount:  o.TotalCount,
		ElapsedMS:    o.ElapsedMS,
		At:           time.Now(),
	}
	go func() {
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.historyTimeout)
		defer cancel()
		if err := s.history.Record(hctx, userID, entry); err != nil {
			s.logger.Warn("history write failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}()
}

func sourceFilters(q query.Query) source.Filters {
	f := source.Filters{
		Department:   q.Filters().Department,
		DocumentType: q.Filters().DocumentType,
		Page:         q.Page(),
		PageSize:     q.PageSize(),
	}
	if dr := q.Filters().DateRange; dr != nil {
		f.StartDate = dr.Start
		f.EndDate = dr.End
	}
	return f
}

// sortResults orders the full merged set before pagination. The sort is
// stable so ties keep their merge order.
func sortResults(results []result.Result, key sortkey.Key, order sortkey.Order) {
	less := func(a, b *result.Result) bool {
		if key == sortkey.Relevance {
			return a.Score() < b.Score()
		}
		return a.Date().Before(b.Date())
	}
	sort.SliceStable(results, func(i, j int) bool {
		if order == sortkey.Desc {
			return less(&results[j], &results[i])
		}
		return less(&results[i], &results[j])
	})
}
