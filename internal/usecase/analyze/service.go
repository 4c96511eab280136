// Package analyze produces LLM-backed readings of a legal document:
// summaries, legal analysis, key points, and similar-case pointers.
package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kararbul/kararbul/internal/domain"
	"github.com/kararbul/kararbul/internal/metrics"
)

// Kind selects the reading the model is asked for.
type Kind string

// Supported analysis kinds.
const (
	Summary       Kind = "summary"
	LegalAnalysis Kind = "legal_analysis"
	KeyPoints     Kind = "key_points"
	SimilarCases  Kind = "similar_cases"
)

// IsValid reports whether k is a supported analysis kind.
func (k Kind) IsValid() bool {
	switch k {
	case Summary, LegalAnalysis, KeyPoints, SimilarCases:
		return true
	}
	return false
}

// MaxDocumentChars caps the document text forwarded to the model.
const MaxDocumentChars = 24000

const systemPrompt = "Sen Türk hukuku konusunda uzman bir hukuk asistanısın. " +
	"Yargı kararlarını inceler, açık ve anlaşılır Türkçe ile değerlendirirsin. " +
	"Yanıtlarını yalnızca verilen belge metnine dayandır."

var userPrompts = map[Kind]string{
	Summary: "Aşağıdaki yargı kararını 3-5 paragraf halinde özetle. " +
		"Davanın konusunu, tarafların iddialarını ve mahkemenin sonucunu belirt.",
	LegalAnalysis: "Aşağıdaki yargı kararının hukuki analizini yap. " +
		"Uygulanan kanun maddelerini, mahkemenin gerekçesini ve kararın " +
		"emsal niteliğini değerlendir.",
	KeyPoints: "Aşağıdaki yargı kararının en önemli noktalarını madde madde listele. " +
		"Her madde tek cümle olsun.",
	SimilarCases: "Aşağıdaki yargı kararına benzer nitelikte hangi tür davaların " +
		"açılabileceğini ve hangi emsal kararların ilgili olabileceğini açıkla.",
}

// Analysis is one completed model reading.
type Analysis struct {
	Kind      Kind
	Text      string
	ElapsedMS int64
}

// Service runs document analyses against a completion provider.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// New creates an analysis service.
func New(completer Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{completer: completer, logger: logger}
}

// Analyze asks the model for one reading of the document text.
func (s *Service) Analyze(ctx context.Context, kind Kind, document string) (Analysis, error) {
	if !kind.IsValid() {
		return Analysis{}, fmt.Errorf("%w: %q", domain.ErrInvalidAnalysisType, kind)
	}
	document = strings.TrimSpace(document)
	if document == "" {
		return Analysis{}, fmt.Errorf("%w: document text required", domain.ErrInvalidQuery)
	}
	document = truncateAtRune(document, MaxDocumentChars)
	if s.completer == nil {
		return Analysis{}, fmt.Errorf("no completion provider configured: %w", domain.ErrLLMUnavailable)
	}

	start := time.Now()
	text, err := s.completer.Complete(ctx, systemPrompt, userPrompts[kind]+"\n\n"+document)
	if err != nil {
		metrics.AnalysisRequestsTotal.WithLabelValues(string(kind), "error").Inc()
		s.logger.Warn("analysis failed", zap.String("kind", string(kind)), zap.Error(err))
		return Analysis{}, err
	}
	metrics.AnalysisRequestsTotal.WithLabelValues(string(kind), "success").Inc()

	return Analysis{
		Kind:      kind,
		Text:      text,
		ElapsedMS: time.Since(start).Milliseconds(),
	}, nil
}

// truncateAtRune cuts s to at most max bytes without splitting a rune.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
