package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kararbul/kararbul/internal/domain"
	"github.com/kararbul/kararbul/internal/domain/chat"
	"github.com/kararbul/kararbul/internal/metrics"
)

// MaxHistoryTurns caps the prior exchanges forwarded to the model.
const MaxHistoryTurns = 20

const chatSystemPromptFormat = `Sen Türkiye hukuk sistemine hakim, deneyimli bir hukuk uzmanısın.
Kullanıcının sorularını aşağıdaki belge bağlamında yanıtlıyorsun:

Belge Başlığı: %s
Kurum: %s

Belge İçeriği:
%s

Sorulara net, anlaşılır ve hukuki açıdan doğru yanıtlar ver. Gerektiğinde belgeye referans yap.`

// ChatReply is one answered document question.
type ChatReply struct {
	Text      string
	ElapsedMS int64
}

// Chat answers a question about a document, carrying prior exchanges as
// conversation context. The document text is embedded in the system prompt;
// only the most recent MaxHistoryTurns turns are forwarded.
func (s *Service) Chat(ctx context.Context, doc chat.Document, question string, history []chat.Turn) (ChatReply, error) {
	if strings.TrimSpace(doc.Title) == "" || strings.TrimSpace(doc.Content) == "" {
		return ChatReply{}, fmt.Errorf("%w: document title and content required", domain.ErrInvalidQuery)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return ChatReply{}, fmt.Errorf("%w: question text required", domain.ErrInvalidQuery)
	}
	if s.completer == nil {
		return ChatReply{}, fmt.Errorf("no completion provider configured: %w", domain.ErrLLMUnavailable)
	}
	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}

	system := fmt.Sprintf(chatSystemPromptFormat,
		doc.Title, doc.Institution, truncateAtRune(doc.Content, MaxDocumentChars))

	turns := make([]chat.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, chat.Turn{Role: chat.RoleUser, Content: question})

	start := time.Now()
	text, err := s.completer.Converse(ctx, system, turns)
	if err != nil {
		metrics.AnalysisRequestsTotal.WithLabelValues("chat", "error").Inc()
		s.logger.Warn("chat failed", zap.Error(err))
		return ChatReply{}, err
	}
	metrics.AnalysisRequestsTotal.WithLabelValues("chat", "success").Inc()

	return ChatReply{
		Text:      text,
		ElapsedMS: time.Since(start).Milliseconds(),
	}, nil
}
