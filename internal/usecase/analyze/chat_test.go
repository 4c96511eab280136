package analyze

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kararbul/kararbul/internal/domain"
	"github.com/kararbul/kararbul/internal/domain/chat"
)

func testDocument() chat.Document {
	return chat.Document{
		Title:       "Kira Tespit Davası",
		Content:     "Mahkeme kira bedelinin tespitine karar vermiştir.",
		Institution: "Yargıtay",
	}
}

func TestChat_AnswersQuestion(t *testing.T) {
	fc := &fakeCompleter{out: "Karar kesinleşmiştir."}
	svc := New(fc, zap.NewNop())

	got, err := svc.Chat(context.Background(), testDocument(), "  Karar kesinleşti mi?  ", nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got.Text != "Karar kesinleşmiştir." {
		t.Errorf("unexpected reply: %+v", got)
	}

	for _, want := range []string{"Kira Tespit Davası", "Yargıtay", "kira bedelinin tespitine"} {
		if !strings.Contains(fc.system, want) {
			t.Errorf("system prompt missing %q: %q", want, fc.system)
		}
	}
	if len(fc.turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(fc.turns))
	}
	last := fc.turns[0]
	if last.Role != chat.RoleUser || last.Content != "Karar kesinleşti mi?" {
		t.Errorf("question not trimmed into final user turn: %+v", last)
	}
}

func TestChat_ForwardsHistoryInOrder(t *testing.T) {
	fc := &fakeCompleter{out: "ok"}
	svc := New(fc, zap.NewNop())

	history := []chat.Turn{
		{Role: chat.RoleUser, Content: "İlk soru"},
		{Role: chat.RoleAssistant, Content: "İlk yanıt"},
	}
	if _, err := svc.Chat(context.Background(), testDocument(), "İkinci soru", history); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if len(fc.turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(fc.turns))
	}
	if fc.turns[0].Content != "İlk soru" || fc.turns[1].Content != "İlk yanıt" {
		t.Errorf("history out of order: %+v", fc.turns)
	}
	if fc.turns[2].Role != chat.RoleUser || fc.turns[2].Content != "İkinci soru" {
		t.Errorf("question is not the final turn: %+v", fc.turns[2])
	}
}

func TestChat_CapsHistory(t *testing.T) {
	fc := &fakeCompleter{out: "ok"}
	svc := New(fc, zap.NewNop())

	history := make([]chat.Turn, MaxHistoryTurns+10)
	for i := range history {
		history[i] = chat.Turn{Role: chat.RoleUser, Content: strings.Repeat("x", i+1)}
	}
	if _, err := svc.Chat(context.Background(), testDocument(), "soru", history); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if len(fc.turns) != MaxHistoryTurns+1 {
		t.Fatalf("expected %d turns, got %d", MaxHistoryTurns+1, len(fc.turns))
	}
	// The oldest turns are the ones dropped.
	if fc.turns[0].Content != history[10].Content {
		t.Errorf("expected oldest turns dropped, first forwarded turn %q", fc.turns[0].Content)
	}
}

func TestChat_RequiresDocument(t *testing.T) {
	svc := New(&fakeCompleter{}, zap.NewNop())

	tests := []struct {
		name string
		doc  chat.Document
	}{
		{"no title", chat.Document{Content: "metin"}},
		{"no content", chat.Document{Title: "Karar"}},
		{"blank", chat.Document{Title: "   ", Content: "  "}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Chat(context.Background(), tc.doc, "soru", nil)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestChat_RequiresQuestion(t *testing.T) {
	svc := New(&fakeCompleter{}, zap.NewNop())
	_, err := svc.Chat(context.Background(), testDocument(), "   ", nil)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestChat_NoProvider(t *testing.T) {
	svc := New(nil, zap.NewNop())
	_, err := svc.Chat(context.Background(), testDocument(), "soru", nil)
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Fatalf("expected ErrLLMUnavailable, got %v", err)
	}
}

func TestChat_ProviderError(t *testing.T) {
	fc := &fakeCompleter{err: domain.ErrLLMUnavailable}
	svc := New(fc, zap.NewNop())
	_, err := svc.Chat(context.Background(), testDocument(), "soru", nil)
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Fatalf("expected ErrLLMUnavailable, got %v", err)
	}
}

func TestChat_TruncatesDocumentContent(t *testing.T) {
	fc := &fakeCompleter{out: "ok"}
	svc := New(fc, zap.NewNop())

	doc := testDocument()
	doc.Content = "a" + strings.Repeat("ş", MaxDocumentChars)
	if _, err := svc.Chat(context.Background(), doc, "soru", nil); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !utf8.ValidString(fc.system) {
		t.Error("truncated system prompt is not valid UTF-8")
	}
	if len(fc.system) > MaxDocumentChars+500 {
		t.Errorf("document not truncated, system prompt length %d", len(fc.system))
	}
}
