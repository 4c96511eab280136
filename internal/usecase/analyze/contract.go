package analyze

import (
	"context"

	"github.com/kararbul/kararbul/internal/domain/chat"
)

// Completer produces chat completions against the configured model: one-shot
// for a system+user prompt pair, multi-turn for a document conversation.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Converse(ctx context.Context, system string, turns []chat.Turn) (string, error)
}
