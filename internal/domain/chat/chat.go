// Package chat defines the document conversation exchanged with the model.
package chat

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Document anchors a conversation to one decision text.
type Document struct {
	Title       string
	Content     string
	Institution string
}

// Turn is one prior exchange in a conversation.
type Turn struct {
	Role    string
	Content string
}
