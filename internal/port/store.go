package port

import (
	"context"

	"github.com/helpdesk-ai/supportbot/internal/domain"
)

// ConversationStore persists conversations and their ordered messages.
type ConversationStore interface {
	// GetConversation returns a conversation with its messages in append
	// order, or ErrConversationNotFound.
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)

	// CreateConversation inserts a new active conversation.
	CreateConversation(ctx context.Context, id string) (*domain.Conversation, error)

	// AppendMessage appends one message to a conversation's history.
	AppendMessage(ctx context.Context, conversationID, role, content string) error

	// SetState updates the lifecycle state of a conversation.
	SetState(ctx context.Context, conversationID, state string) error
}

// SettingsStore holds the operator-editable chatbot texts.
type SettingsStore interface {
	// GetSettings returns the current settings snapshot.
	GetSettings(ctx context.Context) (domain.Settings, error)

	// SaveSettings replaces the stored settings.
	SaveSettings(ctx context.Context, s domain.Settings) error
}

// ChunkStore persists knowledge-base chunks with their vectors.
// A source is always replaced wholesale, never patched.
type ChunkStore interface {
	// ReplaceSource atomically replaces all chunks for a source.
	ReplaceSource(ctx context.Context, source string, chunks []domain.Chunk) error

	// LoadAll returns every stored chunk ordered by source and position.
	LoadAll(ctx context.Context) ([]domain.Chunk, error)
}
