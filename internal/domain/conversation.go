package domain

import "time"

// Message is a single turn entry in a conversation. Messages are
// append-only; ordering is the append order.
type Message struct {
	ID             int64     `json:"id"              db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	Role           string    `json:"role"            db:"role"`
	Content        string    `json:"content"         db:"content"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
}

// Message role constants.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation holds the history and lifecycle state for one chat session.
// Once State reaches StateEscalated no automated transition ever leaves it.
type Conversation struct {
	ID        string    `json:"id"         db:"id"`
	Messages  []Message `json:"messages"`
	State     string    `json:"state"      db:"state"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Conversation state constants.
const (
	StateActive    = "active"
	StateEscalated = "escalated"
)

// Escalated reports whether the conversation has been handed off to a human.
func (c *Conversation) Escalated() bool {
	return c.State == StateEscalated
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
	NeedsHuman     bool   `json:"needs_human"`
}
