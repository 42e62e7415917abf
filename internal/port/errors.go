package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrEmptyInput            = errors.New("input text is empty")
	ErrEmbeddingProvider     = errors.New("embedding provider failed")
	ErrDimensionMismatch     = errors.New("embedding dimension mismatch")
	ErrGeneration            = errors.New("response generation failed")
	ErrIngestion             = errors.New("knowledge base ingestion failed")
	ErrConversationEscalated = errors.New("conversation already escalated")
	ErrConversationNotFound  = errors.New("conversation not found")
)
