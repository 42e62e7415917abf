package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/helpdesk-ai/supportbot/internal/domain"
	"github.com/helpdesk-ai/supportbot/internal/port"
)

// mockAI implements port.AIProvider with keyword-driven embeddings so
// similarity outcomes are predictable, and counts every call.
type mockAI struct {
	mu         sync.Mutex
	embedCalls int
	chatCalls  int

	chatReply string
	chatErr   error
	embedErr  error

	lastSystemPrompt string
	lastContext      []string
}

func (m *mockAI) ModelName() string { return "mock" }

// embedText maps text to a fixed 3-dimensional vector by topic keyword.
func embedText(text string) []float32 {
	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "iptv"):
		return []float32{1, 0, 0}
	case strings.Contains(lowered, "vod"), strings.Contains(lowered, "demand"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func (m *mockAI) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return embedText(text), nil
}

func (m *mockAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (m *mockAI) Chat(ctx context.Context, systemPrompt, userPrompt string, contextChunks []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatCalls++
	m.lastSystemPrompt = systemPrompt
	m.lastContext = contextChunks
	if m.chatErr != nil {
		return "", m.chatErr
	}
	if m.chatReply != "" {
		return m.chatReply, nil
	}
	return "generated answer about " + userPrompt, nil
}

func (m *mockAI) counts() (embeds, chats int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls, m.chatCalls
}

// memConversationStore is an in-memory port.ConversationStore.
type memConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*domain.Conversation
}

func newMemConversationStore() *memConversationStore {
	return &memConversationStore{conversations: make(map[string]*domain.Conversation)}
}

func (s *memConversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, port.ErrConversationNotFound
	}
	snapshot := *conv
	snapshot.Messages = append([]domain.Message(nil), conv.Messages...)
	return &snapshot, nil
}

func (s *memConversationStore) CreateConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := &domain.Conversation{ID: id, State: domain.StateActive, CreatedAt: time.Now()}
	s.conversations[id] = conv
	snapshot := *conv
	return &snapshot, nil
}

func (s *memConversationStore) AppendMessage(ctx context.Context, conversationID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return port.ErrConversationNotFound
	}
	conv.Messages = append(conv.Messages, domain.Message{
		ID:             int64(len(conv.Messages) + 1),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	})
	return nil
}

func (s *memConversationStore) SetState(ctx context.Context, conversationID, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return port.ErrConversationNotFound
	}
	conv.State = state
	return nil
}

func (s *memConversationStore) snapshot(id string) *domain.Conversation {
	conv, err := s.GetConversation(context.Background(), id)
	if err != nil {
		return nil
	}
	return conv
}

// memSettingsStore is an in-memory port.SettingsStore.
type memSettingsStore struct {
	mu       sync.Mutex
	settings domain.Settings
	err      error
}

func newMemSettingsStore() *memSettingsStore {
	return &memSettingsStore{settings: domain.DefaultSettings()}
}

func (s *memSettingsStore) GetSettings(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Settings{}, s.err
	}
	return s.settings, nil
}

func (s *memSettingsStore) SaveSettings(ctx context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

// memChunkStore is an in-memory port.ChunkStore.
type memChunkStore struct {
	mu      sync.Mutex
	sources map[string][]domain.Chunk
	failPut bool
}

func newMemChunkStore() *memChunkStore {
	return &memChunkStore{sources: make(map[string][]domain.Chunk)}
}

func (s *memChunkStore) ReplaceSource(ctx context.Context, source string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errors.New("storage unavailable")
	}
	if len(chunks) == 0 {
		delete(s.sources, source)
		return nil
	}
	s.sources[source] = append([]domain.Chunk(nil), chunks...)
	return nil
}

func (s *memChunkStore) LoadAll(ctx context.Context) ([]domain.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []domain.Chunk
	for _, chunks := range s.sources {
		all = append(all, chunks...)
	}
	return all, nil
}
