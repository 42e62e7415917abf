package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/helpdesk-ai/supportbot/internal/domain"
	"github.com/helpdesk-ai/supportbot/internal/port"
)

// stubAI is a deterministic port.AIProvider for endpoint tests. Texts
// mentioning IPTV embed onto the knowledge axis, everything else lands
// orthogonal to it.
type stubAI struct {
	mu        sync.Mutex
	chatReply string
	chatCalls int
}

func (s *stubAI) ModelName() string { return "stub" }

func (s *stubAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.Contains(strings.ToLower(text), "iptv") {
		return []float32{1, 0, 0}, nil
	}
	return []float32{0, 0, 1}, nil
}

func (s *stubAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (s *stubAI) Chat(ctx context.Context, systemPrompt, userPrompt string, contextChunks []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatCalls++
	return s.chatReply, nil
}

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

type memSettingsStore struct {
	mu       sync.Mutex
	settings domain.Settings
}

func newMemSettingsStore() *memSettingsStore {
	return &memSettingsStore{settings: domain.DefaultSettings()}
}

func (s *memSettingsStore) GetSettings(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *memSettingsStore) SaveSettings(ctx context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

type memChunkStore struct {
	mu      sync.Mutex
	sources map[string][]domain.Chunk
}

func newMemChunkStore() *memChunkStore {
	return &memChunkStore{sources: make(map[string][]domain.Chunk)}
}

func (s *memChunkStore) ReplaceSource(ctx context.Context, source string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
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
