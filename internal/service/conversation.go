package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/helpdesk-ai/supportbot/internal/domain"
	"github.com/helpdesk-ai/supportbot/internal/port"
)

// handoffNote is recorded in the history when a conversation escalates.
const handoffNote = "Conversation handed off to a human agent."

// apologyMessage replaces the assistant reply when the AI backend fails
// mid-turn. The conversation stays active so the next turn can retry.
const apologyMessage = "Sorry, something went wrong while preparing an answer. Please try again."

// ConversationManager owns conversation history and lifecycle state and
// orchestrates escalation detection, retrieval and composition per turn.
// Turns for the same conversation id are serialized; different ids run
// fully in parallel.
type ConversationManager struct {
	store     port.ConversationStore
	settings  port.SettingsStore
	retriever *Retriever
	composer  *Composer
	rules     EscalationRules
	timeout   time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewConversationManager wires a conversation manager.
func NewConversationManager(
	store port.ConversationStore,
	settings port.SettingsStore,
	retriever *Retriever,
	composer *Composer,
	rules EscalationRules,
	aiTimeout time.Duration,
) *ConversationManager {
	if aiTimeout <= 0 {
		aiTimeout = 30 * time.Second
	}
	return &ConversationManager{
		store:     store,
		settings:  settings,
		retriever: retriever,
		composer:  composer,
		rules:     rules,
		timeout:   aiTimeout,
		locks:     make(map[string]*sync.Mutex),
	}
}

// HandleTurn runs one chat turn. An empty conversation id creates a new
// conversation. Blank user text fails with ErrEmptyInput and mutates
// nothing. Once a conversation is escalated every turn short-circuits
// with NeedsHuman set and no retrieval or generation happens.
func (m *ConversationManager) HandleTurn(ctx context.Context, conversationID, userText string) (domain.TurnResult, error) {
	if strings.TrimSpace(userText) == "" {
		return domain.TurnResult{}, port.ErrEmptyInput
	}
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	unlock := m.lock(conversationID)
	defer unlock()

	conv, err := m.loadOrCreate(ctx, conversationID)
	if err != nil {
		return domain.TurnResult{}, err
	}

	if conv.Escalated() {
		return domain.TurnResult{ConversationID: conversationID, NeedsHuman: true}, nil
	}

	if err := m.store.AppendMessage(ctx, conversationID, domain.RoleUser, userText); err != nil {
		return domain.TurnResult{}, fmt.Errorf("append user message: %w", err)
	}

	if m.rules.Detect(userText) {
		if err := m.store.SetState(ctx, conversationID, domain.StateEscalated); err != nil {
			return domain.TurnResult{}, fmt.Errorf("escalate conversation: %w", err)
		}
		if err := m.store.AppendMessage(ctx, conversationID, domain.RoleSystem, handoffNote); err != nil {
			return domain.TurnResult{}, fmt.Errorf("append handoff note: %w", err)
		}
		slog.Info("conversation escalated", "conversation_id", conversationID)
		return domain.TurnResult{ConversationID: conversationID, NeedsHuman: true}, nil
	}

	settings, err := m.settings.GetSettings(ctx)
	if err != nil {
		slog.Warn("settings read failed, using defaults", "error", err)
		settings = domain.DefaultSettings()
	}

	reply := m.respond(ctx, conv, userText, settings)

	if err := m.store.AppendMessage(ctx, conversationID, domain.RoleAssistant, reply.Text); err != nil {
		return domain.TurnResult{}, fmt.Errorf("append assistant message: %w", err)
	}
	return domain.TurnResult{ConversationID: conversationID, Message: reply.Text}, nil
}

// respond runs retrieval and composition under the AI timeout. Provider
// failures become the generic apology so the turn stays retriable.
func (m *ConversationManager) respond(ctx context.Context, conv *domain.Conversation, userText string, settings domain.Settings) Reply {
	aiCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	retrieval, err := m.retriever.Retrieve(aiCtx, userText)
	if err != nil {
		slog.Error("retrieval failed", "conversation_id", conv.ID, "error", err)
		return Reply{Text: apologyMessage}
	}

	reply, err := m.composer.Compose(aiCtx, userText, retrieval, conv.Messages, settings)
	if err != nil {
		slog.Error("composition failed", "conversation_id", conv.ID, "error", err)
		return Reply{Text: apologyMessage}
	}
	return reply
}

func (m *ConversationManager) loadOrCreate(ctx context.Context, id string) (*domain.Conversation, error) {
	conv, err := m.store.GetConversation(ctx, id)
	if errors.Is(err, port.ErrConversationNotFound) {
		conv, err = m.store.CreateConversation(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return conv, nil
}

// lock acquires the per-conversation mutex and returns its release func.
func (m *ConversationManager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}
