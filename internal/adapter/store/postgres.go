// Package store provides the Postgres persistence adapters.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/helpdesk-ai/supportbot/internal/domain"
	"github.com/helpdesk-ai/supportbot/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// --- Conversations ---

// GetConversation returns a conversation with its messages in append order.
func (s *PostgresStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `SELECT id, state, created_at FROM conversations WHERE id = $1`

	var conv domain.Conversation
	err := s.db.QueryRowContext(ctx, query, id).Scan(&conv.ID, &conv.State, &conv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	messages, err := s.listMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	conv.Messages = messages
	return &conv, nil
}

// CreateConversation inserts a new active conversation.
func (s *PostgresStore) CreateConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `INSERT INTO conversations (id, state)
	          VALUES ($1, $2)
	          RETURNING id, state, created_at`

	var conv domain.Conversation
	err := s.db.QueryRowContext(ctx, query, id, domain.StateActive).Scan(&conv.ID, &conv.State, &conv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &conv, nil
}

// AppendMessage appends one message to a conversation's history.
func (s *PostgresStore) AppendMessage(ctx context.Context, conversationID, role, content string) error {
	query := `INSERT INTO messages (conversation_id, role, content) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, conversationID, role, content); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// SetState updates the lifecycle state of a conversation.
func (s *PostgresStore) SetState(ctx context.Context, conversationID, state string) error {
	query := `UPDATE conversations SET state = $1 WHERE id = $2`
	if _, err := s.db.ExecContext(ctx, query, state, conversationID); err != nil {
		return fmt.Errorf("set conversation state: %w", err)
	}
	return nil
}

func (s *PostgresStore) listMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	query := `SELECT id, conversation_id, role, content, created_at
	          FROM messages WHERE conversation_id = $1 ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// --- Settings ---

// GetSettings returns the stored chatbot settings, or the defaults when
// nothing has been saved yet.
func (s *PostgresStore) GetSettings(ctx context.Context) (domain.Settings, error) {
	query := `SELECT welcome_message, fallback_message, tone_instructions, updated_at
	          FROM chatbot_settings WHERE id = 1`

	var st domain.Settings
	err := s.db.QueryRowContext(ctx, query).Scan(
		&st.WelcomeMessage, &st.FallbackMessage, &st.ToneInstructions, &st.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

// SaveSettings replaces the stored chatbot settings.
func (s *PostgresStore) SaveSettings(ctx context.Context, st domain.Settings) error {
	query := `INSERT INTO chatbot_settings (id, welcome_message, fallback_message, tone_instructions, updated_at)
	          VALUES (1, $1, $2, $3, NOW())
	          ON CONFLICT (id) DO UPDATE SET
	              welcome_message = EXCLUDED.welcome_message,
	              fallback_message = EXCLUDED.fallback_message,
	              tone_instructions = EXCLUDED.tone_instructions,
	              updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, st.WelcomeMessage, st.FallbackMessage, st.ToneInstructions); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// --- Audit Logs ---

// AuditRecord is a stored request audit entry.
type AuditRecord struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Details   string    `json:"details"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(action, resource, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (action, resource, details, ip, user_agent)
	          VALUES ($1, $2, $3::jsonb, $4, $5)`
	_, err := s.db.ExecContext(context.Background(), query, action, resource, details, ip, userAgent)
	return err
}

// ListAuditLogs returns recent audit logs with optional filters.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]AuditRecord, error) {
	query := `SELECT id, action, resource, COALESCE(details::text, '{}'), ip, user_agent, created_at
	          FROM audit_logs`
	args := []interface{}{}
	argIdx := 1

	if action != "" {
		query += fmt.Sprintf(" WHERE action = $%d", argIdx)
		args = append(args, action)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []AuditRecord
	for rows.Next() {
		var l AuditRecord
		if err := rows.Scan(&l.ID, &l.Action, &l.Resource, &l.Details, &l.IP, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}
