package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aumugisha-umu/seido-sub017/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Conversation is the single message thread of an intervention. ThreadKey is
// the routing token embedded in the thread's reply address.
type Conversation struct {
	ID             uuid.UUID `db:"id"`
	TeamID         uuid.UUID `db:"team_id"`
	InterventionID uuid.UUID `db:"intervention_id"`
	ThreadKey      string    `db:"thread_key"`
	CreatedAt      time.Time `db:"created_at"`
}

// Message is one entry of a conversation, posted in-app or received by email.
type Message struct {
	ID             uuid.UUID  `db:"id"`
	ConversationID uuid.UUID  `db:"conversation_id"`
	TeamID         uuid.UUID  `db:"team_id"`
	SenderID       *uuid.UUID `db:"sender_id"`
	SenderRole     *string    `db:"sender_role"`
	FromEmail      *string    `db:"from_email"`
	Subject        *string    `db:"subject"`
	Body           string     `db:"body"`
	Source         string     `db:"source"`
	CreatedAt      time.Time  `db:"created_at"`
}

// Message sources.
const (
	SourceApp   = "app"
	SourceEmail = "email"
)

// Attachment is a stored file attached to a message.
type Attachment struct {
	ID          uuid.UUID `db:"id"`
	MessageID   uuid.UUID `db:"message_id"`
	TeamID      uuid.UUID `db:"team_id"`
	FileKey     string    `db:"file_key"`
	Filename    string    `db:"filename"`
	ContentType string    `db:"content_type"`
	SizeBytes   int64     `db:"size_bytes"`
	CreatedAt   time.Time `db:"created_at"`
}

const conversationNotFoundMsg = "conversation introuvable"

// Repository provides database operations for conversations.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new conversations repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a conversation thread.
func (r *Repository) Create(ctx context.Context, conv *Conversation) error {
	query := `
		INSERT INTO conversations (id, team_id, intervention_id, thread_key, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		conv.ID, conv.TeamID, conv.InterventionID, conv.ThreadKey, conv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetByIntervention fetches the thread of an intervention.
func (r *Repository) GetByIntervention(ctx context.Context, teamID, interventionID uuid.UUID) (*Conversation, error) {
	query := `
		SELECT id, team_id, intervention_id, thread_key, created_at
		FROM conversations
		WHERE team_id = $1 AND intervention_id = $2`

	var conv Conversation
	err := r.pool.QueryRow(ctx, query, teamID, interventionID).Scan(
		&conv.ID, &conv.TeamID, &conv.InterventionID, &conv.ThreadKey, &conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(conversationNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

// GetByThreadKey resolves a reply-address routing token to its thread.
func (r *Repository) GetByThreadKey(ctx context.Context, threadKey string) (*Conversation, error) {
	query := `
		SELECT id, team_id, intervention_id, thread_key, created_at
		FROM conversations
		WHERE thread_key = $1`

	var conv Conversation
	err := r.pool.QueryRow(ctx, query, threadKey).Scan(
		&conv.ID, &conv.TeamID, &conv.InterventionID, &conv.ThreadKey, &conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(conversationNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to resolve thread key: %w", err)
	}
	return &conv, nil
}

// CreateMessage inserts a message with its attachments in one transaction.
func (r *Repository) CreateMessage(ctx context.Context, msg *Message, attachments []Attachment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	msgQuery := `
		INSERT INTO messages (
			id, conversation_id, team_id, sender_id, sender_role,
			from_email, subject, body, source, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.Exec(ctx, msgQuery,
		msg.ID, msg.ConversationID, msg.TeamID, msg.SenderID, msg.SenderRole,
		msg.FromEmail, msg.Subject, msg.Body, msg.Source, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	attQuery := `
		INSERT INTO message_attachments (
			id, message_id, team_id, file_key, filename, content_type, size_bytes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, att := range attachments {
		_, err = tx.Exec(ctx, attQuery,
			att.ID, att.MessageID, att.TeamID, att.FileKey, att.Filename,
			att.ContentType, att.SizeBytes, att.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attachment: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListMessages returns the messages of a thread, oldest first.
func (r *Repository) ListMessages(ctx context.Context, teamID, conversationID uuid.UUID) ([]Message, error) {
	query := `
		SELECT id, conversation_id, team_id, sender_id, sender_role,
			from_email, subject, body, source, created_at
		FROM messages
		WHERE team_id = $1 AND conversation_id = $2
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, teamID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.TeamID, &msg.SenderID, &msg.SenderRole,
			&msg.FromEmail, &msg.Subject, &msg.Body, &msg.Source, &msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ListAttachments returns the attachments of a set of messages.
func (r *Repository) ListAttachments(ctx context.Context, teamID uuid.UUID, messageIDs []uuid.UUID) ([]Attachment, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, message_id, team_id, file_key, filename, content_type, size_bytes, created_at
		FROM message_attachments
		WHERE team_id = $1 AND message_id = ANY($2)
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, teamID, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []Attachment
	for rows.Next() {
		var att Attachment
		if err := rows.Scan(
			&att.ID, &att.MessageID, &att.TeamID, &att.FileKey, &att.Filename,
			&att.ContentType, &att.SizeBytes, &att.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}
