package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/datawise-ai/advisor-engine/pkg/database"
	"github.com/datawise-ai/advisor-engine/pkg/models"
)

// ChatRepository provides data access for conversation history.
type ChatRepository interface {
	Append(ctx context.Context, message *models.ChatMessage) error
	History(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.ChatMessage, error)
	Clear(ctx context.Context, sessionID uuid.UUID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type chatRepository struct {
	db *database.DB
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *database.DB) ChatRepository {
	return &chatRepository{db: db}
}

var _ ChatRepository = (*chatRepository)(nil)

func (r *chatRepository) Append(ctx context.Context, message *models.ChatMessage) error {
	if !models.IsValidChatRole(message.Role) {
		return fmt.Errorf("invalid chat role %q", message.Role)
	}
	message.CreatedAt = time.Now()

	query := `
		INSERT INTO chat_messages (session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		message.SessionID, message.Role, message.Content, message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}

	return nil
}

func (r *chatRepository) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	// Most recent messages, returned in chronological order.
	query := `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.ChatMessage, 0)
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *chatRepository) Clear(ctx context.Context, sessionID uuid.UUID) error {
	query := `DELETE FROM chat_messages WHERE session_id = $1`

	if _, err := r.db.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}

	return nil
}

func (r *chatRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM chat_messages WHERE created_at < $1`

	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old chat messages: %w", err)
	}

	return tag.RowsAffected(), nil
}
