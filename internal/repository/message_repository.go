package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/homehub/homehub-api/internal/models"
)

// MessageRepository provides persistence for board messages and their read
// receipts.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates the repository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, sender_id, content, created_at)
VALUES (:id, :sender_id, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// FindByID returns a message by identifier, deleted or not.
func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	const query = `SELECT id, sender_id, content, created_at, deleted_at FROM messages WHERE id = $1`
	var message models.Message
	if err := r.db.GetContext(ctx, &message, query, id); err != nil {
		return nil, err
	}
	return &message, nil
}

// ListActive returns non-deleted messages, newest first.
func (r *MessageRepository) ListActive(ctx context.Context, limit int) ([]models.Message, error) {
	const query = `SELECT id, sender_id, content, created_at, deleted_at FROM messages
WHERE deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $1`
	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, query, limit); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// ListReads returns all read receipts for the given message ids.
func (r *MessageRepository) ListReads(ctx context.Context, messageIDs []string) ([]models.MessageRead, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT message_id, user_id, read_at FROM message_reads
WHERE message_id = ANY($1)
ORDER BY read_at`
	var reads []models.MessageRead
	if err := r.db.SelectContext(ctx, &reads, query, pq.Array(messageIDs)); err != nil {
		return nil, fmt.Errorf("list message reads: %w", err)
	}
	return reads, nil
}

// MarkRead records a read receipt. The conflict clause makes the call an
// atomic upsert, so concurrent acknowledgements of the same pair are safe
// and repeated acknowledgement is a no-op.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID string, userID int64) error {
	const query = `INSERT INTO message_reads (message_id, user_id, read_at)
VALUES ($1, $2, $3)
ON CONFLICT (message_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, messageID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

// SoftDelete marks a message deleted and reports whether this call won the
// transition. The deleted_at guard keeps a concurrent delete from being
// applied twice and a concurrent read from undoing it.
func (r *MessageRepository) SoftDelete(ctx context.Context, messageID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE messages SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL",
		time.Now().UTC(), messageID)
	if err != nil {
		return false, fmt.Errorf("soft delete message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("soft delete result: %w", err)
	}
	return affected > 0, nil
}

// CountUnread counts active messages the user has not acknowledged. The
// sender's own messages count until acknowledged.
func (r *MessageRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM messages m
WHERE m.deleted_at IS NULL
AND NOT EXISTS (
	SELECT 1 FROM message_reads r WHERE r.message_id = m.id AND r.user_id = $1
)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}
