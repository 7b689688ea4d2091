package models

import "time"

// Message represents a board message row. Deletion is soft: DeletedAt is set
// and the row plus its read receipts are retained.
type Message struct {
	ID        string     `db:"id" json:"id"`
	SenderID  int64      `db:"sender_id" json:"sender_id"`
	Content   string     `db:"content" json:"content"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Deleted reports whether the message has been soft-deleted.
func (m *Message) Deleted() bool {
	return m != nil && m.DeletedAt != nil
}

// MessageRead records that a user has acknowledged a message. At most one row
// exists per (message, user) pair; rows are never removed.
type MessageRead struct {
	MessageID string    `db:"message_id" json:"message_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ReadAt    time.Time `db:"read_at" json:"read_at"`
}

// MessageWithReads is the listing shape: a message annotated with its
// read-receipt set for display.
type MessageWithReads struct {
	Message
	Reads []MessageRead `json:"reads"`
}
