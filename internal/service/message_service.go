package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/homehub/homehub-api/internal/models"
	appErrors "github.com/homehub/homehub-api/pkg/errors"
)

type messageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	ListActive(ctx context.Context, limit int) ([]models.Message, error)
	ListReads(ctx context.Context, messageIDs []string) ([]models.MessageRead, error)
	MarkRead(ctx context.Context, messageID string, userID int64) error
	SoftDelete(ctx context.Context, messageID string) (bool, error)
}

// unreadInvalidator drops stale cached unread counts after a mutation.
type unreadInvalidator interface {
	Invalidate(ctx context.Context, userID int64)
	Flush(ctx context.Context)
}

// PostMessageRequest describes the payload for posting a message.
type PostMessageRequest struct {
	SenderID int64  `json:"sender_id" validate:"required,gt=0"`
	Content  string `json:"content" validate:"required"`
}

// MessageServiceConfig bounds message payloads and listings.
type MessageServiceConfig struct {
	MaxContentLength int
	ListLimit        int
}

// MessageService coordinates board message logic: posting, listing with read
// receipts, idempotent acknowledgement and sender-gated soft deletion.
type MessageService struct {
	repo      messageRepository
	gate      *AuthorizationGate
	unread    unreadInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	cfg       MessageServiceConfig
}

// NewMessageService instantiates MessageService. The unread invalidator is
// optional; without it cached counts simply age out by TTL.
func NewMessageService(repo messageRepository, gate *AuthorizationGate, unread unreadInvalidator, validate *validator.Validate, logger *zap.Logger, cfg MessageServiceConfig) *MessageService {
	if gate == nil {
		gate = NewAuthorizationGate()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = 500
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 50
	}
	return &MessageService{repo: repo, gate: gate, unread: unread, validator: validate, logger: logger, cfg: cfg}
}

// Post stores a new message and returns it.
func (s *MessageService) Post(ctx context.Context, req PostMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message content is empty")
	}
	if len([]rune(content)) > s.cfg.MaxContentLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message content exceeds maximum length")
	}

	message := &models.Message{SenderID: req.SenderID, Content: content}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to post message")
	}
	if s.unread != nil {
		s.unread.Flush(ctx)
	}

	s.logger.Info("message_posted", zap.String("message_id", message.ID), zap.Int64("sender_id", message.SenderID))
	return message, nil
}

// ListActive returns non-deleted messages newest first, each annotated with
// its read-receipt set.
func (s *MessageService) ListActive(ctx context.Context, limit int) ([]models.MessageWithReads, error) {
	if limit <= 0 || limit > s.cfg.ListLimit {
		limit = s.cfg.ListLimit
	}
	messages, err := s.repo.ListActive(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}

	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	reads, err := s.repo.ListReads(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list read receipts")
	}
	byMessage := make(map[string][]models.MessageRead, len(messages))
	for _, r := range reads {
		byMessage[r.MessageID] = append(byMessage[r.MessageID], r)
	}

	annotated := make([]models.MessageWithReads, 0, len(messages))
	for _, m := range messages {
		receipts := byMessage[m.ID]
		if receipts == nil {
			receipts = []models.MessageRead{}
		}
		annotated = append(annotated, models.MessageWithReads{Message: m, Reads: receipts})
	}
	return annotated, nil
}

// MarkRead records that the user has acknowledged the message. The operation
// is idempotent: it reports true whether or not a new receipt was created.
func (s *MessageService) MarkRead(ctx context.Context, messageID string, userID int64) (bool, error) {
	if userID <= 0 {
		return false, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	message, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	if message.Deleted() {
		return false, appErrors.Clone(appErrors.ErrNotFound, "message not found")
	}

	if err := s.repo.MarkRead(ctx, messageID, userID); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark message read")
	}
	if s.unread != nil {
		s.unread.Invalidate(ctx, userID)
	}
	return true, nil
}

// SoftDelete marks a message deleted on behalf of the requester. A missing or
// already-deleted message reports false; a requester other than the sender is
// rejected with a forbidden error. Read receipts are retained.
func (s *MessageService) SoftDelete(ctx context.Context, messageID string, requesterID int64) (bool, error) {
	if requesterID <= 0 {
		return false, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	message, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	if !s.gate.CanDelete(message, requesterID) {
		return false, appErrors.Clone(appErrors.ErrForbidden, "only the sender may delete a message")
	}
	if message.Deleted() {
		return false, nil
	}

	deleted, err := s.repo.SoftDelete(ctx, messageID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete message")
	}
	if deleted && s.unread != nil {
		s.unread.Flush(ctx)
	}
	if deleted {
		s.logger.Info("message_deleted", zap.String("message_id", messageID), zap.Int64("sender_id", requesterID))
	}
	return deleted, nil
}
