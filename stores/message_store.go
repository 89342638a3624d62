package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mboyle/threadline-api/models"
)

// ErrMessageNotFound is returned when a message id resolves to nothing
var ErrMessageNotFound = errors.New("message not found")

// MessageStore is the persistence boundary for messages. Same-id updates
// serialize through Update's transaction; creates for unrelated messages
// are independent.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ByID(ctx context.Context, id string) (*models.Message, error)
	// Update runs mutate inside a transaction against the row as read in
	// that same transaction. The tx handle is exposed so callers can
	// persist companion rows atomically with the message mutation.
	Update(ctx context.Context, id string, mutate func(tx *gorm.DB, msg *models.Message) error) (*models.Message, error)
	Delete(ctx context.Context, id string) error
	Replies(ctx context.Context, parentID string) ([]*models.Message, error)
	UnreadFor(ctx context.Context, userID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, userID string, messageIDs []string) (int64, error)
	Conversation(ctx context.Context, userID, otherID string, after, before *time.Time) ([]*models.Message, error)
}

type messageStore struct {
	db *gorm.DB
}

// NewMessageStore creates a GORM-backed MessageStore
func NewMessageStore(db *gorm.DB) MessageStore {
	return &messageStore{db: db}
}

func (s *messageStore) Create(ctx context.Context, msg *models.Message) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *messageStore) ByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

func (s *messageStore) Update(ctx context.Context, id string, mutate func(tx *gorm.DB, msg *models.Message) error) (*models.Message, error) {
	var updated *models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		if err := tx.Where("id = ?", id).First(&msg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessageNotFound
			}
			return fmt.Errorf("failed to get message: %w", err)
		}
		if err := mutate(tx, &msg); err != nil {
			return err
		}
		if err := tx.Save(&msg).Error; err != nil {
			return fmt.Errorf("failed to update message: %w", err)
		}
		updated = &msg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *messageStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (s *messageStore) Replies(ctx context.Context, parentID string) ([]*models.Message, error) {
	var messages []*models.Message
	err := s.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	return messages, nil
}

func (s *messageStore) UnreadFor(ctx context.Context, userID string) ([]*models.Message, error) {
	var messages []*models.Message
	err := s.db.WithContext(ctx).
		Where("receiver_id = ? AND read = ?", userID, false).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unread messages: %w", err)
	}
	return messages, nil
}

func (s *messageStore) MarkRead(ctx context.Context, userID string, messageIDs []string) (int64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", userID, false)
	if len(messageIDs) > 0 {
		query = query.Where("id IN ?", messageIDs)
	}
	result := query.Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages as read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *messageStore) Conversation(ctx context.Context, userID, otherID string, after, before *time.Time) ([]*models.Message, error) {
	query := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID)
	if after != nil {
		query = query.Where("timestamp >= ?", *after)
	}
	if before != nil {
		query = query.Where("timestamp <= ?", *before)
	}

	var messages []*models.Message
	if err := query.Order("timestamp ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}
	return messages, nil
}
