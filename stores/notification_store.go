package stores

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mboyle/threadline-api/models"
)

// ErrNotificationNotFound is returned when a notification id resolves to
// nothing for the requesting user
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationStore is the persistence boundary for per-user notifications
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	ByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByMessage(ctx context.Context, messageID string) error
}

type notificationStore struct {
	db *gorm.DB
}

// NewNotificationStore creates a GORM-backed NotificationStore
func NewNotificationStore(db *gorm.DB) NotificationStore {
	return &notificationStore{db: db}
}

func (s *notificationStore) Create(ctx context.Context, notification *models.Notification) error {
	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *notificationStore) ByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []*models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationStore) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *notificationStore) MarkRead(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *notificationStore) DeleteByUser(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Notification{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete notifications for user: %w", err)
	}
	return nil
}

func (s *notificationStore) DeleteByMessage(ctx context.Context, messageID string) error {
	err := s.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Delete(&models.Notification{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete notifications for message: %w", err)
	}
	return nil
}
