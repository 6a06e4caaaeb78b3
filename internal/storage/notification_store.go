package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carexpert-server/internal/apperr"
	"carexpert-server/internal/models"
)

// NotificationStore is the gorm-backed implementation of notify.Store.
type NotificationStore struct {
	DB *gorm.DB
}

// NewNotificationStore creates a new NotificationStore.
func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{DB: db}
}

// Create inserts a new notification record.
func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	return s.DB.WithContext(ctx).Omit(clause.Associations).Create(n).Error
}

// Get fetches a notification by id.
func (s *NotificationStore) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := s.DB.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("notification")
		}
		return nil, err
	}
	return &n, nil
}

// ListForRecipient returns the recipient's notifications newest-first.
func (s *NotificationStore) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	query := s.DB.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var notifications []models.Notification
	err := query.Order("created_at desc").Find(&notifications).Error
	return notifications, err
}

// MarkRead flips a single notification to read.
func (s *NotificationStore) MarkRead(ctx context.Context, id string, readAt time.Time) error {
	return s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": readAt}).Error
}

// MarkAllRead flips every unread notification for the recipient and returns
// the number of rows changed.
func (s *NotificationStore) MarkAllRead(ctx context.Context, recipientID string, readAt time.Time) (int64, error) {
	result := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": readAt})
	return result.RowsAffected, result.Error
}
