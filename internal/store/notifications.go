package store

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"care-portal-server/internal/models"
)

// NotificationStore is the data access layer for in-app notifications.
type NotificationStore struct {
	db *gorm.DB
}

// NewNotificationStore creates a new NotificationStore.
func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Create inserts a notification row.
func (s *NotificationStore) Create(n *models.Notification) error {
	if err := s.db.Create(n).Error; err != nil {
		return InternalError("failed to create notification", err)
	}
	return nil
}

// Notify is the fire-and-forget variant used by mutation call sites: the
// status change it follows has already committed, so a failed insert is
// logged and dropped rather than rolled back.
func (s *NotificationStore) Notify(userID string, notifType models.NotificationType, title, body, entityTable, entityID string) {
	n := models.Notification{
		UserID:      userID,
		Type:        notifType,
		Title:       title,
		Body:        body,
		EntityTable: entityTable,
		EntityID:    entityID,
	}
	if err := s.Create(&n); err != nil {
		log.Warn().Err(err).Str("type", string(notifType)).Msg("notification insert failed")
	}
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationStore) ListForUser(userID string, unreadOnly bool) ([]models.Notification, error) {
	notifications := []models.Notification{}
	query := s.db.Where("user_id = ?", userID).Order("created_at desc")
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, InternalError("failed to list notifications", err)
	}
	return notifications, nil
}

// MarkRead stamps one notification as read, scoped to its owner.
func (s *NotificationStore) MarkRead(id, userID string) error {
	now := time.Now()
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", now)
	if res.Error != nil {
		return InternalError("failed to mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFoundError("notification not found or already read")
	}
	return nil
}

// MarkAllRead stamps every unread notification for the user.
func (s *NotificationStore) MarkAllRead(userID string) error {
	now := time.Now()
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error; err != nil {
		return InternalError("failed to mark notifications read", err)
	}
	return nil
}
