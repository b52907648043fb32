package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error, "insert notification", "notification")
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	var out []models.Notification
	err := r.db.WithContext(ctx).
		Preload("TriggeredBy").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "list notifications", "notification")
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "count unread notifications", "notification")
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return translate(res.Error, "mark notification read", "notification")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, translate(res.Error, "mark notifications read", "notification")
	}
	return res.RowsAffected, nil
}
