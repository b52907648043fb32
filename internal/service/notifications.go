package service

import (
	"context"

	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/repository"
)

type NotificationService struct {
	notifications repository.NotificationRepository
}

func NewNotificationService(notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns the recipient's notifications newest first. Listing does not
// change read state.
func (s *NotificationService) List(ctx context.Context, recipientID string) ([]models.NotificationView, error) {
	rows, err := s.notifications.ListForRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	out := make([]models.NotificationView, 0, len(rows))
	for _, n := range rows {
		out = append(out, models.NotificationView{
			ID:          n.ID,
			Type:        n.Type,
			Content:     n.Content,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt,
			TriggeredBy: n.TriggeredBy.Ref(),
		})
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.notifications.CountUnread(ctx, recipientID)
}

// MarkRead fails with NOT_FOUND when the notification is not the recipient's.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, id string) error {
	return s.notifications.MarkRead(ctx, recipientID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, recipientID)
}
