package memory

import (
	"context"
	"sort"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
)

type NotificationRepository struct {
	db *db
}

func (r *NotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[n.RecipientID]; !ok {
		return errReference()
	}
	if n.TriggeredByID != nil {
		if _, ok := r.db.users[*n.TriggeredByID]; !ok {
			return errReference()
		}
	}

	r.db.stamp(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	cp := r.db.copyNotification(n)
	cp.TriggeredBy = nil
	r.db.notifications[cp.ID] = &cp
	return nil
}

func (r *NotificationRepository) ListForRecipient(_ context.Context, recipientID string) ([]models.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []models.Notification
	for _, n := range r.db.notifications {
		if n.RecipientID == recipientID {
			out = append(out, r.db.copyNotification(n))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return r.db.newerFirst(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out, nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var count int64
	for _, n := range r.db.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, recipientID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n, ok := r.db.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return apperr.NotFound("notification not found")
	}
	n.IsRead = true
	n.UpdatedAt = r.db.now()
	return nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var updated int64
	for _, n := range r.db.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.UpdatedAt = r.db.now()
			updated++
		}
	}
	return updated, nil
}
