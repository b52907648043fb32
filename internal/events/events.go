// Package events publishes domain events to the message broker.
package events

import (
	"context"
	"time"

	"github.com/stackit-qa/stackit/backend/internal/models"
)

// Routing keys on the topic exchange.
const (
	KeyAnswerCreated       = "answer.created"
	KeyNotificationCreated = "notification.created"
	KeyVoteCast            = "vote.cast"
)

// Publisher delivers a payload under a routing key. Callers treat delivery as
// best effort and only log failures.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

type AnswerCreated struct {
	AnswerID   string    `json:"answerId"`
	QuestionID string    `json:"questionId"`
	AuthorID   string    `json:"authorId"`
	OwnerID    *string   `json:"ownerId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type NotificationCreated struct {
	NotificationID string                  `json:"notificationId"`
	Type           models.NotificationType `json:"type"`
	RecipientID    string                  `json:"recipientId"`
	TriggeredByID  *string                 `json:"triggeredById"`
	Content        string                  `json:"content"`
}

type VoteCast struct {
	AnswerID  string           `json:"answerId"`
	UserID    string           `json:"userId"`
	VoteType  *models.VoteType `json:"voteType"`
	Upvotes   int64            `json:"upvotes"`
	Downvotes int64            `json:"downvotes"`
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
