// Package repository declares the persistence operations the services depend on.
//
// Lookups of a missing row return an apperr NOT_FOUND error; inserts that hit a
// unique constraint return ALREADY_EXISTS.
package repository

import (
	"context"

	"github.com/stackit-qa/stackit/backend/internal/models"
)

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}

// QuestionRepository persists questions. Reads preload the owning user.
type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error)
	ListByUser(ctx context.Context, userID string) ([]models.Question, error)
	ListAnsweredByUser(ctx context.Context, userID string) ([]models.AnsweredQuestion, error)
	Update(ctx context.Context, q *models.Question) error
	Delete(ctx context.Context, id string) error
}

// AnswerRepository persists answers. Reads preload the answering user.
type AnswerRepository interface {
	Create(ctx context.Context, a *models.Answer) error
	GetByID(ctx context.Context, id string) (*models.Answer, error)
	ListByQuestion(ctx context.Context, questionID string) ([]models.Answer, error)
	CountByQuestions(ctx context.Context, questionIDs []string) (map[string]int64, error)
	Update(ctx context.Context, a *models.Answer) error
	Delete(ctx context.Context, id string) error
}

// VoteRepository persists votes and aggregates them.
type VoteRepository interface {
	// Find returns the caller's vote on the answer, or nil when there is none.
	Find(ctx context.Context, userID, answerID string) (*models.Vote, error)
	// FindMany returns the user's vote kind per answer id; answers the user
	// has not voted on are absent.
	FindMany(ctx context.Context, userID string, answerIDs []string) (map[string]models.VoteType, error)
	Create(ctx context.Context, v *models.Vote) error
	UpdateType(ctx context.Context, id string, voteType models.VoteType) error
	Delete(ctx context.Context, id string) error
	DeleteByUserAndAnswer(ctx context.Context, userID, answerID string) error
	// Stats counts votes per kind for each answer id. Answers without votes map to zero counts.
	Stats(ctx context.Context, answerIDs []string) (map[string]models.VoteStats, error)
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// ListForRecipient returns the recipient's notifications newest first with TriggeredBy preloaded.
	ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID, id string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// Store bundles the repositories of one backing database.
type Store struct {
	Users         UserRepository
	Questions     QuestionRepository
	Answers       AnswerRepository
	Votes         VoteRepository
	Notifications NotificationRepository
}
