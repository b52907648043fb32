package postgres

import (
	"gorm.io/gorm"

	"github.com/stackit-qa/stackit/backend/internal/repository"
)

// NewStore builds every repository on one GORM handle.
func NewStore(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Users:         NewUserRepository(db),
		Questions:     NewQuestionRepository(db),
		Answers:       NewAnswerRepository(db),
		Votes:         NewVoteRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
