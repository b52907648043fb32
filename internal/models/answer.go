package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Answer struct {
	ID         string    `gorm:"type:varchar(128);primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	QuestionID string    `gorm:"type:varchar(128);index;not null" json:"question_id"`
	Question   *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     string    `gorm:"type:varchar(128);index;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type CreateAnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Content    string `json:"content" binding:"required,min=5"`
}

type UpdateAnswerRequest struct {
	Content string `json:"content" binding:"required,min=5"`
}

// AnswerView is an answer with its author and vote tally.
type AnswerView struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	QuestionID string    `json:"questionId"`
	Author     *UserRef  `json:"author"`
	Votes      Tally     `json:"votes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AnswerRecord is a stored answer as returned by update.
type AnswerRecord struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	QuestionID string    `json:"questionId"`
	UserID     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (a *Answer) Record() AnswerRecord {
	return AnswerRecord{
		ID:         a.ID,
		Content:    a.Content,
		QuestionID: a.QuestionID,
		UserID:     a.UserID,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
