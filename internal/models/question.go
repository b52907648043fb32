package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Question struct {
	ID          string         `gorm:"type:varchar(128);primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	UserID      *string        `gorm:"type:varchar(128);index" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Tags        pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether userID owns the question.
func (q *Question) OwnedBy(userID string) bool {
	return q.UserID != nil && *q.UserID == userID
}

type CreateQuestionRequest struct {
	Title       string   `json:"title" binding:"required,min=5,max=255"`
	Description string   `json:"description" binding:"required,min=5"`
	Tags        []string `json:"tags" binding:"required,min=1,dive,required"`
}

// UpdateQuestionRequest replaces only the fields that are present.
type UpdateQuestionRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=5,max=255"`
	Description *string  `json:"description" binding:"omitempty,min=5"`
	Tags        []string `json:"tags" binding:"omitempty,min=1,dive,required"`
}

// QuestionFilter narrows the question list.
type QuestionFilter struct {
	Tag    string
	Search string
}

// QuestionSummary is a list item.
type QuestionSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Tags        []string  `json:"tags"`
	Author      *UserRef  `json:"author"`
	AnswerCount int64     `json:"answerCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// QuestionDetail is the full question view with its answers and vote statistics.
type QuestionDetail struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags"`
	Author      *UserRef     `json:"author"`
	Answers     []AnswerView `json:"answers"`
	VoteStats   VoteStats    `json:"voteStats"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// AnsweredQuestion is a question the user answered, keyed by the user's first answer time.
type AnsweredQuestion struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	AnsweredAt  time.Time      `json:"answeredAt"`
}

// QuestionRecord is a stored question as returned by create and update.
type QuestionRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	UserID      *string   `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (q *Question) Record() QuestionRecord {
	tags := []string(q.Tags)
	if tags == nil {
		tags = []string{}
	}
	return QuestionRecord{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Tags:        tags,
		UserID:      q.UserID,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}
