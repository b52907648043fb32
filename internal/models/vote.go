package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteType is the kind of a vote. A user holds at most one vote per answer.
type VoteType string

const (
	Upvote   VoteType = "UPVOTE"
	Downvote VoteType = "DOWNVOTE"
)

// ParseVoteType normalises s case-insensitively.
func ParseVoteType(s string) (VoteType, bool) {
	switch VoteType(strings.ToUpper(strings.TrimSpace(s))) {
	case Upvote:
		return Upvote, true
	case Downvote:
		return Downvote, true
	default:
		return "", false
	}
}

// Vote tracks one user's vote on one answer.
type Vote struct {
	ID        string    `gorm:"type:varchar(128);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_votes_user_answer" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	AnswerID  string    `gorm:"type:varchar(128);not null;index;uniqueIndex:idx_votes_user_answer" json:"answer_id"`
	Answer    *Answer   `gorm:"foreignKey:AnswerID;constraint:OnDelete:CASCADE" json:"-"`
	VoteType  VoteType  `gorm:"type:varchar(10);not null;check:chk_votes_vote_type,vote_type IN ('UPVOTE','DOWNVOTE')" json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

type CastVoteRequest struct {
	VoteType string `json:"voteType" binding:"required"`
}

// VoteStats are raw counts.
type VoteStats struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

// Tally is the vote summary of one answer as seen by one caller.
type Tally struct {
	Upvotes         int64     `json:"upvotes"`
	Downvotes       int64     `json:"downvotes"`
	VoteCount       int64     `json:"voteCount"`
	CurrentUserVote *VoteType `json:"currentUserVote"`
}

// NewTally derives the net score from the counts.
func NewTally(stats VoteStats, current *VoteType) Tally {
	return Tally{
		Upvotes:         stats.Upvotes,
		Downvotes:       stats.Downvotes,
		VoteCount:       stats.Upvotes - stats.Downvotes,
		CurrentUserVote: current,
	}
}
