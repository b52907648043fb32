package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/stackit-qa/stackit/backend/internal/models"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) Find(ctx context.Context, userID, answerID string) (*models.Vote, error) {
	var v models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND answer_id = ?", userID, answerID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "find vote", "vote")
	}
	return &v, nil
}

func (r *VoteRepository) FindMany(ctx context.Context, userID string, answerIDs []string) (map[string]models.VoteType, error) {
	out := make(map[string]models.VoteType)
	if userID == "" || len(answerIDs) == 0 {
		return out, nil
	}

	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Select("answer_id", "vote_type").
		Where("user_id = ? AND answer_id IN ?", userID, answerIDs).
		Find(&votes).Error
	if err != nil {
		return nil, translate(err, "find votes", "vote")
	}

	for _, v := range votes {
		out[v.AnswerID] = v.VoteType
	}
	return out, nil
}

func (r *VoteRepository) Create(ctx context.Context, v *models.Vote) error {
	return translate(r.db.WithContext(ctx).Create(v).Error, "insert vote", "vote")
}

func (r *VoteRepository) UpdateType(ctx context.Context, id string, voteType models.VoteType) error {
	err := r.db.WithContext(ctx).
		Model(&models.Vote{ID: id}).
		Update("vote_type", voteType).Error
	return translate(err, "update vote", "vote")
}

func (r *VoteRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Delete(&models.Vote{}, "id = ?", id).Error
	return translate(err, "delete vote", "vote")
}

func (r *VoteRepository) DeleteByUserAndAnswer(ctx context.Context, userID, answerID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND answer_id = ?", userID, answerID).
		Delete(&models.Vote{}).Error
	return translate(err, "delete vote", "vote")
}

func (r *VoteRepository) Stats(ctx context.Context, answerIDs []string) (map[string]models.VoteStats, error) {
	stats := make(map[string]models.VoteStats, len(answerIDs))
	if len(answerIDs) == 0 {
		return stats, nil
	}
	for _, id := range answerIDs {
		stats[id] = models.VoteStats{}
	}

	var rows []struct {
		AnswerID string
		VoteType models.VoteType
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("answer_id, vote_type, COUNT(*) AS total").
		Where("answer_id IN ?", answerIDs).
		Group("answer_id, vote_type").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "count votes", "vote")
	}

	for _, row := range rows {
		s := stats[row.AnswerID]
		switch row.VoteType {
		case models.Upvote:
			s.Upvotes = row.Total
		case models.Downvote:
			s.Downvotes = row.Total
		}
		stats[row.AnswerID] = s
	}
	return stats, nil
}
