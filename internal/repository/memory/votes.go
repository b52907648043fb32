package memory

import (
	"context"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
)

type VoteRepository struct {
	db *db
}

func (r *VoteRepository) find(userID, answerID string) *models.Vote {
	for _, v := range r.db.votes {
		if v.UserID == userID && v.AnswerID == answerID {
			return v
		}
	}
	return nil
}

func (r *VoteRepository) Find(_ context.Context, userID, answerID string) (*models.Vote, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	v := r.find(userID, answerID)
	if v == nil {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *VoteRepository) FindMany(_ context.Context, userID string, answerIDs []string) (map[string]models.VoteType, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	wanted := make(map[string]bool, len(answerIDs))
	for _, id := range answerIDs {
		wanted[id] = true
	}

	out := make(map[string]models.VoteType)
	for _, v := range r.db.votes {
		if v.UserID == userID && wanted[v.AnswerID] {
			out[v.AnswerID] = v.VoteType
		}
	}
	return out, nil
}

func (r *VoteRepository) Create(_ context.Context, v *models.Vote) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.answers[v.AnswerID]; !ok {
		return errReference()
	}
	if _, ok := r.db.users[v.UserID]; !ok {
		return errReference()
	}
	if r.find(v.UserID, v.AnswerID) != nil {
		return apperr.AlreadyExists("vote already exists")
	}

	r.db.stamp(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	cp := *v
	cp.User, cp.Answer = nil, nil
	r.db.votes[cp.ID] = &cp
	return nil
}

func (r *VoteRepository) UpdateType(_ context.Context, id string, voteType models.VoteType) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if v, ok := r.db.votes[id]; ok {
		v.VoteType = voteType
		v.UpdatedAt = r.db.now()
	}
	return nil
}

func (r *VoteRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.votes, id)
	delete(r.db.seq, id)
	return nil
}

func (r *VoteRepository) DeleteByUserAndAnswer(_ context.Context, userID, answerID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if v := r.find(userID, answerID); v != nil {
		delete(r.db.votes, v.ID)
		delete(r.db.seq, v.ID)
	}
	return nil
}

func (r *VoteRepository) Stats(_ context.Context, answerIDs []string) (map[string]models.VoteStats, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stats := make(map[string]models.VoteStats, len(answerIDs))
	for _, id := range answerIDs {
		stats[id] = models.VoteStats{}
	}
	for _, v := range r.db.votes {
		s, ok := stats[v.AnswerID]
		if !ok {
			continue
		}
		switch v.VoteType {
		case models.Upvote:
			s.Upvotes++
		case models.Downvote:
			s.Downvotes++
		}
		stats[v.AnswerID] = s
	}
	return stats, nil
}
