package memory

import (
	"context"
	"sort"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
)

type AnswerRepository struct {
	db *db
}

func (r *AnswerRepository) Create(_ context.Context, a *models.Answer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.questions[a.QuestionID]; !ok {
		return errReference()
	}
	if _, ok := r.db.users[a.UserID]; !ok {
		return errReference()
	}

	r.db.stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	cp := *a
	cp.User, cp.Question = nil, nil
	r.db.answers[cp.ID] = &cp
	return nil
}

func (r *AnswerRepository) GetByID(_ context.Context, id string) (*models.Answer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	a, ok := r.db.answers[id]
	if !ok {
		return nil, apperr.NotFound("answer not found")
	}
	cp := r.db.copyAnswer(a)
	return &cp, nil
}

func (r *AnswerRepository) ListByQuestion(_ context.Context, questionID string) ([]models.Answer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []models.Answer
	for _, a := range r.db.answers {
		if a.QuestionID == questionID {
			out = append(out, r.db.copyAnswer(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return r.db.newerFirst(out[j].ID, out[j].CreatedAt, out[i].ID, out[i].CreatedAt)
	})
	return out, nil
}

func (r *AnswerRepository) CountByQuestions(_ context.Context, questionIDs []string) (map[string]int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	wanted := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = true
	}

	counts := make(map[string]int64, len(questionIDs))
	for _, a := range r.db.answers {
		if wanted[a.QuestionID] {
			counts[a.QuestionID]++
		}
	}
	return counts, nil
}

func (r *AnswerRepository) Update(_ context.Context, a *models.Answer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.answers[a.ID]
	if !ok {
		return apperr.NotFound("answer not found")
	}
	stored.Content = a.Content
	stored.UpdatedAt = r.db.now()
	a.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *AnswerRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.answers[id]; !ok {
		return apperr.NotFound("answer not found")
	}
	r.db.deleteAnswer(id)
	return nil
}
