package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
)

type QuestionRepository struct {
	db *db
}

func (r *QuestionRepository) Create(_ context.Context, q *models.Question) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if q.UserID != nil {
		if _, ok := r.db.users[*q.UserID]; !ok {
			return errReference()
		}
	}

	r.db.stamp(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if q.Tags == nil {
		q.Tags = []string{}
	}
	cp := r.db.copyQuestion(q)
	cp.User = nil
	r.db.questions[cp.ID] = &cp
	return nil
}

func (r *QuestionRepository) GetByID(_ context.Context, id string) (*models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	q, ok := r.db.questions[id]
	if !ok {
		return nil, apperr.NotFound("question not found")
	}
	cp := r.db.copyQuestion(q)
	return &cp, nil
}

func (r *QuestionRepository) List(_ context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	out := make([]models.Question, 0, len(r.db.questions))
	for _, q := range r.db.questions {
		if filter.Tag != "" && !slices.Contains(q.Tags, filter.Tag) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(q.Title), search) {
			continue
		}
		out = append(out, r.db.copyQuestion(q))
	}
	sortQuestions(r.db, out)
	return out, nil
}

func (r *QuestionRepository) ListByUser(_ context.Context, userID string) ([]models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []models.Question
	for _, q := range r.db.questions {
		if q.OwnedBy(userID) {
			out = append(out, r.db.copyQuestion(q))
		}
	}
	sortQuestions(r.db, out)
	return out, nil
}

func (r *QuestionRepository) ListAnsweredByUser(_ context.Context, userID string) ([]models.AnsweredQuestion, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	first := make(map[string]time.Time)
	for _, a := range r.db.answers {
		if a.UserID != userID {
			continue
		}
		if at, ok := first[a.QuestionID]; !ok || a.CreatedAt.Before(at) {
			first[a.QuestionID] = a.CreatedAt
		}
	}

	out := make([]models.AnsweredQuestion, 0, len(first))
	for qid, at := range first {
		q, ok := r.db.questions[qid]
		if !ok {
			continue
		}
		out = append(out, models.AnsweredQuestion{
			ID:          q.ID,
			Title:       q.Title,
			Description: q.Description,
			Tags:        append([]string(nil), q.Tags...),
			AnsweredAt:  at,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return r.db.newerFirst(out[i].ID, out[i].AnsweredAt, out[j].ID, out[j].AnsweredAt)
	})
	return out, nil
}

func (r *QuestionRepository) Update(_ context.Context, q *models.Question) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.questions[q.ID]
	if !ok {
		return apperr.NotFound("question not found")
	}
	stored.Title = q.Title
	stored.Description = q.Description
	stored.Tags = append([]string(nil), q.Tags...)
	stored.UpdatedAt = r.db.now()
	q.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *QuestionRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.questions[id]; !ok {
		return apperr.NotFound("question not found")
	}
	delete(r.db.questions, id)
	delete(r.db.seq, id)
	for aid, a := range r.db.answers {
		if a.QuestionID == id {
			r.db.deleteAnswer(aid)
		}
	}
	return nil
}
