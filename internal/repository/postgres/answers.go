package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
)

type AnswerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

func (r *AnswerRepository) Create(ctx context.Context, a *models.Answer) error {
	return translate(r.db.WithContext(ctx).Create(a).Error, "insert answer", "answer")
}

func (r *AnswerRepository) GetByID(ctx context.Context, id string) (*models.Answer, error) {
	var a models.Answer
	if err := r.db.WithContext(ctx).Preload("User").First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get answer", "answer")
	}
	return &a, nil
}

func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID string) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, translate(err, "list answers", "answer")
	}
	return answers, nil
}

func (r *AnswerRepository) CountByQuestions(ctx context.Context, questionIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(questionIDs))
	if len(questionIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		QuestionID string
		Total      int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Answer{}).
		Select("question_id, COUNT(*) AS total").
		Where("question_id IN ?", questionIDs).
		Group("question_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "count answers", "answer")
	}

	for _, row := range rows {
		counts[row.QuestionID] = row.Total
	}
	return counts, nil
}

func (r *AnswerRepository) Update(ctx context.Context, a *models.Answer) error {
	err := r.db.WithContext(ctx).Model(a).Update("content", a.Content).Error
	return translate(err, "update answer", "answer")
}

func (r *AnswerRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Answer{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "delete answer", "answer")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("answer not found")
	}
	return nil
}
