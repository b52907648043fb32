package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Create(ctx context.Context, q *models.Question) error {
	return translate(r.db.WithContext(ctx).Create(q).Error, "insert question", "question")
}

func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question
	if err := r.db.WithContext(ctx).Preload("User").First(&q, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get question", "question")
	}
	return &q, nil
}

func (r *QuestionRepository) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	query := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+escapeLike(filter.Search)+"%")
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, translate(err, "list questions", "question")
	}
	return questions, nil
}

func (r *QuestionRepository) ListByUser(ctx context.Context, userID string) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&questions).Error
	if err != nil {
		return nil, translate(err, "list user questions", "question")
	}
	return questions, nil
}

func (r *QuestionRepository) ListAnsweredByUser(ctx context.Context, userID string) ([]models.AnsweredQuestion, error) {
	firstAnswers := r.db.
		Model(&models.Answer{}).
		Select("question_id, MIN(created_at) AS answered_at").
		Where("user_id = ?", userID).
		Group("question_id")

	var out []models.AnsweredQuestion
	err := r.db.WithContext(ctx).
		Table("questions").
		Select("questions.id, questions.title, questions.description, questions.tags, ua.answered_at").
		Joins("JOIN (?) AS ua ON ua.question_id = questions.id", firstAnswers).
		Order("ua.answered_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, translate(err, "list answered questions", "question")
	}
	return out, nil
}

func (r *QuestionRepository) Update(ctx context.Context, q *models.Question) error {
	err := r.db.WithContext(ctx).
		Model(q).
		Select("title", "description", "tags").
		Updates(q).Error
	return translate(err, "update question", "question")
}

// Delete removes the question; answers and their votes go with it through ON DELETE CASCADE.
func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Question{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "delete question", "question")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("question not found")
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
