package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/repository"
	"github.com/stackit-qa/stackit/backend/internal/richtext"
	"github.com/stackit-qa/stackit/backend/internal/validation"
)

type QuestionService struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	votes     *VoteService
	validator *validation.Validator
	logger    logrus.FieldLogger
}

func NewQuestionService(store *repository.Store, votes *VoteService, v *validation.Validator, logger logrus.FieldLogger) *QuestionService {
	return &QuestionService{
		questions: store.Questions,
		answers:   store.Answers,
		votes:     votes,
		validator: v,
		logger:    logger,
	}
}

// normalizeTags trims every tag and drops empty ones, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *QuestionService) Create(ctx context.Context, userID string, req models.CreateQuestionRequest) (*models.Question, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Tags = normalizeTags(req.Tags)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	q := &models.Question{
		Title:       req.Title,
		Description: req.Description,
		UserID:      &userID,
		Tags:        req.Tags,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"question_id": q.ID, "user_id": userID}).Info("question created")
	return q, nil
}

func (s *QuestionService) List(ctx context.Context, filter models.QuestionFilter) ([]models.QuestionSummary, error) {
	filter.Tag = strings.TrimSpace(filter.Tag)
	filter.Search = strings.TrimSpace(filter.Search)

	questions, err := s.questions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, questions)
}

func (s *QuestionService) ListByUser(ctx context.Context, userID string) ([]models.QuestionSummary, error) {
	questions, err := s.questions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, questions)
}

func (s *QuestionService) ListAnsweredByUser(ctx context.Context, userID string) ([]models.AnsweredQuestion, error) {
	out, err := s.questions.ListAnsweredByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.AnsweredQuestion{}
	}
	return out, nil
}

func (s *QuestionService) summarize(ctx context.Context, questions []models.Question) ([]models.QuestionSummary, error) {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	counts, err := s.answers.CountByQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.QuestionSummary, 0, len(questions))
	for _, q := range questions {
		out = append(out, models.QuestionSummary{
			ID:          q.ID,
			Title:       q.Title,
			Excerpt:     richtext.Excerpt(q.Description, richtext.DefaultExcerptLength),
			Tags:        nonNilTags(q.Tags),
			Author:      q.User.Ref(),
			AnswerCount: counts[q.ID],
			CreatedAt:   q.CreatedAt,
			UpdatedAt:   q.UpdatedAt,
		})
	}
	return out, nil
}

// Get returns the question with its answers, oldest first, each carrying its
// tally as seen by viewerID, plus the vote totals across all answers.
func (s *QuestionService) Get(ctx context.Context, id, viewerID string) (*models.QuestionDetail, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Question not found")
		}
		return nil, err
	}

	answers, err := s.answers.ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(answers))
	for i, a := range answers {
		ids[i] = a.ID
	}
	tallies, err := s.votes.TallyMany(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}

	detail := &models.QuestionDetail{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Tags:        nonNilTags(q.Tags),
		Author:      q.User.Ref(),
		Answers:     make([]models.AnswerView, 0, len(answers)),
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
	for _, a := range answers {
		tally := tallies[a.ID]
		detail.VoteStats.Upvotes += tally.Upvotes
		detail.VoteStats.Downvotes += tally.Downvotes
		detail.Answers = append(detail.Answers, models.AnswerView{
			ID:         a.ID,
			Content:    a.Content,
			QuestionID: a.QuestionID,
			Author:     a.User.Ref(),
			Votes:      tally,
			CreatedAt:  a.CreatedAt,
			UpdatedAt:  a.UpdatedAt,
		})
	}
	return detail, nil
}

// Update applies the present fields of req to the caller's own question.
func (s *QuestionService) Update(ctx context.Context, userID, id string, req models.UpdateQuestionRequest) (*models.Question, error) {
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		req.Title = &t
	}
	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		req.Description = &d
	}
	if req.Tags != nil {
		req.Tags = normalizeTags(req.Tags)
		if len(req.Tags) == 0 {
			return nil, apperr.ValidationWithDetails("validation failed", map[string]string{
				"tags": "must contain at least 1 item(s)",
			})
		}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	q, err := s.ownedQuestion(ctx, userID, id, "You can only edit your own question")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		q.Title = *req.Title
	}
	if req.Description != nil {
		q.Description = *req.Description
	}
	if req.Tags != nil {
		q.Tags = req.Tags
	}
	if err := s.questions.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes the caller's own question with its answers and their votes.
func (s *QuestionService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownedQuestion(ctx, userID, id, "You can only delete your own question"); err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"question_id": id, "user_id": userID}).Info("question deleted")
	return nil
}

func (s *QuestionService) ownedQuestion(ctx context.Context, userID, id, forbidden string) (*models.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Question not found")
		}
		return nil, err
	}
	if !q.OwnedBy(userID) {
		return nil, apperr.Forbidden(forbidden)
	}
	return q, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
