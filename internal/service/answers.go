package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/events"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/realtime"
	"github.com/stackit-qa/stackit/backend/internal/repository"
	"github.com/stackit-qa/stackit/backend/internal/validation"
)

// Emitter pushes a frame to every live session joined to a user's channel.
type Emitter interface {
	EmitToUser(userID string, frame realtime.Frame) int
}

type AnswerService struct {
	questions     repository.QuestionRepository
	answers       repository.AnswerRepository
	notifications repository.NotificationRepository
	emitter       Emitter
	publisher     events.Publisher
	validator     *validation.Validator
	logger        logrus.FieldLogger
}

func NewAnswerService(store *repository.Store, emitter Emitter, publisher events.Publisher, v *validation.Validator, logger logrus.FieldLogger) *AnswerService {
	return &AnswerService{
		questions:     store.Questions,
		answers:       store.Answers,
		notifications: store.Notifications,
		emitter:       emitter,
		publisher:     publisher,
		validator:     v,
		logger:        logger,
	}
}

// AnsweredMessage is the text of the push event and the notification.
func AnsweredMessage(username string) string {
	return username + " answered your question."
}

// Create stores the answer and, when someone other than the question owner
// wrote it, pushes a new-answer event to the owner and records a notification.
// Neither side effect can fail the request once the answer is stored.
func (s *AnswerService) Create(ctx context.Context, author models.Identity, req models.CreateAnswerRequest) (*models.Answer, error) {
	if author.UserID == "" {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	req.QuestionID = strings.TrimSpace(req.QuestionID)
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{
		QuestionID: req.QuestionID,
		Content:    req.Content,
		UserID:     author.UserID,
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Internal("Failed to create answer", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"answer_id":   answer.ID,
		"question_id": answer.QuestionID,
		"author_id":   author.UserID,
	})
	log.Info("answer created")

	if question.UserID != nil && *question.UserID != author.UserID {
		s.notifyOwner(ctx, log, *question.UserID, author, answer)
	}

	if err := s.publisher.Publish(ctx, events.KeyAnswerCreated, events.AnswerCreated{
		AnswerID:   answer.ID,
		QuestionID: answer.QuestionID,
		AuthorID:   author.UserID,
		OwnerID:    question.UserID,
		CreatedAt:  answer.CreatedAt,
	}); err != nil {
		log.WithError(err).Warn("publish answer event failed")
	}

	return answer, nil
}

// notifyOwner runs the push and the notification insert independently.
func (s *AnswerService) notifyOwner(ctx context.Context, log logrus.FieldLogger, ownerID string, author models.Identity, answer *models.Answer) {
	message := AnsweredMessage(author.Username)

	delivered := s.emitter.EmitToUser(ownerID, realtime.NewAnswerFrame(answer.QuestionID, message))
	log.WithFields(logrus.Fields{"owner_id": ownerID, "sessions": delivered}).Debug("new-answer pushed")

	authorID := author.UserID
	n := &models.Notification{
		Type:          models.NotificationAnswerOnQuestion,
		RecipientID:   ownerID,
		TriggeredByID: &authorID,
		Content:       message,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		log.WithField("owner_id", ownerID).WithError(err).Error("persist notification failed")
		return
	}

	if err := s.publisher.Publish(ctx, events.KeyNotificationCreated, events.NotificationCreated{
		NotificationID: n.ID,
		Type:           n.Type,
		RecipientID:    n.RecipientID,
		TriggeredByID:  n.TriggeredByID,
		Content:        n.Content,
	}); err != nil {
		log.WithError(err).Warn("publish notification event failed")
	}
}

// Update replaces the content of the caller's own answer.
func (s *AnswerService) Update(ctx context.Context, userID, answerID string, req models.UpdateAnswerRequest) (*models.Answer, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	answer, err := s.ownedAnswer(ctx, userID, answerID, "You can only edit your own answer")
	if err != nil {
		return nil, err
	}

	answer.Content = req.Content
	if err := s.answers.Update(ctx, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// Delete removes the caller's own answer and its votes.
func (s *AnswerService) Delete(ctx context.Context, userID, answerID string) error {
	if _, err := s.ownedAnswer(ctx, userID, answerID, "You can only delete your own answer"); err != nil {
		return err
	}
	return s.answers.Delete(ctx, answerID)
}

func (s *AnswerService) ownedAnswer(ctx context.Context, userID, answerID, forbidden string) (*models.Answer, error) {
	answer, err := s.answers.GetByID(ctx, answerID)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Answer not found")
		}
		return nil, err
	}
	if answer.UserID != userID {
		return nil, apperr.Forbidden(forbidden)
	}
	return answer, nil
}
