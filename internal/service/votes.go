package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/events"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/repository"
)

// VoteService counts and casts votes on answers.
//
// Casting is a read-modify-write without a transaction: the unique index on
// (user_id, answer_id) keeps at most one row per pair, and an insert that
// loses a race applies the cast to the row that won.
type VoteService struct {
	answers   repository.AnswerRepository
	votes     repository.VoteRepository
	publisher events.Publisher
	logger    logrus.FieldLogger
}

func NewVoteService(answers repository.AnswerRepository, votes repository.VoteRepository, publisher events.Publisher, logger logrus.FieldLogger) *VoteService {
	return &VoteService{answers: answers, votes: votes, publisher: publisher, logger: logger}
}

// Tally returns the counts of an answer and, when userID is set, that user's vote.
func (s *VoteService) Tally(ctx context.Context, answerID, userID string) (models.Tally, error) {
	if strings.TrimSpace(answerID) == "" {
		return models.Tally{}, apperr.Validation("Answer ID is required")
	}
	if _, err := s.answers.GetByID(ctx, answerID); err != nil {
		return models.Tally{}, err
	}
	return s.tally(ctx, answerID, userID)
}

func (s *VoteService) tally(ctx context.Context, answerID, userID string) (models.Tally, error) {
	stats, err := s.votes.Stats(ctx, []string{answerID})
	if err != nil {
		return models.Tally{}, err
	}

	var current *models.VoteType
	if userID != "" {
		v, err := s.votes.Find(ctx, userID, answerID)
		if err != nil {
			return models.Tally{}, err
		}
		if v != nil {
			kind := v.VoteType
			current = &kind
		}
	}
	return models.NewTally(stats[answerID], current), nil
}

// TallyMany returns a tally per answer id, with userID's own votes when set.
func (s *VoteService) TallyMany(ctx context.Context, answerIDs []string, userID string) (map[string]models.Tally, error) {
	stats, err := s.votes.Stats(ctx, answerIDs)
	if err != nil {
		return nil, err
	}

	mine := map[string]models.VoteType{}
	if userID != "" && len(answerIDs) > 0 {
		if mine, err = s.votes.FindMany(ctx, userID, answerIDs); err != nil {
			return nil, err
		}
	}

	out := make(map[string]models.Tally, len(answerIDs))
	for _, id := range answerIDs {
		var current *models.VoteType
		if kind, ok := mine[id]; ok {
			current = &kind
		}
		out[id] = models.NewTally(stats[id], current)
	}
	return out, nil
}

// Cast applies a vote: a new vote is inserted, the same kind again removes
// it, and the opposite kind replaces it.
func (s *VoteService) Cast(ctx context.Context, userID, answerID, voteType string) (models.Tally, error) {
	if userID == "" || strings.TrimSpace(answerID) == "" || strings.TrimSpace(voteType) == "" {
		return models.Tally{}, apperr.Validation("User ID and vote type required")
	}
	kind, ok := models.ParseVoteType(voteType)
	if !ok {
		return models.Tally{}, apperr.ValidationWithDetails("Invalid vote type", map[string]string{
			"voteType": "must be one of: UPVOTE DOWNVOTE",
		})
	}

	if _, err := s.answers.GetByID(ctx, answerID); err != nil {
		return models.Tally{}, err
	}

	existing, err := s.votes.Find(ctx, userID, answerID)
	if err != nil {
		return models.Tally{}, err
	}

	err = s.apply(ctx, existing, userID, answerID, kind)
	if apperr.Is(err, apperr.ErrAlreadyExists) {
		// A concurrent cast inserted the row first; the rule applies to that row.
		s.logger.WithFields(logrus.Fields{"answer_id": answerID, "user_id": userID}).Debug("vote insert lost race")
		existing, err = s.votes.Find(ctx, userID, answerID)
		if err == nil {
			err = s.apply(ctx, existing, userID, answerID, kind)
		}
		if apperr.Is(err, apperr.ErrAlreadyExists) {
			err = nil
		}
	}
	if err != nil {
		return models.Tally{}, err
	}

	tally, err := s.tally(ctx, answerID, userID)
	if err != nil {
		return models.Tally{}, err
	}

	s.publish(ctx, events.VoteCast{
		AnswerID:  answerID,
		UserID:    userID,
		VoteType:  tally.CurrentUserVote,
		Upvotes:   tally.Upvotes,
		Downvotes: tally.Downvotes,
	})
	return tally, nil
}

// apply inserts, toggles off or switches the vote against the existing row.
func (s *VoteService) apply(ctx context.Context, existing *models.Vote, userID, answerID string, kind models.VoteType) error {
	switch {
	case existing == nil:
		return s.votes.Create(ctx, &models.Vote{UserID: userID, AnswerID: answerID, VoteType: kind})
	case existing.VoteType == kind:
		return s.votes.Delete(ctx, existing.ID)
	default:
		return s.votes.UpdateType(ctx, existing.ID, kind)
	}
}

// Remove deletes the caller's vote if there is one.
func (s *VoteService) Remove(ctx context.Context, userID, answerID string) (models.Tally, error) {
	if userID == "" {
		return models.Tally{}, apperr.Validation("User ID is required")
	}
	if strings.TrimSpace(answerID) == "" {
		return models.Tally{}, apperr.Validation("Answer ID is required")
	}

	if err := s.votes.DeleteByUserAndAnswer(ctx, userID, answerID); err != nil {
		return models.Tally{}, err
	}

	stats, err := s.votes.Stats(ctx, []string{answerID})
	if err != nil {
		return models.Tally{}, err
	}
	tally := models.NewTally(stats[answerID], nil)

	s.publish(ctx, events.VoteCast{AnswerID: answerID, UserID: userID, Upvotes: tally.Upvotes, Downvotes: tally.Downvotes})
	return tally, nil
}

func (s *VoteService) publish(ctx context.Context, evt events.VoteCast) {
	if err := s.publisher.Publish(ctx, events.KeyVoteCast, evt); err != nil {
		s.logger.WithField("answer_id", evt.AnswerID).WithError(err).Warn("publish vote event failed")
	}
}
