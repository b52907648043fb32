package service

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/repository"
)

// racingVotes hides the first lookup's row: it inserts a rival vote and then
// reports that none exists, as if another request cast in between.
type racingVotes struct {
	repository.VoteRepository
	rival models.VoteType
	raced bool
}

func (r *racingVotes) Find(ctx context.Context, userID, answerID string) (*models.Vote, error) {
	if !r.raced {
		r.raced = true
		err := r.VoteRepository.Create(ctx, &models.Vote{UserID: userID, AnswerID: answerID, VoteType: r.rival})
		return nil, err
	}
	return r.VoteRepository.Find(ctx, userID, answerID)
}

// countingVotes counts the per-user vote lookups.
type countingVotes struct {
	repository.VoteRepository
	find, findMany int
}

func (c *countingVotes) Find(ctx context.Context, userID, answerID string) (*models.Vote, error) {
	c.find++
	return c.VoteRepository.Find(ctx, userID, answerID)
}

func (c *countingVotes) FindMany(ctx context.Context, userID string, answerIDs []string) (map[string]models.VoteType, error) {
	c.findMany++
	return c.VoteRepository.FindMany(ctx, userID, answerIDs)
}

func TestVoteCast_SameKindTwiceTogglesOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	a := f.answer(t, alice, f.question(t, alice).ID)

	tally, err := f.votes.Cast(ctx, bob.UserID, a.ID, "upvote")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tally.Upvotes)
	require.NotNil(t, tally.CurrentUserVote)
	assert.Equal(t, models.Upvote, *tally.CurrentUserVote)

	tally, err = f.votes.Cast(ctx, bob.UserID, a.ID, "UPVOTE")
	require.NoError(t, err)
	assert.Equal(t, models.Tally{}, tally)

	v, err := f.store.Votes.Find(ctx, bob.UserID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, v, "no vote row remains")
}

func TestVoteCast_OppositeKindReplaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	a := f.answer(t, alice, f.question(t, alice).ID)

	_, err := f.votes.Cast(ctx, bob.UserID, a.ID, "UPVOTE")
	require.NoError(t, err)
	tally, err := f.votes.Cast(ctx, bob.UserID, a.ID, "DOWNVOTE")
	require.NoError(t, err)

	assert.Equal(t, int64(0), tally.Upvotes)
	assert.Equal(t, int64(1), tally.Downvotes)
	assert.Equal(t, int64(-1), tally.VoteCount)

	stats, err := f.store.Votes.Stats(ctx, []string{a.ID})
	require.NoError(t, err)
	assert.Equal(t, models.VoteStats{Downvotes: 1}, stats[a.ID], "exactly one DOWNVOTE row")
}

func TestVoteCast_NetScoreInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	a := f.answer(t, owner, f.question(t, owner).ID)

	voters := []models.Identity{f.user(t, "v1"), f.user(t, "v2"), f.user(t, "v3")}
	kinds := []string{"UPVOTE", "DOWNVOTE"}
	rng := rand.New(rand.NewPCG(1, 2))

	for range 60 {
		voter := voters[rng.IntN(len(voters))]
		tally, err := f.votes.Cast(ctx, voter.UserID, a.ID, kinds[rng.IntN(2)])
		require.NoError(t, err)
		assert.Equal(t, tally.Upvotes-tally.Downvotes, tally.VoteCount)
		assert.LessOrEqual(t, tally.Upvotes+tally.Downvotes, int64(len(voters)))
	}
}

func TestVoteCast_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	a := f.answer(t, alice, f.question(t, alice).ID)

	_, err := f.votes.Cast(ctx, alice.UserID, a.ID, "sideways")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.votes.Cast(ctx, "", a.ID, "UPVOTE")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.votes.Cast(ctx, alice.UserID, a.ID, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.votes.Cast(ctx, alice.UserID, "missing", "UPVOTE")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestVoteTallyAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	a := f.answer(t, alice, f.question(t, alice).ID)

	_, err := f.votes.Cast(ctx, bob.UserID, a.ID, "UPVOTE")
	require.NoError(t, err)
	_, err = f.votes.Cast(ctx, carol.UserID, a.ID, "UPVOTE")
	require.NoError(t, err)

	anon, err := f.votes.Tally(ctx, a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), anon.VoteCount)
	assert.Nil(t, anon.CurrentUserVote)

	mine, err := f.votes.Tally(ctx, a.ID, bob.UserID)
	require.NoError(t, err)
	require.NotNil(t, mine.CurrentUserVote)
	assert.Equal(t, models.Upvote, *mine.CurrentUserVote)

	removed, err := f.votes.Remove(ctx, bob.UserID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed.Upvotes)
	assert.Nil(t, removed.CurrentUserVote)

	again, err := f.votes.Remove(ctx, bob.UserID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, removed, again, "remove is idempotent")

	_, err = f.votes.Tally(ctx, "missing", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestVoteTallyMany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	q := f.question(t, alice)
	a1 := f.answer(t, alice, q.ID)
	a2 := f.answer(t, alice, q.ID)

	_, err := f.votes.Cast(ctx, bob.UserID, a2.ID, "DOWNVOTE")
	require.NoError(t, err)

	tallies, err := f.votes.TallyMany(ctx, []string{a1.ID, a2.ID}, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.Tally{}, tallies[a1.ID])
	assert.Equal(t, int64(-1), tallies[a2.ID].VoteCount)
	require.NotNil(t, tallies[a2.ID].CurrentUserVote)
	assert.Equal(t, models.Downvote, *tallies[a2.ID].CurrentUserVote)
}

func TestVoteCast_LostInsertRaceAppliesToWinningRow(t *testing.T) {
	tests := []struct {
		name    string
		rival   models.VoteType
		cast    string
		want    models.Tally
		wantRow *models.VoteType
	}{
		{"same kind toggles the rival off", models.Upvote, "UPVOTE", models.Tally{}, nil},
		{"opposite kind switches the rival", models.Upvote, "DOWNVOTE", models.NewTally(models.VoteStats{Downvotes: 1}, ptr(models.Downvote)), ptr(models.Downvote)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			alice := f.user(t, "alice")
			bob := f.user(t, "bob")
			a := f.answer(t, alice, f.question(t, alice).ID)

			logger, _ := test.NewNullLogger()
			votes := NewVoteService(f.store.Answers, &racingVotes{VoteRepository: f.store.Votes, rival: tt.rival}, f.publisher, logger)

			tally, err := votes.Cast(ctx, bob.UserID, a.ID, tt.cast)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tally)

			row, err := f.store.Votes.Find(ctx, bob.UserID, a.ID)
			require.NoError(t, err)
			if tt.wantRow == nil {
				assert.Nil(t, row)
				return
			}
			require.NotNil(t, row)
			assert.Equal(t, *tt.wantRow, row.VoteType)
		})
	}
}

func TestVoteTallyMany_SingleLookupForViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	q := f.question(t, alice)
	a1 := f.answer(t, alice, q.ID)
	a2 := f.answer(t, alice, q.ID)
	a3 := f.answer(t, alice, q.ID)

	_, err := f.votes.Cast(ctx, bob.UserID, a1.ID, "UPVOTE")
	require.NoError(t, err)
	_, err = f.votes.Cast(ctx, bob.UserID, a3.ID, "DOWNVOTE")
	require.NoError(t, err)

	counting := &countingVotes{VoteRepository: f.store.Votes}
	logger, _ := test.NewNullLogger()
	votes := NewVoteService(f.store.Answers, counting, f.publisher, logger)

	tallies, err := votes.TallyMany(ctx, []string{a1.ID, a2.ID, a3.ID}, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.findMany)
	assert.Zero(t, counting.find)

	assert.Equal(t, models.Upvote, *tallies[a1.ID].CurrentUserVote)
	assert.Nil(t, tallies[a2.ID].CurrentUserVote)
	assert.Equal(t, models.Downvote, *tallies[a3.ID].CurrentUserVote)

	_, err = votes.TallyMany(ctx, []string{a1.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, counting.findMany, "anonymous viewers need no lookup")
}

func ptr[T any](v T) *T { return &v }
