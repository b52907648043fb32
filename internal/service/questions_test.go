package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
)

func TestQuestionCreate_NormalizesTags(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	q, err := f.questions.Create(context.Background(), alice.UserID, models.CreateQuestionRequest{
		Title:       "  Trimmed title  ",
		Description: "<p>Body text</p>",
		Tags:        []string{" go ", "", "sql"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Trimmed title", q.Title)
	assert.Equal(t, []string{"go", "sql"}, []string(q.Tags))
	assert.True(t, q.OwnedBy(alice.UserID))
}

func TestQuestionCreate_Validation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	tests := []struct {
		name string
		req  models.CreateQuestionRequest
	}{
		{"short title", models.CreateQuestionRequest{Title: "abc", Description: "long enough", Tags: []string{"go"}}},
		{"short description", models.CreateQuestionRequest{Title: "Long title", Description: "abc", Tags: []string{"go"}}},
		{"no tags", models.CreateQuestionRequest{Title: "Long title", Description: "long enough"}},
		{"blank tags", models.CreateQuestionRequest{Title: "Long title", Description: "long enough", Tags: []string{" ", ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.questions.Create(context.Background(), alice.UserID, tt.req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestQuestionList_SummaryFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	first := f.question(t, alice)
	second, err := f.questions.Create(ctx, bob.UserID, models.CreateQuestionRequest{
		Title:       "Postgres arrays",
		Description: "<p>How do <strong>text[]</strong> columns work?</p>",
		Tags:        []string{"sql"},
	})
	require.NoError(t, err)
	f.answer(t, bob, first.ID)
	f.answer(t, alice, first.ID)

	list, err := f.questions.List(ctx, models.QuestionFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, &models.UserRef{ID: bob.UserID, Name: "bob", Username: "bob"}, list[0].Author)
	assert.NotContains(t, list[0].Excerpt, "<p>")
	assert.Equal(t, int64(2), list[1].AnswerCount)

	tagged, err := f.questions.List(ctx, models.QuestionFilter{Tag: " sql "})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, second.ID, tagged[0].ID)
}

func TestQuestionGet_Detail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	q := f.question(t, alice)
	a1 := f.answer(t, bob, q.ID)
	a2 := f.answer(t, carol, q.ID)

	_, err := f.votes.Cast(ctx, alice.UserID, a1.ID, "UPVOTE")
	require.NoError(t, err)
	_, err = f.votes.Cast(ctx, bob.UserID, a2.ID, "DOWNVOTE")
	require.NoError(t, err)
	_, err = f.votes.Cast(ctx, carol.UserID, a1.ID, "UPVOTE")
	require.NoError(t, err)

	detail, err := f.questions.Get(ctx, q.ID, alice.UserID)
	require.NoError(t, err)

	assert.Equal(t, "alice", detail.Author.Username)
	require.Len(t, detail.Answers, 2)
	assert.Equal(t, a1.ID, detail.Answers[0].ID, "oldest first")
	assert.Equal(t, "bob", detail.Answers[0].Author.Username)
	assert.Equal(t, int64(2), detail.Answers[0].Votes.VoteCount)
	require.NotNil(t, detail.Answers[0].Votes.CurrentUserVote)
	assert.Nil(t, detail.Answers[1].Votes.CurrentUserVote)
	assert.Equal(t, models.VoteStats{Upvotes: 2, Downvotes: 1}, detail.VoteStats)

	_, err = f.questions.Get(ctx, "missing", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestQuestionUpdateDelete_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	q := f.question(t, alice)
	a := f.answer(t, bob, q.ID)
	_, err := f.votes.Cast(ctx, alice.UserID, a.ID, "UPVOTE")
	require.NoError(t, err)

	title := "A better question title"
	_, err = f.questions.Update(ctx, bob.UserID, q.ID, models.UpdateQuestionRequest{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.questions.Update(ctx, alice.UserID, q.ID, models.UpdateQuestionRequest{Tags: []string{"  "}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	updated, err := f.questions.Update(ctx, alice.UserID, q.ID, models.UpdateQuestionRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, []string{"go"}, []string(updated.Tags), "absent fields are kept")

	assert.ErrorIs(t, f.questions.Delete(ctx, bob.UserID, q.ID), apperr.ErrForbidden)
	require.NoError(t, f.questions.Delete(ctx, alice.UserID, q.ID))
	assert.ErrorIs(t, f.questions.Delete(ctx, alice.UserID, q.ID), apperr.ErrNotFound)

	_, err = f.store.Answers.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "answers cascade")
}

func TestQuestionPerUserListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	q1 := f.question(t, alice)
	q2 := f.question(t, alice)
	f.answer(t, bob, q1.ID)
	f.answer(t, bob, q2.ID)
	f.answer(t, bob, q1.ID)

	mine, err := f.questions.ListByUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := f.questions.ListByUser(ctx, bob.UserID)
	require.NoError(t, err)
	assert.Empty(t, none)

	answered, err := f.questions.ListAnsweredByUser(ctx, bob.UserID)
	require.NoError(t, err)
	require.Len(t, answered, 2, "one entry per question")
	assert.Equal(t, q2.ID, answered[0].ID, "latest first answer first")

	empty, err := f.questions.ListAnsweredByUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
