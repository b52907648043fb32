package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/repository"
)

func newUser(t *testing.T, store *repository.Store, username string) *models.User {
	t.Helper()
	u := &models.User{Name: username, Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

func TestUsers_Uniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	u := newUser(t, store, "alice")
	assert.NotEmpty(t, u.ID)

	err := store.Users.Create(ctx, &models.User{Username: "alice", Email: "x@example.com"})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	err = store.Users.Create(ctx, &models.User{Username: "other", Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	got, err := store.Users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = store.Users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestQuestions_ListOrderAndFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	u := newUser(t, store, "alice")

	first := &models.Question{Title: "Goroutine leak", Description: "desc", UserID: &u.ID, Tags: []string{"go"}}
	second := &models.Question{Title: "SQL joins", Description: "desc", UserID: &u.ID, Tags: []string{"sql"}}
	require.NoError(t, store.Questions.Create(ctx, first))
	require.NoError(t, store.Questions.Create(ctx, second))

	all, err := store.Questions.List(ctx, models.QuestionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, "alice", all[0].User.Username)

	byTag, err := store.Questions.List(ctx, models.QuestionFilter{Tag: "go"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, first.ID, byTag[0].ID)

	bySearch, err := store.Questions.List(ctx, models.QuestionFilter{Search: "joins"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, second.ID, bySearch[0].ID)

	// Mutating a returned row never reaches the store.
	all[0].Tags[0] = "changed"
	again, err := store.Questions.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "sql", again.Tags[0])
}

func TestQuestions_DeleteCascades(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	owner := newUser(t, store, "alice")
	voter := newUser(t, store, "bob")

	q := &models.Question{Title: "Question", Description: "desc", UserID: &owner.ID, Tags: []string{"go"}}
	require.NoError(t, store.Questions.Create(ctx, q))
	a := &models.Answer{Content: "answer", QuestionID: q.ID, UserID: voter.ID}
	require.NoError(t, store.Answers.Create(ctx, a))
	require.NoError(t, store.Votes.Create(ctx, &models.Vote{UserID: voter.ID, AnswerID: a.ID, VoteType: models.Upvote}))

	require.NoError(t, store.Questions.Delete(ctx, q.ID))

	_, err := store.Answers.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	v, err := store.Votes.Find(ctx, voter.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.ErrorIs(t, store.Questions.Delete(ctx, q.ID), apperr.ErrNotFound)
}

func TestAnswers_ReferencesAndCounts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	u := newUser(t, store, "alice")

	err := store.Answers.Create(ctx, &models.Answer{Content: "orphan", QuestionID: "missing", UserID: u.ID})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	q := &models.Question{Title: "Question", Description: "desc", UserID: &u.ID, Tags: []string{"go"}}
	require.NoError(t, store.Questions.Create(ctx, q))
	a1 := &models.Answer{Content: "first", QuestionID: q.ID, UserID: u.ID}
	a2 := &models.Answer{Content: "second", QuestionID: q.ID, UserID: u.ID}
	require.NoError(t, store.Answers.Create(ctx, a1))
	require.NoError(t, store.Answers.Create(ctx, a2))

	list, err := store.Answers.ListByQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a1.ID, list[0].ID, "oldest first")

	counts, err := store.Answers.CountByQuestions(ctx, []string{q.ID, "other"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[q.ID])
	assert.Zero(t, counts["other"])

	answered, err := store.Questions.ListAnsweredByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, answered, 1)
	assert.Equal(t, a1.CreatedAt, answered[0].AnsweredAt)
}

func TestVotes_UniqueAndStats(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	u := newUser(t, store, "alice")
	q := &models.Question{Title: "Question", Description: "desc", UserID: &u.ID, Tags: []string{"go"}}
	require.NoError(t, store.Questions.Create(ctx, q))
	a := &models.Answer{Content: "answer", QuestionID: q.ID, UserID: u.ID}
	require.NoError(t, store.Answers.Create(ctx, a))

	v := &models.Vote{UserID: u.ID, AnswerID: a.ID, VoteType: models.Upvote}
	require.NoError(t, store.Votes.Create(ctx, v))
	err := store.Votes.Create(ctx, &models.Vote{UserID: u.ID, AnswerID: a.ID, VoteType: models.Downvote})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	require.NoError(t, store.Votes.UpdateType(ctx, v.ID, models.Downvote))

	mine, err := store.Votes.FindMany(ctx, u.ID, []string{a.ID, "none"})
	require.NoError(t, err)
	assert.Equal(t, map[string]models.VoteType{a.ID: models.Downvote}, mine)

	stats, err := store.Votes.Stats(ctx, []string{a.ID, "none"})
	require.NoError(t, err)
	assert.Equal(t, models.VoteStats{Downvotes: 1}, stats[a.ID])
	assert.Equal(t, models.VoteStats{}, stats["none"])

	require.NoError(t, store.Votes.DeleteByUserAndAnswer(ctx, u.ID, a.ID))
	found, err := store.Votes.Find(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestNotifications_OrderAndRead(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	alice := newUser(t, store, "alice")
	bob := newUser(t, store, "bob")

	for _, content := range []string{"one", "two", "three"} {
		n := &models.Notification{Type: models.NotificationAnswerOnQuestion, RecipientID: alice.ID, TriggeredByID: &bob.ID, Content: content}
		require.NoError(t, store.Notifications.Create(ctx, n))
	}

	list, err := store.Notifications.ListForRecipient(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"three", "two", "one"}, []string{list[0].Content, list[1].Content, list[2].Content})
	assert.Equal(t, "bob", list[0].TriggeredBy.Username)

	assert.ErrorIs(t, store.Notifications.MarkRead(ctx, bob.ID, list[0].ID), apperr.ErrNotFound)
	require.NoError(t, store.Notifications.MarkRead(ctx, alice.ID, list[0].ID))

	unread, err := store.Notifications.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	n, err := store.Notifications.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
