package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/stackit-qa/stackit/backend/internal/auth"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/realtime"
	"github.com/stackit-qa/stackit/backend/internal/repository"
	"github.com/stackit-qa/stackit/backend/internal/repository/memory"
	"github.com/stackit-qa/stackit/backend/internal/validation"
)

type emitted struct {
	UserID string
	Frame  realtime.Frame
}

type fakeEmitter struct {
	mu    sync.Mutex
	calls []emitted
}

func (f *fakeEmitter) EmitToUser(userID string, frame realtime.Frame) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, emitted{UserID: userID, Frame: frame})
	return 1
}

func (f *fakeEmitter) Calls() []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emitted(nil), f.calls...)
}

type published struct {
	Key     string
	Payload any
}

type fakePublisher struct {
	mu    sync.Mutex
	msgs  []published
	err   error
	close int
}

func (f *fakePublisher) Publish(_ context.Context, key string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{Key: key, Payload: payload})
	return f.err
}

func (f *fakePublisher) Close() error {
	f.close++
	return nil
}

func (f *fakePublisher) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		keys[i] = m.Key
	}
	return keys
}

// failingNotifications fails every insert and delegates everything else.
type failingNotifications struct {
	repository.NotificationRepository
}

func (failingNotifications) Create(context.Context, *models.Notification) error {
	return errors.New("notifications table unavailable")
}

type fixture struct {
	store         *repository.Store
	emitter       *fakeEmitter
	publisher     *fakePublisher
	auth          *AuthService
	questions     *QuestionService
	answers       *AnswerService
	votes         *VoteService
	notifications *NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	emitter := &fakeEmitter{}
	publisher := &fakePublisher{}
	v := validation.New()

	votes := NewVoteService(store.Answers, store.Votes, publisher, logger)
	return &fixture{
		store:         store,
		emitter:       emitter,
		publisher:     publisher,
		auth:          NewAuthService(store.Users, auth.NewTokenManager("secret", time.Hour), v, logger),
		questions:     NewQuestionService(store, votes, v, logger),
		answers:       NewAnswerService(store, emitter, publisher, v, logger),
		votes:         votes,
		notifications: NewNotificationService(store.Notifications),
	}
}

func (f *fixture) user(t *testing.T, username string) models.Identity {
	t.Helper()
	u := &models.User{Name: username, Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, f.store.Users.Create(context.Background(), u))
	return models.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Username: u.Username}
}

func (f *fixture) question(t *testing.T, owner models.Identity) *models.Question {
	t.Helper()
	q, err := f.questions.Create(context.Background(), owner.UserID, models.CreateQuestionRequest{
		Title:       "How do I use channels?",
		Description: "<p>I want to understand channels.</p>",
		Tags:        []string{"go"},
	})
	require.NoError(t, err)
	return q
}

func (f *fixture) answer(t *testing.T, author models.Identity, questionID string) *models.Answer {
	t.Helper()
	a, err := f.answers.Create(context.Background(), author, models.CreateAnswerRequest{
		QuestionID: questionID,
		Content:    "Use make(chan int) and range over it.",
	})
	require.NoError(t, err)
	return a
}
