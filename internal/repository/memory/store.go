// Package memory implements the repositories in process memory.
//
// It mirrors the Postgres constraints the services rely on: unique emails,
// usernames and (user, answer) votes, foreign keys that must resolve, and the
// cascades from questions to answers to votes. Rows are copied in and out so
// callers never share state with the store.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/repository"
)

type db struct {
	mu sync.RWMutex

	users         map[string]*models.User
	questions     map[string]*models.Question
	answers       map[string]*models.Answer
	votes         map[string]*models.Vote
	notifications map[string]*models.Notification

	// seq breaks ties between rows created within the same clock tick.
	seq  map[string]int64
	next int64
	now  func() time.Time
}

// NewStore returns an empty in-memory store.
func NewStore() *repository.Store {
	d := &db{
		users:         make(map[string]*models.User),
		questions:     make(map[string]*models.Question),
		answers:       make(map[string]*models.Answer),
		votes:         make(map[string]*models.Vote),
		notifications: make(map[string]*models.Notification),
		seq:           make(map[string]int64),
		now:           func() time.Time { return time.Now().UTC() },
	}
	return &repository.Store{
		Users:         &UserRepository{db: d},
		Questions:     &QuestionRepository{db: d},
		Answers:       &AnswerRepository{db: d},
		Votes:         &VoteRepository{db: d},
		Notifications: &NotificationRepository{db: d},
	}
}

// stamp assigns an id when missing and records creation order. Callers hold mu.
func (d *db) stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := d.now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
	d.next++
	d.seq[*id] = d.next
}

// newerFirst orders by creation time descending, newest insert winning ties.
func (d *db) newerFirst(aID string, aAt time.Time, bID string, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return d.seq[aID] > d.seq[bID]
}

func (d *db) userRef(id string) *models.User {
	u, ok := d.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (d *db) copyQuestion(q *models.Question) models.Question {
	cp := *q
	cp.Tags = append([]string(nil), q.Tags...)
	if q.UserID != nil {
		uid := *q.UserID
		cp.UserID = &uid
		cp.User = d.userRef(uid)
	}
	return cp
}

func (d *db) copyAnswer(a *models.Answer) models.Answer {
	cp := *a
	cp.User = d.userRef(a.UserID)
	cp.Question = nil
	return cp
}

func (d *db) copyNotification(n *models.Notification) models.Notification {
	cp := *n
	cp.Recipient = nil
	cp.TriggeredBy = nil
	if n.TriggeredByID != nil {
		tid := *n.TriggeredByID
		cp.TriggeredByID = &tid
		cp.TriggeredBy = d.userRef(tid)
	}
	return cp
}

// deleteAnswer removes an answer and its votes. Callers hold mu.
func (d *db) deleteAnswer(id string) {
	delete(d.answers, id)
	delete(d.seq, id)
	for vid, v := range d.votes {
		if v.AnswerID == id {
			delete(d.votes, vid)
			delete(d.seq, vid)
		}
	}
}

func errReference() error {
	return apperr.NotFound("referenced record not found")
}

func sortQuestions(d *db, qs []models.Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		return d.newerFirst(qs[i].ID, qs[i].CreatedAt, qs[j].ID, qs[j].CreatedAt)
	})
}
