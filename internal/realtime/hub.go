// Package realtime keeps the registry of live sessions and the per-user
// channels they join, and delivers events to them.
package realtime

import (
	"errors"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"
)

var (
	ErrHubClosed       = errors.New("realtime hub is shut down")
	ErrUnknownSession  = errors.New("unknown session")
	ErrForeignChannel  = errors.New("cannot join another user's channel")
	ErrEmptyChannelKey = errors.New("user id is required")
)

const sessionBuffer = 32

// Session is one connected client. Frames queued with the hub are read from Send.
type Session struct {
	ID          string
	UserID      string
	ConnectedAt time.Time

	send chan Frame
	done chan struct{}
}

// Send delivers queued frames; it is closed when the session is unregistered.
func (s *Session) Send() <-chan Frame {
	return s.send
}

// Done is closed when the session is unregistered.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Hub maps sessions to the user channel they joined. A session is in at most
// one channel; sessions that never joined receive nothing.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	joined   map[string]string
	channels map[string]map[string]*Session
	shutdown bool

	logger logrus.FieldLogger
}

func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		joined:   make(map[string]string),
		channels: make(map[string]map[string]*Session),
		logger:   logger,
	}
}

// Register adds a session for the authenticated user.
func (h *Hub) Register(userID string) (*Session, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	s := &Session{
		ID:          "ws-" + id,
		UserID:      userID,
		ConnectedAt: time.Now(),
		send:        make(chan Frame, sessionBuffer),
		done:        make(chan struct{}),
	}

	h.mu.Lock()
	if h.shutdown {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.sessions[s.ID] = s
	total := len(h.sessions)
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"session_id":     s.ID,
		"user_id":        userID,
		"total_sessions": total,
	}).Info("realtime session connected")
	return s, nil
}

// Join puts the session in channel userID, leaving any channel it was in.
// Only the session's own user channel may be joined.
func (h *Hub) Join(sessionID, userID string) error {
	if userID == "" {
		return ErrEmptyChannelKey
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	if userID != s.UserID {
		return ErrForeignChannel
	}

	h.leaveLocked(sessionID)
	members, ok := h.channels[userID]
	if !ok {
		members = make(map[string]*Session)
		h.channels[userID] = members
	}
	members[sessionID] = s
	h.joined[sessionID] = userID

	h.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"user_id":    userID,
	}).Debug("realtime session joined channel")
	return nil
}

func (h *Hub) leaveLocked(sessionID string) {
	prev, ok := h.joined[sessionID]
	if !ok {
		return
	}
	delete(h.joined, sessionID)
	if members := h.channels[prev]; members != nil {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(h.channels, prev)
		}
	}
}

// Unregister removes the session and closes its channels. It is safe to call twice.
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	h.leaveLocked(sessionID)
	delete(h.sessions, sessionID)
	total := len(h.sessions)
	close(s.done)
	close(s.send)
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"session_id":     sessionID,
		"duration":       time.Since(s.ConnectedAt).String(),
		"total_sessions": total,
	}).Info("realtime session disconnected")
}

// Send queues a frame for one session without blocking.
func (h *Hub) Send(sessionID string, frame Frame) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return false
	}
	return h.offer(s, frame)
}

// EmitToUser queues frame for every session joined to userID and returns how
// many accepted it. Sessions with a full buffer drop the frame.
func (h *Hub) EmitToUser(userID string, frame Frame) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, s := range h.channels[userID] {
		if h.offer(s, frame) {
			delivered++
		}
	}

	h.logger.WithFields(logrus.Fields{
		"event":     frame.Event,
		"user_id":   userID,
		"delivered": delivered,
	}).Debug("realtime event emitted")
	return delivered
}

// offer is a non-blocking send. Callers hold at least the read lock, which
// keeps Unregister from closing s.send concurrently.
func (h *Hub) offer(s *Session, frame Frame) bool {
	select {
	case s.send <- frame:
		return true
	default:
		h.logger.WithFields(logrus.Fields{
			"session_id": s.ID,
			"event":      frame.Event,
		}).Warn("dropped realtime event for slow session")
		return false
	}
}

// ChannelOf returns the channel the session joined.
func (h *Hub) ChannelOf(sessionID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ch, ok := h.joined[sessionID]
	return ch, ok
}

// SessionCount returns the number of registered sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown unregisters every session and rejects new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.shutdown = true
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Unregister(id)
	}
	h.logger.Info("all realtime sessions disconnected")
}
