package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/realtime"
	"github.com/stackit-qa/stackit/backend/internal/response"
)

// RealtimeHandler upgrades authenticated requests to WebSocket sessions.
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	conn     realtime.ConnConfig
	logger   logrus.FieldLogger
}

func NewRealtimeHandler(hub *realtime.Hub, allowedOrigins []string, conn realtime.ConnConfig, logger logrus.FieldLogger) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		conn:   conn,
		logger: logger,
	}
}

// originChecker allows requests without an Origin header, the listed
// origins, and anything when the list contains "*".
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

// Serve registers a session for the caller and blocks until the connection closes.
func (h *RealtimeHandler) Serve(c *gin.Context) {
	id := caller(c)

	session, err := h.hub.Register(id.UserID)
	if err != nil {
		response.Error(c, apperr.Internal("register realtime session", err), h.logger)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.Unregister(session.ID)
		h.logger.WithField("user_id", id.UserID).WithError(err).Debug("websocket upgrade failed")
		return
	}

	h.hub.Serve(conn, session, h.conn)
}
