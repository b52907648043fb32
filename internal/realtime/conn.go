package realtime

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// ConnConfig holds the keepalive timing of a WebSocket session.
type ConnConfig struct {
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	ReadLimit    int64
}

func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		PingInterval: 30 * time.Second,
		PongWait:     60 * time.Second,
		WriteWait:    10 * time.Second,
		ReadLimit:    4096,
	}
}

// Serve pumps frames between conn and session s until either side goes away,
// then unregisters the session. It blocks for the lifetime of the connection.
func (h *Hub) Serve(conn *websocket.Conn, s *Session, cfg ConnConfig) {
	go h.writeLoop(conn, s, cfg)
	h.readLoop(conn, s, cfg)
}

func (h *Hub) readLoop(conn *websocket.Conn, s *Session, cfg ConnConfig) {
	defer h.Unregister(s.ID)

	conn.SetReadLimit(cfg.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithField("session_id", s.ID).WithError(err).Warn("realtime read failed")
			}
			return
		}

		var in InboundFrame
		if err := json.Unmarshal(data, &in); err != nil {
			h.Send(s.ID, ErrorFrame("malformed frame"))
			continue
		}
		h.handleInbound(s, in)
	}
}

func (h *Hub) handleInbound(s *Session, in InboundFrame) {
	switch in.Event {
	case EventJoin:
		userID, err := decodeJoin(in.Data)
		if err != nil {
			h.Send(s.ID, ErrorFrame(err.Error()))
			return
		}
		if err := h.Join(s.ID, userID); err != nil {
			h.Send(s.ID, ErrorFrame(err.Error()))
			return
		}
		h.Send(s.ID, Frame{Event: EventJoined, Data: JoinedPayload{UserID: userID}})
	default:
		h.Send(s.ID, ErrorFrame("unknown event "+in.Event))
	}
}

// decodeJoin accepts either a bare user id string or {"userId": "..."}.
func decodeJoin(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var obj JoinedPayload
	if err := json.Unmarshal(raw, &obj); err == nil && obj.UserID != "" {
		return obj.UserID, nil
	}
	return "", errors.New("join expects a user id")
}

func (h *Hub) writeLoop(conn *websocket.Conn, s *Session, cfg ConnConfig) {
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				h.logger.WithFields(logrus.Fields{"session_id": s.ID, "event": frame.Event}).WithError(err).Debug("realtime write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
