package realtime

import "encoding/json"

// Event names on the wire.
const (
	EventJoin      = "join"
	EventJoined    = "joined"
	EventNewAnswer = "new-answer"
	EventError     = "error"
)

// Frame is one message in either direction: {"event": "...", "data": ...}.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// InboundFrame is a client message with its payload left undecoded.
type InboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type JoinedPayload struct {
	UserID string `json:"userId"`
}

type NewAnswerPayload struct {
	QuestionID string `json:"questionId"`
	Message    string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewAnswerFrame(questionID, message string) Frame {
	return Frame{Event: EventNewAnswer, Data: NewAnswerPayload{QuestionID: questionID, Message: message}}
}

func ErrorFrame(message string) Frame {
	return Frame{Event: EventError, Data: ErrorPayload{Message: message}}
}
