package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeRequestSnapshot = "request_snapshot"
	TypeSelectAnswer    = "select_answer"
	TypeNavigate        = "navigate"

	// Server -> Client
	TypeSessionSnapshot = "session_snapshot"
	TypeError           = "error"
	TypePing            = "ping"
	TypePong            = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed message.
func NewMessage(msgType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: data}, nil
}

// Client Messages (incoming)

type SelectAnswerPayload struct {
	QuestionID  string `json:"question_id"`
	OptionIndex int    `json:"option_index"`
}

type NavigatePayload struct {
	Direction string `json:"direction"` // "next" or "previous"
}

// Server Messages (outgoing)

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
