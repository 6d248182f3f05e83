package types

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is one turn of the conversation. History is supplied by the
// caller on every query; the service keeps no conversation state of its own.
type ChatMessage struct {
	Sender Sender `json:"sender" validate:"required,oneof=user assistant"`
	Text   string `json:"text" validate:"required"`
}

type ProcessResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}
