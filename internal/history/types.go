package history

import (
	"time"
)

// Origin tags who produced a message.
type Origin string

const (
	OriginUser Origin = "user"
	OriginBot  Origin = "bot"
)

// Message represents a single entry in a chat transcript
type Message struct {
	ID        string    `json:"id"`
	Origin    Origin    `json:"origin"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	ReplyTo   string    `json:"reply_to,omitempty"` // bot messages: ID of the user message answered
}

// IsUser reports whether the message came from the local user.
func (m Message) IsUser() bool {
	return m.Origin == OriginUser
}
