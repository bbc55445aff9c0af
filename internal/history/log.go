package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log is an append-only, in-memory chat transcript. It lives for one
// session and is never written to disk.
type Log struct {
	mu       sync.RWMutex
	messages []Message
}

// NewLog creates an empty transcript
func NewLog() *Log {
	return &Log{messages: []Message{}}
}

// Append stores msg, filling in ID and Timestamp when unset, and returns
// the stored copy.
func (l *Log) Append(msg Message) Message {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
	return msg
}

// Messages returns a copy of the full transcript in append order
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Recent returns a copy of the last n messages
func (l *Log) Recent(n int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || len(l.messages) == 0 {
		return []Message{}
	}
	start := 0
	if len(l.messages) > n {
		start = len(l.messages) - n
	}
	out := make([]Message, len(l.messages)-start)
	copy(out, l.messages[start:])
	return out
}

// Len returns the number of messages
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Find returns the message with the given ID.
func (l *Log) Find(id string) (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, m := range l.messages {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}
