// Package chat holds the chat session controller: it owns the transcript,
// sends user text to the chatbot backend and records the bot's replies.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"shelfchat/internal/api"
	"shelfchat/internal/history"
)

const (
	// Placeholder is shown when the backend answered without a reply.
	Placeholder = "..."
	// ConnectionErrorText replaces the reply when the request failed.
	ConnectionErrorText = "Error: Could not connect to server"
)

// MessageSender is the part of the API client the session needs.
type MessageSender interface {
	SendMessage(ctx context.Context, sender, message string) (api.SendResponse, error)
}

// Session is one chat conversation. Failures never escape Send; they are
// turned into a bot message instead.
type Session struct {
	client MessageSender
	sender string
	log    *history.Log
	logger *slog.Logger

	mu       sync.Mutex
	input    string
	onAppend func(history.Message)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. Failed sends are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithOnAppend registers a callback invoked after every message lands in
// the transcript, in append order.
func WithOnAppend(fn func(history.Message)) Option {
	return func(s *Session) {
		s.onAppend = fn
	}
}

// NewSession creates a session that identifies itself to the backend as sender.
func NewSession(client MessageSender, sender string, opts ...Option) *Session {
	s := &Session{
		client: client,
		sender: sender,
		log:    history.NewLog(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetInput replaces the pending input buffer.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

// Input returns the pending input buffer.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Submit sends the pending input. The buffer is cleared before the request
// goes out; blank input leaves it untouched and sends nothing.
func (s *Session) Submit(ctx context.Context) bool {
	s.mu.Lock()
	text := s.input
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return false
	}
	s.input = ""
	s.mu.Unlock()

	return s.Send(ctx, text)
}

// Send appends a user message for text, asks the backend for a reply and
// appends the bot's answer. It reports whether a request was issued; blank
// text is ignored.
func (s *Session) Send(ctx context.Context, text string) bool {
	text = norm.NFC.String(strings.TrimSpace(text))
	if text == "" {
		return false
	}

	userMsg := s.append(history.Message{Origin: history.OriginUser, Text: text})

	reply := Placeholder
	resp, err := s.client.SendMessage(ctx, s.sender, text)
	switch {
	case err != nil:
		s.logger.Debug("chat send failed", "error", err)
		reply = ConnectionErrorText
	case resp.Reply != nil && *resp.Reply != "":
		reply = *resp.Reply
	}

	s.append(history.Message{Origin: history.OriginBot, Text: reply, ReplyTo: userMsg.ID})
	return true
}

// Messages returns a snapshot of the transcript.
func (s *Session) Messages() []history.Message {
	return s.log.Messages()
}

// Transcript exposes the underlying log.
func (s *Session) Transcript() *history.Log {
	return s.log
}

func (s *Session) append(msg history.Message) history.Message {
	stored := s.log.Append(msg)
	if s.onAppend != nil {
		s.onAppend(stored)
	}
	return stored
}
