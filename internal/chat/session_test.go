package chat

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfchat/internal/api"
	"shelfchat/internal/history"
)

type fakeSender struct {
	mu    sync.Mutex
	calls []string
	reply *string
	err   error
}

func (f *fakeSender) SendMessage(_ context.Context, sender, message string) (api.SendResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sender+":"+message)
	if f.err != nil {
		return api.SendResponse{}, f.err
	}
	return api.SendResponse{Reply: f.reply}, nil
}

func strPtr(s string) *string { return &s }

func TestSend_BlankInputIsNoop(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		f := &fakeSender{reply: strPtr("x")}
		s := NewSession(f, "user1")

		assert.False(t, s.Send(context.Background(), in))
		assert.Empty(t, s.Messages())
		assert.Empty(t, f.calls)
	}
}

func TestSend_Success(t *testing.T) {
	f := &fakeSender{reply: strPtr("Hi! How can I help?")}
	s := NewSession(f, "user1")

	require.True(t, s.Send(context.Background(), "hello"))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, history.OriginUser, msgs[0].Origin)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, history.OriginBot, msgs[1].Origin)
	assert.Equal(t, "Hi! How can I help?", msgs[1].Text)
	assert.Equal(t, msgs[0].ID, msgs[1].ReplyTo)
	assert.Equal(t, []string{"user1:hello"}, f.calls)
}

func TestSend_TrimsInput(t *testing.T) {
	f := &fakeSender{reply: strPtr("ok")}
	s := NewSession(f, "user1")

	s.Send(context.Background(), "  hello  ")

	assert.Equal(t, "hello", s.Messages()[0].Text)
	assert.Equal(t, []string{"user1:hello"}, f.calls)
}

func TestSend_MissingReplyUsesPlaceholder(t *testing.T) {
	for name, reply := range map[string]*string{"absent": nil, "empty": strPtr("")} {
		t.Run(name, func(t *testing.T) {
			s := NewSession(&fakeSender{reply: reply}, "user1")
			s.Send(context.Background(), "hello")

			msgs := s.Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, Placeholder, msgs[1].Text)
		})
	}
}

func TestSend_FailureAppendsErrorMessage(t *testing.T) {
	s := NewSession(&fakeSender{err: errors.New("connection refused")}, "user1")

	assert.True(t, s.Send(context.Background(), "hello"))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Text, "user message must not be rolled back")
	assert.Equal(t, history.OriginBot, msgs[1].Origin)
	assert.Equal(t, ConnectionErrorText, msgs[1].Text)
}

func TestSend_UserMessageAppendedBeforeRequest(t *testing.T) {
	var order []history.Origin
	f := &fakeSender{reply: strPtr("pong")}

	var s *Session
	s = NewSession(f, "user1", WithOnAppend(func(m history.Message) {
		order = append(order, m.Origin)
		if m.Origin == history.OriginUser {
			assert.Empty(t, f.calls, "request issued before user message was recorded")
			assert.Equal(t, 1, s.Transcript().Len())
		}
	}))

	s.Send(context.Background(), "ping")
	assert.Equal(t, []history.Origin{history.OriginUser, history.OriginBot}, order)
}

func TestSend_HistoryIsAppendOnly(t *testing.T) {
	s := NewSession(&fakeSender{reply: strPtr("r")}, "user1")

	s.Send(context.Background(), "one")
	first := s.Messages()
	s.Send(context.Background(), "two")
	second := s.Messages()

	require.Len(t, second, 4)
	assert.Equal(t, first, second[:2])
}

func TestSend_NormalizesToNFC(t *testing.T) {
	f := &fakeSender{reply: strPtr("ok")}
	s := NewSession(f, "user1")

	// "e" followed by a combining acute accent.
	s.Send(context.Background(), "cafe\u0301")

	assert.Equal(t, "caf\u00e9", s.Messages()[0].Text)
}

func TestSubmit_ClearsInput(t *testing.T) {
	f := &fakeSender{reply: strPtr("ok")}
	s := NewSession(f, "user1")

	s.SetInput("hello")
	require.True(t, s.Submit(context.Background()))
	assert.Equal(t, "", s.Input())
	assert.Len(t, s.Messages(), 2)
}

func TestSubmit_BlankKeepsBuffer(t *testing.T) {
	f := &fakeSender{}
	s := NewSession(f, "user1")

	s.SetInput("   ")
	assert.False(t, s.Submit(context.Background()))
	assert.Equal(t, "   ", s.Input())
	assert.Empty(t, f.calls)
}

func TestSend_FailureIsNotLoggedAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s := NewSession(&fakeSender{err: errors.New("connection refused")}, "user1", WithLogger(logger))

	s.Send(context.Background(), "hello")

	assert.Empty(t, buf.String())
}

// gatedSender holds each request until its message's channel is closed.
type gatedSender struct {
	entered chan string
	release map[string]chan struct{}
}

func (g *gatedSender) SendMessage(_ context.Context, _, message string) (api.SendResponse, error) {
	g.entered <- message
	<-g.release[message]
	reply := "re " + message
	return api.SendResponse{Reply: &reply}, nil
}

func TestSend_OverlappingRepliesKeepArrivalOrderAndPairing(t *testing.T) {
	g := &gatedSender{
		entered: make(chan string),
		release: map[string]chan struct{}{
			"first":  make(chan struct{}),
			"second": make(chan struct{}),
		},
	}
	s := NewSession(g, "user1")

	var wg sync.WaitGroup
	send := func(text string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Send(context.Background(), text)
		}()
	}

	send("first")
	require.Equal(t, "first", <-g.entered)
	send("second")
	require.Equal(t, "second", <-g.entered)

	// The second request answers first.
	close(g.release["second"])
	require.Eventually(t, func() bool { return s.Transcript().Len() == 3 }, time.Second, 5*time.Millisecond)
	close(g.release["first"])
	wg.Wait()

	msgs := s.Messages()
	require.Len(t, msgs, 4)
	firstPrompt, secondPrompt := msgs[0], msgs[1]
	assert.Equal(t, "first", firstPrompt.Text)
	assert.Equal(t, "second", secondPrompt.Text)

	assert.Equal(t, history.OriginBot, msgs[2].Origin)
	assert.Equal(t, "re second", msgs[2].Text)
	assert.Equal(t, secondPrompt.ID, msgs[2].ReplyTo)

	assert.Equal(t, history.OriginBot, msgs[3].Origin)
	assert.Equal(t, "re first", msgs[3].Text)
	assert.Equal(t, firstPrompt.ID, msgs[3].ReplyTo)
}
