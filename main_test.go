package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"shelfchat/internal/history"
	"shelfchat/internal/ui"
)

func TestParseChatCommand(t *testing.T) {
	tests := []struct {
		line    string
		wantCmd string
		wantArg string
	}{
		{"/exit", "/exit", ""},
		{"  /quit  ", "/quit", ""},
		{"/history 5", "/history", "5"},
		{"/clear", "/clear", ""},
		{"exit", "", ""},
		{"quit", "", ""},
		{"hello there", "", ""},
		{"/unknown", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, arg := parseChatCommand(tt.line)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArg, arg)
		})
	}
}

func TestPrintHistory_LastN(t *testing.T) {
	transcript := history.NewLog()
	transcript.Append(history.Message{Origin: history.OriginUser, Text: "older question"})
	transcript.Append(history.Message{Origin: history.OriginBot, Text: "newest answer"})

	var buf bytes.Buffer
	printHistory(ui.NewDisplay(&buf, 80), transcript, "1")
	assert.Contains(t, buf.String(), "newest answer")
	assert.NotContains(t, buf.String(), "older question")

	buf.Reset()
	printHistory(ui.NewDisplay(&buf, 80), transcript, "")
	assert.Contains(t, buf.String(), "older question")

	buf.Reset()
	printHistory(ui.NewDisplay(&buf, 80), transcript, "zero")
	assert.Contains(t, buf.String(), "Usage: /history [n]")
}
