package terminal

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrAborted is returned when the user presses Ctrl-C at the prompt.
var ErrAborted = errors.New("input aborted")

// Prompter reads one line of user input.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewPrompter returns a line editor with history when stdin is a terminal,
// and a plain line reader otherwise.
func NewPrompter(historyPath string) Prompter {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return NewLineEditor(historyPath)
	}
	return NewReader(os.Stdin, os.Stdout)
}

// LineEditor provides readline-style editing and input history.
type LineEditor struct {
	line        *liner.State
	historyPath string
}

// NewLineEditor creates a line editor and loads history from historyPath.
func NewLineEditor(historyPath string) *LineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	e := &LineEditor{line: line, historyPath: historyPath}
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	return e
}

// ReadLine reads a line of input from the user
func (e *LineEditor) ReadLine(prompt string) (string, error) {
	input, err := e.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrAborted
		}
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		e.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (e *LineEditor) Close() error {
	if e.historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(e.historyPath), 0o700); err == nil {
			if f, err := os.OpenFile(e.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
				_, _ = e.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	return e.line.Close()
}

// Reader reads lines from a non-interactive input such as a pipe.
type Reader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewReader creates a plain line reader that echoes prompts to out.
func NewReader(in io.Reader, out io.Writer) *Reader {
	return &Reader{in: bufio.NewReader(in), out: out}
}

// ReadLine reads a line of input. A final line without a newline is
// returned before io.EOF.
func (r *Reader) ReadLine(prompt string) (string, error) {
	if r.out != nil && prompt != "" {
		_, _ = io.WriteString(r.out, prompt)
	}
	input, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimRight(input, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(input, "\r\n"), nil
}

// Close is a no-op.
func (r *Reader) Close() error {
	return nil
}
