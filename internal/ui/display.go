package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"shelfchat/internal/history"
)

// Display handles terminal output with colors and formatting
type Display struct {
	out      io.Writer
	color    bool
	width    int
	renderer *glamour.TermRenderer

	mu          sync.Mutex
	spinnerDone chan struct{}
	spinnerExit chan struct{}
}

// Color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Options configures a Display.
type Options struct {
	// Markdown renders bot replies through glamour. Only honoured when
	// the output is a terminal.
	Markdown bool
	// Width overrides terminal width detection.
	Width int
}

// NewTerminalDisplay creates a display on stdout, enabling colors and
// markdown when stdout is a terminal.
func NewTerminalDisplay(opts Options) *Display {
	tty := IsTerminal()
	if opts.Width == 0 {
		opts.Width = terminalWidth()
	}
	return newDisplay(os.Stdout, tty, opts.Markdown && tty, opts.Width)
}

// NewDisplay creates a plain display writing to out, without colors or
// markdown rendering.
func NewDisplay(out io.Writer, width int) *Display {
	if width <= 0 {
		width = 80
	}
	return newDisplay(out, false, false, width)
}

func newDisplay(out io.Writer, color, markdown bool, width int) *Display {
	d := &Display{out: out, color: color, width: width}
	if markdown {
		// A failed renderer just means plain replies.
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(width-10, 20)),
		)
		if err == nil {
			d.renderer = renderer
		}
	}
	return d
}

// paint wraps s in the given color when colors are enabled
func (d *Display) paint(color, s string) string {
	if !d.color {
		return s
	}
	return color + s + colorReset
}

func (d *Display) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

// PrintWelcome displays the banner for a client
func (d *Display) PrintWelcome(title, baseURL string, commands string) {
	line := strings.Repeat("═", 42)
	d.printf("%s\n", d.paint(colorCyan, "╔"+line+"╗"))
	d.printf("%s\n", d.paint(colorCyan, fmt.Sprintf("║ %-40s ║", title)))
	d.printf("%s\n", d.paint(colorCyan, "╚"+line+"╝"))
	d.printf("\n%s\n", d.paint(colorGray, "Backend: "+baseURL))
	if commands != "" {
		d.printf("%s\n", d.paint(colorGray, "Commands: "+commands))
	}
	d.printf("\n")
}

// PrintGoodbye displays the goodbye message
func (d *Display) PrintGoodbye() {
	d.printf("\n%s\n", d.paint(colorCyan, "Goodbye! 👋"))
}

// PrintError displays an error message
func (d *Display) PrintError(err error) {
	d.printf("%s\n", d.paint(colorRed, fmt.Sprintf("✗ Error: %v", err)))
}

// PrintInfo displays an info message
func (d *Display) PrintInfo(msg string) {
	d.printf("%s\n", d.paint(colorCyan, "ℹ "+msg))
}

// PrintWarning displays a warning message
func (d *Display) PrintWarning(msg string) {
	d.printf("%s\n", d.paint(colorYellow, "⚠ "+msg))
}

// PrintSuccess displays a success message
func (d *Display) PrintSuccess(msg string) {
	d.printf("%s\n", d.paint(colorGreen, "✓ "+msg))
}

// PrintSeparator prints a visual separator
func (d *Display) PrintSeparator() {
	d.printf("%s\n", d.paint(colorDim, strings.Repeat("─", min(d.width, 80))))
}

// PrintMessage renders one transcript entry. prompt is the text of the user
// message a bot reply answers; it is shown only when the reply does not
// directly follow it.
func (d *Display) PrintMessage(msg history.Message, prompt string) {
	ts := msg.Timestamp.Format("15:04:05")

	if msg.IsUser() {
		d.printf("\n%s\n", d.paint(colorGray, "┌─ You · "+ts))
		d.printf("%s %s\n", d.paint(colorGray, "│"), msg.Text)
		d.printf("%s\n", d.paint(colorGray, "└"))
		return
	}

	d.printf("\n%s\n", d.paint(colorBlue, "┌─ Bot · "+ts))
	if prompt != "" {
		d.printf("%s %s\n", d.paint(colorGray, "│"), d.paint(colorDim, "↪ re: "+truncate(prompt, 50)))
	}
	for _, line := range strings.Split(d.renderReply(msg.Text), "\n") {
		d.printf("%s %s\n", d.paint(colorGray, "│"), line)
	}
	d.printf("%s\n", d.paint(colorGray, "└"))
}

// renderReply renders a bot reply as markdown when a renderer is available
func (d *Display) renderReply(text string) string {
	if d.renderer == nil {
		return text
	}
	rendered, err := d.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(rendered, "\n")
}

// PrintHistory shows the whole transcript
func (d *Display) PrintHistory(messages []history.Message) {
	if len(messages) == 0 {
		d.PrintInfo("No conversation history yet")
		return
	}

	d.PrintSeparator()
	d.printf("Full Conversation History\n")
	d.PrintSeparator()
	for _, msg := range messages {
		who := "Bot"
		if msg.IsUser() {
			who = "You"
		}
		d.printf("\n[%s] %s:\n%s\n", msg.Timestamp.Format("15:04:05"), who, msg.Text)
	}
	d.PrintSeparator()
}

// ClearScreen clears the terminal
func (d *Display) ClearScreen() {
	if d.color {
		d.printf("\033[2J\033[H")
	}
}

// ShowSpinner displays a spinner with a message until StopSpinner is called.
// Without a terminal it prints the message once.
func (d *Display) ShowSpinner(msg string) {
	d.StopSpinner()

	if !d.color {
		d.printf("%s...\n", msg)
		return
	}

	d.mu.Lock()
	done := make(chan struct{})
	exit := make(chan struct{})
	d.spinnerDone, d.spinnerExit = done, exit
	d.mu.Unlock()

	go func() {
		defer close(exit)
		spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i = (i + 1) % len(spinnerChars) {
			fmt.Fprintf(d.out, "\r%s%s %s%s", colorCyan, spinnerChars[i], msg, colorReset)
			select {
			case <-done:
				fmt.Fprintf(d.out, "\r\033[2K\r")
				return
			case <-ticker.C:
			}
		}
	}()
}

// StopSpinner stops the currently active spinner and waits for the line to
// be cleared.
func (d *Display) StopSpinner() {
	d.mu.Lock()
	done, exit := d.spinnerDone, d.spinnerExit
	d.spinnerDone, d.spinnerExit = nil, nil
	d.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-exit
}

// Cleanup ensures the display is in a good state before exit
func (d *Display) Cleanup() {
	d.StopSpinner()
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
