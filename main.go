package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"shelfchat/internal/api"
	"shelfchat/internal/catalog"
	"shelfchat/internal/chat"
	"shelfchat/internal/config"
	"shelfchat/internal/history"
	"shelfchat/internal/logger"
	"shelfchat/internal/recommend"
	"shelfchat/internal/terminal"
	"shelfchat/internal/ui"
)

const usage = `Usage: shelfchat <chat|books> [flags]

  chat    talk to the chatbot backend (POST /send)
  books   pick books you like and get recommendations (GET /books, POST /recommend)

Run "shelfchat <command> -h" for flags.
`

func main() {
	mode, args := "chat", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		mode, args = args[0], args[1:]
	}
	if mode != "chat" && mode != "books" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := loadConfig(mode, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Writer:  os.Stderr,
		Format:  cfg.LogFormat,
		Level:   logger.ParseLevel(cfg.LogLevel),
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	})
	slog.SetDefault(log)

	display := ui.NewTerminalDisplay(ui.Options{Markdown: cfg.RenderMarkdown})
	client := api.NewClient(cfg.APIURL, cfg.APITimeout, api.WithRateLimit(cfg.RateLimit))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backend health check (non-fatal)
	if err := client.HealthCheck(ctx); err != nil {
		display.PrintWarning(fmt.Sprintf("Health check failed: %v", err))
		display.PrintInfo("Requests will fail until the backend is reachable.")
	}

	prompter := terminal.NewPrompter(cfg.InputHistoryPath)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		display.Cleanup()
		display.PrintInfo("Shutting down...")
		cancel()
		prompter.Close()
		os.Exit(0)
	}()

	switch mode {
	case "chat":
		runChat(ctx, cfg, client, display, prompter, log)
	case "books":
		runBooks(ctx, cfg, client, display, prompter, log)
	}

	display.Cleanup()
	prompter.Close()
	display.PrintGoodbye()
}

// loadConfig layers defaults, the config file, dotenv/environment and flags
func loadConfig(mode string, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	fs := flag.NewFlagSet("shelfchat "+mode, flag.ContinueOnError)
	configPath := fs.String("config", "", "Config file (default ~/.shelfchat/config.toml)")
	apiURL := fs.String("api-url", "", "Backend base URL (default "+config.DefaultAPIURL+")")
	timeout := fs.Duration("timeout", 0, "Request timeout")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "Log format: pretty or json")
	plain := fs.Bool("plain", false, "Disable markdown rendering of replies")

	var sender, userID *string
	var k *int
	switch mode {
	case "chat":
		sender = fs.String("sender", "", "Sender id sent with each message")
	case "books":
		userID = fs.String("user-id", "", "Known user id for recommendations (default null)")
		k = fs.Int("k", 0, "Number of recommendations to request")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.LoadFile(*configPath); err != nil {
		return nil, err
	}
	if err := cfg.LoadEnv(".env.local", ".env"); err != nil {
		return nil, err
	}

	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *timeout > 0 {
		cfg.APITimeout = *timeout
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *plain {
		cfg.RenderMarkdown = false
	}
	if sender != nil && *sender != "" {
		cfg.Sender = *sender
	}
	if userID != nil && *userID != "" {
		cfg.UserID = *userID
	}
	if k != nil && *k > 0 {
		cfg.Recommendations = *k
	}

	return cfg, cfg.Validate()
}

const chatCommands = "/exit | /clear | /history [n]"

// runChat is the chat REPL
func runChat(ctx context.Context, cfg *config.Config, client *api.Client, display *ui.Display, prompter terminal.Prompter, log *slog.Logger) {
	var session *chat.Session
	var lastShown string

	session = chat.NewSession(client, cfg.Sender,
		chat.WithLogger(log),
		chat.WithOnAppend(func(m history.Message) {
			if m.IsUser() {
				display.PrintMessage(m, "")
				display.ShowSpinner("Waiting for reply")
				lastShown = m.ID
				return
			}

			display.StopSpinner()
			prompt := ""
			if m.ReplyTo != "" && m.ReplyTo != lastShown {
				if p, ok := session.Transcript().Find(m.ReplyTo); ok {
					prompt = p.Text
				}
			}
			display.PrintMessage(m, prompt)
			lastShown = m.ID
		}),
	)

	display.PrintWelcome("shelfchat - chatbot", client.BaseURL(), chatCommands)

	for {
		line, err := prompter.ReadLine("> ")
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, terminal.ErrAborted) {
				display.PrintError(err)
			}
			return
		}

		cmd, arg := parseChatCommand(line)
		switch cmd {
		case "/exit", "/quit":
			return
		case "/clear":
			display.ClearScreen()
			display.PrintWelcome("shelfchat - chatbot", client.BaseURL(), chatCommands)
			continue
		case "/history":
			printHistory(display, session.Transcript(), arg)
			continue
		}

		session.SetInput(line)
		session.Submit(ctx)
	}
}

// parseChatCommand splits a REPL command from its argument. Lines that are
// not a command return an empty cmd and are sent to the bot as typed.
func parseChatCommand(line string) (cmd, arg string) {
	cmd, arg, _ = strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "/exit", "/quit", "/clear", "/history":
		return cmd, strings.TrimSpace(arg)
	}
	return "", ""
}

// printHistory shows the whole transcript, or its last n messages
func printHistory(display *ui.Display, transcript *history.Log, arg string) {
	if arg == "" {
		display.PrintHistory(transcript.Messages())
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		display.PrintWarning("Usage: /history [n], n must be a positive number")
		return
	}
	display.PrintHistory(transcript.Recent(n))
}

const booksCommands = "<text> search | <n> toggle like | /like <id> | /liked | /list | /recommend [k] | /exit"

// runBooks is the onboarding and recommendations REPL
func runBooks(ctx context.Context, cfg *config.Config, client *api.Client, display *ui.Display, prompter terminal.Prompter, log *slog.Logger) {
	onboarding := catalog.NewOnboarding(client, catalog.NewLikedSet(), log)
	recs := recommend.NewController(client, cfg.Recommendations,
		recommend.WithUserID(cfg.UserID),
		recommend.WithLogger(log),
		recommend.WithAlert(display.Alert),
	)

	display.PrintWelcome("shelfchat - book recommender", client.BaseURL(), booksCommands)
	display.PrintInfo("Select a few books you like to get started")

	if err := onboarding.Browse(ctx); err != nil {
		display.PrintWarning(fmt.Sprintf("Could not load the catalog: %v", err))
	}
	display.PrintSuggestions(onboarding.Suggestions(), onboarding.Liked())

	for {
		line, err := prompter.ReadLine("books> ")
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, terminal.ErrAborted) {
				display.PrintError(err)
			}
			return
		}

		input := strings.TrimSpace(line)
		cmd, arg, _ := strings.Cut(input, " ")
		arg = strings.TrimSpace(arg)

		switch {
		case input == "":
			continue
		case cmd == "/exit" || cmd == "/quit":
			return
		case cmd == "/liked":
			display.PrintLiked(onboarding.Liked())
		case cmd == "/list":
			display.PrintSuggestions(onboarding.Suggestions(), onboarding.Liked())
		case cmd == "/like":
			if arg == "" {
				display.PrintWarning("Usage: /like <book id>")
				continue
			}
			toggleMessage(display, arg, onboarding.ToggleLike(api.BookID(arg)))
			display.PrintLiked(onboarding.Liked())
		case cmd == "/recommend":
			fetchRecommendations(ctx, display, recs, onboarding.Liked(), arg)
		case cmd == "/search":
			search(ctx, display, onboarding, arg)
		default:
			if n, err := strconv.Atoi(input); err == nil {
				book, liked, ok := onboarding.ToggleSuggestion(n)
				if !ok {
					display.PrintWarning(fmt.Sprintf("No suggestion numbered %d", n))
					continue
				}
				toggleMessage(display, book.Title, liked)
				display.PrintLiked(onboarding.Liked())
				continue
			}
			// Anything else is a search, one request per line typed.
			search(ctx, display, onboarding, line)
		}
	}
}

func search(ctx context.Context, display *ui.Display, onboarding *catalog.Onboarding, query string) {
	if err := onboarding.Search(ctx, query); err != nil {
		display.PrintWarning("Search failed, showing previous results")
	}
	display.PrintSuggestions(onboarding.Suggestions(), onboarding.Liked())
}

func toggleMessage(display *ui.Display, what string, liked bool) {
	if liked {
		display.PrintSuccess("Liked " + what)
	} else {
		display.PrintInfo("Unliked " + what)
	}
}

func fetchRecommendations(ctx context.Context, display *ui.Display, recs *recommend.Controller, liked *catalog.LikedSet, arg string) {
	k := 0
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			display.PrintWarning("Usage: /recommend [k], k must be a positive number")
			return
		}
		k = n
	}

	if !recs.CanFetch(liked.Len()) {
		display.PrintWarning("Like at least one book first")
		return
	}

	display.ShowSpinner("Loading recommendations")
	err := recs.Fetch(ctx, liked.IDs(), k)
	display.StopSpinner()
	if err != nil {
		// The controller has already raised the alert.
		return
	}
	display.PrintRecommendations(recs.Results())
}
