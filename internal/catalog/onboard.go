package catalog

import (
	"context"
	"log/slog"
	"sync"

	"shelfchat/internal/api"
)

// Searcher is the part of the API client onboarding needs.
type Searcher interface {
	SearchBooks(ctx context.Context, query string) ([]api.BookSuggestion, error)
	ListBooks(ctx context.Context) ([]api.BookSuggestion, error)
}

// Onboarding drives catalog search and like toggling. Each search replaces
// the suggestion list; a failed search keeps the previous one.
type Onboarding struct {
	client Searcher
	liked  *LikedSet
	logger *slog.Logger

	mu          sync.RWMutex
	query       string
	suggestions []api.BookSuggestion
}

// NewOnboarding creates an onboarding controller over liked. A nil liked
// set starts empty.
func NewOnboarding(client Searcher, liked *LikedSet, logger *slog.Logger) *Onboarding {
	if liked == nil {
		liked = NewLikedSet()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Onboarding{
		client:      client,
		liked:       liked,
		logger:      logger,
		suggestions: []api.BookSuggestion{},
	}
}

// Search runs query against the catalog. An empty query is sent as-is.
// On failure the error is logged and returned, and the previous suggestions
// stay in place.
func (o *Onboarding) Search(ctx context.Context, query string) error {
	o.mu.Lock()
	o.query = query
	o.mu.Unlock()

	books, err := o.client.SearchBooks(ctx, query)
	return o.apply("search", query, books, err)
}

// Browse loads the catalog's default listing, used before the user has
// typed anything. Failures follow the same policy as Search.
func (o *Onboarding) Browse(ctx context.Context) error {
	o.mu.Lock()
	o.query = ""
	o.mu.Unlock()

	books, err := o.client.ListBooks(ctx)
	return o.apply("browse", "", books, err)
}

func (o *Onboarding) apply(op, query string, books []api.BookSuggestion, err error) error {
	if err != nil {
		o.logger.Warn("catalog "+op+" failed", "query", query, "error", err)
		return err
	}

	cleaned := make([]api.BookSuggestion, len(books))
	for i, b := range books {
		cleaned[i] = api.BookSuggestion{
			BookID: b.BookID,
			Title:  CleanText(b.Title),
			Author: CleanText(b.Author),
		}
	}

	o.mu.Lock()
	o.suggestions = cleaned
	o.mu.Unlock()

	o.logger.Debug("catalog "+op, "query", query, "results", len(cleaned))
	return nil
}

// Query returns the most recently submitted query.
func (o *Onboarding) Query() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.query
}

// Suggestions returns a copy of the current suggestion list.
func (o *Onboarding) Suggestions() []api.BookSuggestion {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]api.BookSuggestion, len(o.suggestions))
	copy(out, o.suggestions)
	return out
}

// ToggleLike flips id's membership in the liked set. No request is made.
func (o *Onboarding) ToggleLike(id api.BookID) bool {
	return o.liked.Toggle(id)
}

// ToggleSuggestion toggles the n-th suggestion (1-based). ok is false when
// n is out of range.
func (o *Onboarding) ToggleSuggestion(n int) (book api.BookSuggestion, liked, ok bool) {
	o.mu.RLock()
	if n < 1 || n > len(o.suggestions) {
		o.mu.RUnlock()
		return api.BookSuggestion{}, false, false
	}
	book = o.suggestions[n-1]
	o.mu.RUnlock()

	return book, o.liked.Toggle(book.BookID), true
}

// Liked returns the liked set.
func (o *Onboarding) Liked() *LikedSet {
	return o.liked
}
