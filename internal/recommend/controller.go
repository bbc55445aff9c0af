// Package recommend fetches ranked recommendations for a liked set and
// keeps the list currently on display.
package recommend

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"shelfchat/internal/api"
	"shelfchat/internal/catalog"
)

var (
	// ErrNothingLiked is returned when the liked set is empty; the fetch
	// action is unavailable in that state.
	ErrNothingLiked = errors.New("like at least one book first")
	// ErrBusy is returned while a fetch is already in flight.
	ErrBusy = errors.New("recommendations are already loading")
)

// Recommender is the part of the API client the controller needs.
type Recommender interface {
	GetRecommendations(ctx context.Context, req api.RecommendRequest) ([]api.Recommendation, error)
}

// AlertFunc surfaces a failed fetch to the user.
type AlertFunc func(err error)

// Controller owns the displayed result list and the loading flag.
type Controller struct {
	client   Recommender
	defaultK int
	userID   *string
	alert    AlertFunc
	logger   *slog.Logger

	mu      sync.Mutex
	loading bool
	results []api.Recommendation
}

// Option configures a Controller.
type Option func(*Controller)

// WithAlert sets the callback invoked once per failed fetch.
func WithAlert(fn AlertFunc) Option {
	return func(c *Controller) {
		c.alert = fn
	}
}

// WithUserID sends a known user id instead of null.
func WithUserID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.userID = &id
		}
	}
}

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates a controller that asks for defaultK results when
// the caller passes no count.
func NewController(client Recommender, defaultK int, opts ...Option) *Controller {
	c := &Controller{
		client:   client,
		defaultK: defaultK,
		logger:   slog.Default(),
		results:  []api.Recommendation{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CanFetch reports whether the fetch action is available for a liked set
// of the given size.
func (c *Controller) CanFetch(likedCount int) bool {
	return likedCount > 0 && !c.Loading()
}

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Results returns a copy of the displayed list.
func (c *Controller) Results() []api.Recommendation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.Recommendation, len(c.results))
	copy(out, c.results)
	return out
}

// Fetch requests k recommendations for liked. On success the displayed list
// is replaced wholesale. On failure it is left as it was and the alert fires
// exactly once. Concurrent calls are refused with ErrBusy.
func (c *Controller) Fetch(ctx context.Context, liked []api.BookID, k int) error {
	if len(liked) == 0 {
		return ErrNothingLiked
	}
	if k <= 0 {
		k = c.defaultK
	}

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	ids := make([]api.BookID, len(liked))
	copy(ids, liked)

	recs, err := c.client.GetRecommendations(ctx, api.RecommendRequest{
		UserID:       c.userID,
		LikedBookIDs: ids,
		K:            k,
	})
	if err != nil {
		c.logger.Debug("fetching recommendations failed", "liked", len(ids), "k", k, "error", err)
		if c.alert != nil {
			c.alert(err)
		}
		return err
	}

	cleaned := make([]api.Recommendation, len(recs))
	for i, r := range recs {
		r.Title = catalog.CleanText(r.Title)
		r.Author = catalog.CleanText(r.Author)
		cleaned[i] = r
	}

	c.mu.Lock()
	c.results = cleaned
	c.mu.Unlock()

	c.logger.Debug("recommendations fetched", "count", len(cleaned))
	return nil
}
