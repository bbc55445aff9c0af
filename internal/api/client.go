package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

const (
	userAgent = "shelfchat/1.0"
	// maxErrorBody caps how much of an error body ends up in StatusError.
	maxErrorBody = 512
)

// Client handles communication with the chat and recommendation backends.
// Every method performs exactly one HTTP round trip; there are no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit throttles outgoing requests to perSecond with a burst of one.
// Search-as-you-type input is smoothed by this rather than by a debounce
// timer. Zero disables throttling.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a new backend client
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendMessage posts one chat message and returns the bot's reply.
func (c *Client) SendMessage(ctx context.Context, sender, message string) (SendResponse, error) {
	var resp SendResponse
	err := c.doJSON(ctx, http.MethodPost, "/send", nil, SendRequest{Sender: sender, Message: message}, &resp)
	if err != nil {
		return SendResponse{}, err
	}
	return resp, nil
}

// SearchBooks queries the catalog. The query is sent verbatim, including an
// empty one.
func (c *Client) SearchBooks(ctx context.Context, query string) ([]BookSuggestion, error) {
	params := url.Values{}
	params.Set("q", query)

	var books []BookSuggestion
	if err := c.doJSON(ctx, http.MethodGet, "/books", params, nil, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []BookSuggestion{}
	}
	return books, nil
}

// ListBooks fetches the catalog's default listing.
func (c *Client) ListBooks(ctx context.Context) ([]BookSuggestion, error) {
	var books []BookSuggestion
	if err := c.doJSON(ctx, http.MethodGet, "/books", nil, nil, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []BookSuggestion{}
	}
	return books, nil
}

// GetRecommendations requests a ranked list for the liked set. k travels both
// in the body and as a query parameter, since backend revisions read it from
// either place.
func (c *Client) GetRecommendations(ctx context.Context, req RecommendRequest) ([]Recommendation, error) {
	if req.LikedBookIDs == nil {
		req.LikedBookIDs = []BookID{}
	}
	params := url.Values{}
	params.Set("k", strconv.Itoa(req.K))

	var resp RecommendResponse
	if err := c.doJSON(ctx, http.MethodPost, "/recommend", params, req, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

// HealthCheck verifies that the backend is accessible
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &resp); err != nil {
		return fmt.Errorf("backend is unreachable at %s: %w", c.baseURL, err)
	}
	if resp.Status != "" && resp.Status != "ok" {
		return fmt.Errorf("backend reported status %q", resp.Status)
	}
	return nil
}

// doJSON performs one request and decodes a 2xx JSON body into out.
func (c *Client) doJSON(ctx context.Context, method, path string, params url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrMalformedResponse, err)
	}
	return nil
}
