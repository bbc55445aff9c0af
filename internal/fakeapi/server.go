// Package fakeapi is a stand-in for the chatbot and recommender backends.
// It speaks the same JSON as the real services so both clients can be run
// and tested locally. Replies and rankings are placeholders.
package fakeapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"shelfchat/internal/api"
)

const defaultK = 10

// Replier produces the bot's answer to a chat message.
type Replier func(sender, message string) string

// EchoReplier answers every message by repeating it.
func EchoReplier(_, message string) string {
	return "You said: " + message
}

// Config configures the stub server.
type Config struct {
	Catalog *Catalog
	Replier Replier
	Logger  *slog.Logger
	// RateLimit is requests per second per client IP; 0 disables it.
	RateLimit float64
	Burst     int
}

type server struct {
	catalog *Catalog
	replier Replier
	logger  *slog.Logger
}

type sendBody struct {
	Sender  string `json:"sender"`
	Message string `json:"message" binding:"required"`
}

type recommendBody struct {
	UserID       *string      `json:"user_id"`
	LikedBookIDs []api.BookID `json:"liked_book_ids"`
	K            int          `json:"k"`
}

// NewRouter builds the gin engine serving /health, /send, /books,
// /books/:id and /recommend.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.Catalog == nil {
		cfg.Catalog = SampleCatalog()
	}
	if cfg.Replier == nil {
		cfg.Replier = EchoReplier
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &server{catalog: cfg.Catalog, replier: cfg.Replier, logger: cfg.Logger}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		r.Use(RateLimitMiddleware(NewIPRateLimiter(rate.Limit(cfg.RateLimit), burst)))
	}

	r.GET("/health", s.handleHealth)
	r.POST("/send", s.handleSend)
	r.GET("/books", s.handleBooks)
	r.GET("/books/:id", s.handleBook)
	r.POST("/recommend", s.handleRecommend)
	return r
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *server) handleSend(c *gin.Context) {
	var body sendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "message is required"})
		return
	}

	reply := s.replier(body.Sender, body.Message)
	s.logger.Debug("chat message", "sender", body.Sender, "length", len(body.Message))
	c.JSON(http.StatusOK, api.SendResponse{Reply: &reply})
}

func (s *server) handleBooks(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Search(c.Query("q")))
}

func (s *server) handleBook(c *gin.Context) {
	book, ok := s.catalog.Lookup(api.BookID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Book not found"})
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *server) handleRecommend(c *gin.Context) {
	var body recommendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	k := body.K
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "k must be a positive integer"})
			return
		}
		k = n
	}
	if k < 1 {
		k = defaultK
	}

	c.JSON(http.StatusOK, api.RecommendResponse{Recommendations: s.placeholderRanking(body.LikedBookIDs, k)})
}

// placeholderRanking returns up to k catalog books that are not liked, in
// catalog order, with evenly decreasing scores. An empty liked set yields
// no results, matching the real service's cold-start behaviour.
func (s *server) placeholderRanking(liked []api.BookID, k int) []api.Recommendation {
	recs := []api.Recommendation{}
	if len(liked) == 0 {
		return recs
	}

	skip := make(map[api.BookID]struct{}, len(liked))
	for _, id := range liked {
		skip[id] = struct{}{}
	}

	for _, b := range s.catalog.Books() {
		if len(recs) == k {
			break
		}
		if _, ok := skip[b.BookID]; ok {
			continue
		}
		score := 1 - float64(len(recs))/float64(k+1)
		recs = append(recs, api.Recommendation{
			BookID: b.BookID,
			Title:  b.Title,
			Author: b.Author,
			Score:  &score,
		})
	}
	return recs
}
