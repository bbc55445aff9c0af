package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// BookID identifies a catalog entry. The catalog keys books by ISBN, which
// some backends emit as a JSON number, so both forms decode.
type BookID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *BookID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = BookID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("book id must be a string or number: %w", err)
		}
		*id = BookID(n.String())
		return nil
	}
}

// SendRequest is the body of POST /send.
type SendRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// SendResponse is the body returned by POST /send. Reply is nil when the
// backend omitted it.
type SendResponse struct {
	Reply *string `json:"reply,omitempty"`
}

// BookSuggestion is one catalog search hit.
type BookSuggestion struct {
	BookID BookID `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// UnmarshalJSON also accepts the raw catalog column names the recommender
// backend passes through unchanged.
func (b *BookSuggestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		BookID     BookID `json:"book_id"`
		ISBN       BookID `json:"ISBN"`
		Title      string `json:"title"`
		BookTitle  string `json:"Book-Title"`
		Author     string `json:"author"`
		Authors    string `json:"authors"`
		BookAuthor string `json:"Book-Author"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.BookID = firstNonEmpty(raw.BookID, raw.ISBN)
	b.Title = firstNonEmpty(raw.Title, raw.BookTitle)
	b.Author = firstNonEmpty(raw.Author, raw.Authors, raw.BookAuthor)
	return nil
}

// Recommendation is one ranked result. Score is nil when the backend did not
// report one.
type Recommendation struct {
	BookID BookID   `json:"book_id"`
	Title  string   `json:"title,omitempty"`
	Author string   `json:"author,omitempty"`
	Score  *float64 `json:"score,omitempty"`
}

// UnmarshalJSON accepts author under either key.
func (r *Recommendation) UnmarshalJSON(data []byte) error {
	var raw struct {
		BookID  BookID   `json:"book_id"`
		Title   string   `json:"title"`
		Author  string   `json:"author"`
		Authors string   `json:"authors"`
		Score   *float64 `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.BookID = raw.BookID
	r.Title = raw.Title
	r.Author = firstNonEmpty(raw.Author, raw.Authors)
	r.Score = raw.Score
	return nil
}

// RecommendRequest is the body of POST /recommend. UserID encodes as null
// when unset.
type RecommendRequest struct {
	UserID       *string  `json:"user_id"`
	LikedBookIDs []BookID `json:"liked_book_ids"`
	K            int      `json:"k"`
}

// RecommendResponse holds the decoded result list. The backend has shipped
// both {"recommendations": [...]} and a bare array; both decode here.
type RecommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// UnmarshalJSON decodes either response shape. An object without the
// recommendations key yields an empty list.
func (r *RecommendResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []Recommendation
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		r.Recommendations = list
		return nil
	}

	var obj struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.Recommendations = obj.Recommendations
	if r.Recommendations == nil {
		r.Recommendations = []Recommendation{}
	}
	return nil
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func firstNonEmpty[T ~string](vals ...T) T {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
