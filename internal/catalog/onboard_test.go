package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfchat/internal/api"
)

type fakeSearcher struct {
	queries []string
	listed  int
	results map[string][]api.BookSuggestion
	listing []api.BookSuggestion
	err     error
}

func (f *fakeSearcher) ListBooks(_ context.Context) ([]api.BookSuggestion, error) {
	f.listed++
	if f.err != nil {
		return nil, f.err
	}
	return f.listing, nil
}

func (f *fakeSearcher) SearchBooks(_ context.Context, q string) ([]api.BookSuggestion, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[q], nil
}

func TestOnboarding_SearchReplacesSuggestions(t *testing.T) {
	f := &fakeSearcher{results: map[string][]api.BookSuggestion{
		"":     {{BookID: "1", Title: "A", Author: "X"}, {BookID: "2", Title: "B", Author: "Y"}},
		"dune": {{BookID: "3", Title: "Dune", Author: "Frank Herbert"}},
	}}
	o := NewOnboarding(f, nil, nil)

	require.NoError(t, o.Search(context.Background(), ""))
	assert.Len(t, o.Suggestions(), 2)

	require.NoError(t, o.Search(context.Background(), "dune"))
	assert.Equal(t, []api.BookSuggestion{{BookID: "3", Title: "Dune", Author: "Frank Herbert"}}, o.Suggestions())
	assert.Equal(t, []string{"", "dune"}, f.queries)
	assert.Equal(t, "dune", o.Query())
}

func TestOnboarding_SearchSendsRawQuery(t *testing.T) {
	f := &fakeSearcher{}
	o := NewOnboarding(f, nil, nil)

	_ = o.Search(context.Background(), "  The Hobbit ")
	assert.Equal(t, []string{"  The Hobbit "}, f.queries)
}

func TestOnboarding_SearchFailureKeepsPriorList(t *testing.T) {
	f := &fakeSearcher{results: map[string][]api.BookSuggestion{
		"": {{BookID: "1", Title: "A"}},
	}}
	o := NewOnboarding(f, nil, nil)
	require.NoError(t, o.Search(context.Background(), ""))

	f.err = errors.New("connection refused")
	err := o.Search(context.Background(), "x")

	assert.Error(t, err)
	assert.Equal(t, []api.BookSuggestion{{BookID: "1", Title: "A"}}, o.Suggestions())
}

func TestOnboarding_SearchCleansText(t *testing.T) {
	f := &fakeSearcher{results: map[string][]api.BookSuggestion{
		"": {{BookID: "1", Title: "Pride &amp; Prejudice", Author: " Jane  Austen "}},
	}}
	o := NewOnboarding(f, nil, nil)
	require.NoError(t, o.Search(context.Background(), ""))

	got := o.Suggestions()[0]
	assert.Equal(t, "Pride & Prejudice", got.Title)
	assert.Equal(t, "Jane Austen", got.Author)
}

func TestOnboarding_ToggleLikeMakesNoRequest(t *testing.T) {
	f := &fakeSearcher{}
	o := NewOnboarding(f, nil, nil)

	assert.True(t, o.ToggleLike("B1"))
	assert.False(t, o.ToggleLike("B1"))
	assert.Empty(t, f.queries)
}

func TestOnboarding_ToggleSuggestion(t *testing.T) {
	f := &fakeSearcher{results: map[string][]api.BookSuggestion{
		"": {{BookID: "1", Title: "A"}, {BookID: "2", Title: "B"}},
	}}
	liked := NewLikedSet()
	o := NewOnboarding(f, liked, nil)
	require.NoError(t, o.Search(context.Background(), ""))

	book, isLiked, ok := o.ToggleSuggestion(2)
	require.True(t, ok)
	assert.True(t, isLiked)
	assert.Equal(t, api.BookID("2"), book.BookID)
	assert.True(t, liked.Contains("2"))

	_, _, ok = o.ToggleSuggestion(0)
	assert.False(t, ok)
	_, _, ok = o.ToggleSuggestion(3)
	assert.False(t, ok)
}

func TestOnboarding_Browse(t *testing.T) {
	f := &fakeSearcher{listing: []api.BookSuggestion{{BookID: "1", Title: "A"}}}
	o := NewOnboarding(f, nil, nil)

	require.NoError(t, o.Browse(context.Background()))
	assert.Equal(t, 1, f.listed)
	assert.Empty(t, f.queries)
	assert.Len(t, o.Suggestions(), 1)

	f.err = errors.New("down")
	assert.Error(t, o.Browse(context.Background()))
	assert.Len(t, o.Suggestions(), 1)
}
