package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfchat/internal/api"
)

type fakeRecommender struct {
	mu       sync.Mutex
	requests []api.RecommendRequest
	recs     []api.Recommendation
	err      error
	// gate, when set, blocks the call until closed.
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeRecommender) GetRecommendations(_ context.Context, req api.RecommendRequest) ([]api.Recommendation, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	recs, err, gate, entered := f.recs, f.err, f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}
	return recs, err
}

func score(v float64) *float64 { return &v }

func TestFetch_EmptyLikedSetIsRefused(t *testing.T) {
	f := &fakeRecommender{}
	c := NewController(f, 12)

	err := c.Fetch(context.Background(), nil, 12)

	assert.ErrorIs(t, err, ErrNothingLiked)
	assert.Empty(t, f.requests)
	assert.False(t, c.CanFetch(0))
	assert.True(t, c.CanFetch(1))
}

func TestFetch_SendsLikedSetAndK(t *testing.T) {
	f := &fakeRecommender{recs: []api.Recommendation{}}
	c := NewController(f, 12)

	require.NoError(t, c.Fetch(context.Background(), []api.BookID{"B1", "B2"}, 12))

	require.Len(t, f.requests, 1)
	assert.Nil(t, f.requests[0].UserID)
	assert.Equal(t, []api.BookID{"B1", "B2"}, f.requests[0].LikedBookIDs)
	assert.Equal(t, 12, f.requests[0].K)
}

func TestFetch_DefaultK(t *testing.T) {
	f := &fakeRecommender{}
	c := NewController(f, 7, WithUserID("u-42"))

	require.NoError(t, c.Fetch(context.Background(), []api.BookID{"B1"}, 0))

	assert.Equal(t, 7, f.requests[0].K)
	require.NotNil(t, f.requests[0].UserID)
	assert.Equal(t, "u-42", *f.requests[0].UserID)
}

func TestFetch_ReplacesResultsWholesale(t *testing.T) {
	f := &fakeRecommender{recs: []api.Recommendation{{BookID: "R1"}, {BookID: "R2"}}}
	c := NewController(f, 12)
	require.NoError(t, c.Fetch(context.Background(), []api.BookID{"B1"}, 2))

	f.recs = []api.Recommendation{{BookID: "R9", Score: score(0.5)}}
	require.NoError(t, c.Fetch(context.Background(), []api.BookID{"B1"}, 2))

	assert.Equal(t, []api.Recommendation{{BookID: "R9", Score: score(0.5)}}, c.Results())
}

func TestFetch_FailureKeepsResultsAndAlertsOnce(t *testing.T) {
	f := &fakeRecommender{recs: []api.Recommendation{{BookID: "R1"}}}
	var alerts []error
	c := NewController(f, 12, WithAlert(func(err error) { alerts = append(alerts, err) }))
	require.NoError(t, c.Fetch(context.Background(), []api.BookID{"B1"}, 1))

	f.err = errors.New("boom")
	err := c.Fetch(context.Background(), []api.BookID{"B1"}, 1)

	require.Error(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, []api.Recommendation{{BookID: "R1"}}, c.Results())
	assert.False(t, c.Loading())
}

func TestFetch_RefusesConcurrentRequests(t *testing.T) {
	f := &fakeRecommender{
		recs:    []api.Recommendation{{BookID: "R1"}},
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
	}
	c := NewController(f, 12)

	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(context.Background(), []api.BookID{"B1"}, 1)
	}()
	<-f.entered

	assert.True(t, c.Loading())
	assert.False(t, c.CanFetch(1))
	assert.ErrorIs(t, c.Fetch(context.Background(), []api.BookID{"B1"}, 1), ErrBusy)

	close(f.gate)
	require.NoError(t, <-done)
	assert.False(t, c.Loading())
	assert.Len(t, f.requests, 1)
}

func TestFetch_CopiesLikedSlice(t *testing.T) {
	f := &fakeRecommender{}
	c := NewController(f, 12)
	liked := []api.BookID{"B1"}

	require.NoError(t, c.Fetch(context.Background(), liked, 1))
	liked[0] = "changed"

	assert.Equal(t, api.BookID("B1"), f.requests[0].LikedBookIDs[0])
}

func TestFetch_CleansText(t *testing.T) {
	f := &fakeRecommender{recs: []api.Recommendation{{BookID: "R1", Title: "War &amp; Peace"}}}
	c := NewController(f, 12)

	require.NoError(t, c.Fetch(context.Background(), []api.BookID{"B1"}, 1))
	assert.Equal(t, "War & Peace", c.Results()[0].Title)
}
