package catalog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"shelfchat/internal/api"
)

func TestLikedSet_Toggle(t *testing.T) {
	s := NewLikedSet()

	assert.True(t, s.Toggle("B1"))
	assert.True(t, s.Contains("B1"))
	assert.Equal(t, []api.BookID{"B1"}, s.IDs())

	assert.False(t, s.Toggle("B1"))
	assert.False(t, s.Contains("B1"))
	assert.Empty(t, s.IDs())
}

func TestLikedSet_InsertionOrder(t *testing.T) {
	s := NewLikedSet()
	s.Toggle("B3")
	s.Toggle("B1")
	s.Toggle("B2")
	s.Toggle("B1")
	s.Toggle("B1")

	assert.Equal(t, []api.BookID{"B3", "B2", "B1"}, s.IDs())
	assert.Equal(t, 3, s.Len())
}

func TestLikedSet_SeedDeduplicates(t *testing.T) {
	s := NewLikedSet("B1", "B2", "B1")
	assert.Equal(t, []api.BookID{"B1", "B2"}, s.IDs())
}

func TestLikedSet_IDsIsACopy(t *testing.T) {
	s := NewLikedSet("B1")
	ids := s.IDs()
	ids[0] = "changed"
	assert.Equal(t, []api.BookID{"B1"}, s.IDs())
}

func TestLikedSet_NeverDuplicatesUnderConcurrency(t *testing.T) {
	s := NewLikedSet()
	var wg sync.WaitGroup
	// An odd number of toggles per id leaves each liked exactly once.
	for i := 0; i < 21; i++ {
		for _, id := range []api.BookID{"A", "B", "C"} {
			wg.Add(1)
			go func(id api.BookID) {
				defer wg.Done()
				s.Toggle(id)
			}(id)
		}
	}
	wg.Wait()

	assert.Equal(t, 3, s.Len())
	assert.ElementsMatch(t, []api.BookID{"A", "B", "C"}, s.IDs())
}
