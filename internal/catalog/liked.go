// Package catalog holds the onboarding state: catalog search suggestions
// and the set of books the user has marked as liked.
package catalog

import (
	"sync"

	"shelfchat/internal/api"
)

// LikedSet is a deduplicated set of book ids that remembers insertion order
// for display.
type LikedSet struct {
	mu    sync.RWMutex
	order []api.BookID
	index map[api.BookID]struct{}
}

// NewLikedSet creates an empty set, optionally seeded with ids.
func NewLikedSet(ids ...api.BookID) *LikedSet {
	s := &LikedSet{index: make(map[api.BookID]struct{})}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

// Toggle adds id when absent and removes it when present. It returns
// whether id is liked afterwards.
func (s *LikedSet) Toggle(id api.BookID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		delete(s.index, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}
	s.order = append(s.order, id)
	s.index[id] = struct{}{}
	return true
}

// Contains reports whether id is liked.
func (s *LikedSet) Contains(id api.BookID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// IDs returns the liked ids in insertion order.
func (s *LikedSet) IDs() []api.BookID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.BookID, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of liked ids.
func (s *LikedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *LikedSet) add(id api.BookID) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.order = append(s.order, id)
	s.index[id] = struct{}{}
}
