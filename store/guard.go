package store

import (
	"sync"

	"tasks-api/domain"
)

// Guard is the mutual-exclusion boundary around a Store for concurrent hosts.
// Reads share a read lock; mutations are exclusive. The wrapped store must not
// be used directly while the Guard is in play.
type Guard struct {
	mu sync.RWMutex
	s  *Store
}

// NewGuard wraps the given store. A nil store gets a fresh empty one.
func NewGuard(s *Store) *Guard {
	if s == nil {
		s = New()
	}
	return &Guard{s: s}
}

func (g *Guard) Create(title string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.s.Create(title)
}

func (g *Guard) Get(id uint64) (domain.Task, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.s.Get(id)
}

func (g *Guard) List() []domain.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.s.List()
}

func (g *Guard) MarkDone(id uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.s.MarkDone(id)
}

func (g *Guard) Delete(id uint64) (domain.Task, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.s.Delete(id)
}

func (g *Guard) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.s.Len()
}
