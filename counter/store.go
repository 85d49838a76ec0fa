package counter

import "sync"

// Store maps a context to its counter. A context that has never been set reads
// as zero.
type Store struct {
	mu     sync.RWMutex
	counts map[string]int
}

func NewStore() *Store {
	return &Store{counts: make(map[string]int)}
}

func (s *Store) Get(context string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[context]
}

func (s *Store) Increment(context string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[context]++
	return s.counts[context]
}

func (s *Store) Set(context string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[context] = value
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.counts)
}

func (s *Store) Snapshot() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}
