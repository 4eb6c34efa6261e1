package frontier

import (
	"sort"
	"sync"
)

// SeenSet tracks canonical URLs already accounted for in the current run so
// the Fetcher never enqueues the same URL twice. One writer, occasional
// readers; every access goes through these methods.
type SeenSet struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

// NewSeenSet creates a set pre-populated with the given URLs.
func NewSeenSet(urls ...string) *SeenSet {
	s := &SeenSet{urls: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		s.urls[u] = struct{}{}
	}
	return s
}

// Contains reports whether the URL is already in the set.
func (s *SeenSet) Contains(u string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.urls[u]
	return ok
}

// Add inserts the URL and reports whether it was absent. The check and the
// insert are one atomic step, which is what makes single-enqueue hold.
func (s *SeenSet) Add(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[u]; ok {
		return false
	}
	s.urls[u] = struct{}{}
	return true
}

// Snapshot returns the current contents, sorted.
func (s *SeenSet) Snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.urls))
	for u := range s.urls {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of URLs in the set.
func (s *SeenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.urls)
}
