package frontier_test

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/openengine/openengine/internal/frontier"
)

func TestSeenSet_AddAndContains(t *testing.T) {
	s := frontier.NewSeenSet()

	if s.Contains("https://h/p") {
		t.Error("Contains on empty set = true, want false")
	}

	if !s.Add("https://h/p") {
		t.Error("first Add = false, want true")
	}
	if s.Add("https://h/p") {
		t.Error("second Add = true, want false")
	}
	if !s.Contains("https://h/p") {
		t.Error("Contains after Add = false, want true")
	}
	if got := s.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestSeenSet_PrePopulated(t *testing.T) {
	s := frontier.NewSeenSet("https://a", "https://b")

	if !s.Contains("https://a") || !s.Contains("https://b") {
		t.Error("pre-populated URLs missing from set")
	}
	if got := s.Snapshot(); !reflect.DeepEqual(got, []string{"https://a", "https://b"}) {
		t.Errorf("Snapshot() = %v, want sorted pre-populated URLs", got)
	}
}

func TestSeenSet_AddIsAtomic(t *testing.T) {
	const workers = 8

	s := frontier.NewSeenSet()
	wins := make(chan bool, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- s.Add("https://contested")
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("Add won %d times for the same URL, want exactly 1", winners)
	}
}

func TestSeenSet_ConcurrentDistinctAdds(t *testing.T) {
	const n = 100

	s := frontier.NewSeenSet()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Add(fmt.Sprintf("https://h/%d", i))
		}(i)
	}
	wg.Wait()

	if got := s.Len(); got != n {
		t.Errorf("Len() = %d, want %d", got, n)
	}
}
