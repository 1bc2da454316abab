package snapshot

import (
	"sync"
	"testing"
	"time"
)

func TestStoreEmpty(t *testing.T) {
	s := NewStore(nil)
	if got := s.Current(); got != nil {
		t.Errorf("Current on empty store = %v, want nil", got)
	}
}

func TestStoreSeeded(t *testing.T) {
	initial := sample()
	s := NewStore(initial)
	if got := s.Current(); got != initial {
		t.Errorf("Current = %p, want the seeded snapshot %p", got, initial)
	}
}

func TestStoreSwap(t *testing.T) {
	s := NewStore(sample())

	next := sample()
	next.FetchedAt = time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	s.Swap(next)

	if got := s.Current(); got != next {
		t.Errorf("Current after Swap = %p, want %p", got, next)
	}
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore(sample())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				if snap := s.Current(); snap == nil {
					t.Error("Current returned nil mid-swap")
					return
				}
			}
		}()
	}
	for range 100 {
		s.Swap(sample())
	}
	wg.Wait()
}
