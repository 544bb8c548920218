package memo

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestDoDeduplicatesConcurrentCalls(t *testing.T) {
	g := NewGroup()

	var calls atomic.Int64
	release := make(chan struct{})

	const waiters = 10
	var wg sync.WaitGroup
	results := make([]any, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := g.Do("key", func() (any, error) {
				calls.Add(1)
				<-release
				return "shared", nil
			})
			if err != nil {
				t.Errorf("Do() error = %v", err)
			}
			results[i] = v
		}(i)
	}

	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fn ran %d times, want 1", got)
	}
	for i, v := range results {
		if v != "shared" {
			t.Errorf("waiter %d got %v, want shared", i, v)
		}
	}
}

func TestDoSharesError(t *testing.T) {
	g := NewGroup()
	boom := errors.New("boom")

	_, err := g.Do("key", func() (any, error) { return nil, boom })
	if err != boom {
		t.Errorf("Do() error = %v, want boom", err)
	}
}

func TestDoDoesNotRetainResults(t *testing.T) {
	g := NewGroup()

	var calls int
	fn := func() (any, error) {
		calls++
		return calls, nil
	}

	if v, _ := g.Do("key", fn); v != 1 {
		t.Errorf("first Do() = %v, want 1", v)
	}
	// A sequential second call must compute again: Do is in-flight
	// deduplication, not a cache.
	if v, _ := g.Do("key", fn); v != 2 {
		t.Errorf("second Do() = %v, want 2", v)
	}
}

func TestDoIsolatesKeys(t *testing.T) {
	g := NewGroup()

	a, _ := g.Do("a", func() (any, error) { return "A", nil })
	b, _ := g.Do("b", func() (any, error) { return "B", nil })
	if a != "A" || b != "B" {
		t.Errorf("got %v/%v, want A/B", a, b)
	}
}
