package store

import (
	"context"
	"sync"
	"time"
)

type rateWindow struct {
	count     int64
	resetTime time.Time
}

// RateLimitMemoryStore is an in-memory, fixed-window implementation of ratelimit.Store.
// State is process-local and lost on restart.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		windows: make(map[string]*rateWindow),
		now:     time.Now,
	}
}

// Record counts an attempt against key. The first attempt opens a window of the
// given length; once now passes the window's reset time the count restarts at 1.
func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	w, ok := s.windows[key]
	if !ok || now.After(w.resetTime) {
		s.windows[key] = &rateWindow{count: 1, resetTime: now.Add(window)}

		return 1, nil
	}

	w.count++

	return w.count, nil
}

// Prune drops windows whose reset time has passed.
func (s *RateLimitMemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0

	for key, w := range s.windows {
		if now.After(w.resetTime) {
			delete(s.windows, key)
			removed++
		}
	}

	return removed
}

// StartJanitor prunes expired windows every interval until Shutdown is called.
func (s *RateLimitMemoryStore) StartJanitor(interval time.Duration) *Janitor {
	j := &Janitor{stop: make(chan struct{}), done: make(chan struct{})}

	go func() {
		defer close(j.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-j.stop:
				return
			case <-ticker.C:
				s.Prune()
			}
		}
	}()

	return j
}

// Janitor is the handle of a background prune loop.
type Janitor struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Shutdown stops the prune loop and waits for it to exit.
func (j *Janitor) Shutdown() error {
	j.once.Do(func() { close(j.stop) })
	<-j.done

	return nil
}
