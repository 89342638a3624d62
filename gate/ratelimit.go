package gate

import (
	"fmt"
	"sync"
	"time"
)

// window tracks accepted submissions for one source. The count resets to
// one once the elapsed time since the first recorded submission exceeds
// the configured window.
type window struct {
	count int
	start time.Time
}

// RateLimiter throttles submissions per source identity: at most max
// accepted submissions per rolling window. State is keyed by source and
// self-expires after one window of inactivity.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	max     int
	window  time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewRateLimiter creates a limiter allowing max submissions per win and
// starts a janitor that sweeps expired windows
func NewRateLimiter(max int, win time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		max:     max,
		window:  win,
		done:    make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Allow records a submission attempt for source and returns a Rejection
// when the source has exhausted its window
func (rl *RateLimiter) Allow(source string) error {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[source]
	if !ok || now.Sub(w.start) > rl.window {
		rl.windows[source] = &window{count: 1, start: now}
		return nil
	}
	if w.count >= rl.max {
		return &Rejection{
			Code:    CodeRateLimited,
			Message: fmt.Sprintf("limit of %d messages per %s exceeded", rl.max, rl.window),
		}
	}
	w.count++
	return nil
}

// Stop terminates the janitor goroutine
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

// janitor periodically drops windows that have aged past the TTL so stale
// sources do not accumulate
func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for source, w := range rl.windows {
				if now.Sub(w.start) > rl.window {
					delete(rl.windows, source)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}
