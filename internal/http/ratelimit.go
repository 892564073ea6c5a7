package http

import (
	"sync"
	"time"

	"kaskelas/internal/metrics"
)

// defaultPostLimit is the per-IP budget for mutating requests when no limit
// is configured.
const defaultPostLimit = 60

// rateLimiter caps mutating requests per client IP over a fixed one-minute
// window. Page views never pass through it.
type rateLimiter struct {
	limit   int
	window  time.Duration
	metrics *metrics.Metrics

	mu      sync.Mutex
	windows map[string]*requestWindow

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type requestWindow struct {
	startedAt time.Time
	count     int
}

func newRateLimiter(limit int, m *metrics.Metrics) *rateLimiter {
	if limit <= 0 {
		limit = defaultPostLimit
	}
	rl := &rateLimiter{
		limit:       limit,
		window:      time.Minute,
		metrics:     m,
		windows:     make(map[string]*requestWindow),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropIdleWindows()
		case <-rl.stopCleanup:
			return
		}
	}
}

// dropIdleWindows forgets clients whose window closed long ago, so the map
// does not grow with every IP ever seen.
func (rl *rateLimiter) dropIdleWindows() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * rl.window)
	for ip, w := range rl.windows {
		if w.startedAt.Before(cutoff) {
			delete(rl.windows, ip)
		}
	}
}

// stop shuts down the cleanup goroutine.
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// allow counts a mutating request from the IP against its current window and
// reports whether the budget still covers it. Refusals are surfaced as a
// metric.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.startedAt) >= rl.window {
		rl.windows[clientIP] = &requestWindow{startedAt: now, count: 1}
		return true
	}

	w.count++
	if w.count > rl.limit {
		rl.metrics.IncRateLimitHit()
		return false
	}
	return true
}
