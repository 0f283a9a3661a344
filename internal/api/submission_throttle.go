package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// sweepThreshold bounds how many idle clients are kept before a full sweep.
const sweepThreshold = 1024

// submissionThrottle admits at most limit registration posts per client
// within a sliding window.
type submissionThrottle struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	recent map[string][]time.Time
}

func newSubmissionThrottle(limit int, window time.Duration) *submissionThrottle {
	return &submissionThrottle{
		limit:  limit,
		window: window,
		recent: make(map[string][]time.Time),
	}
}

// take records an attempt for client when the window still has room. When it
// does not, nothing is recorded and retryAfter tells when the oldest attempt
// leaves the window.
func (throttle *submissionThrottle) take(client string, now time.Time) (bool, time.Duration) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	if len(throttle.recent) > sweepThreshold {
		throttle.sweepLocked(now)
	}

	attempts := throttle.liveLocked(client, now)
	if len(attempts) >= throttle.limit {
		retryAfter := attempts[0].Add(throttle.window).Sub(now)
		return false, retryAfter
	}

	throttle.recent[client] = append(attempts, now)
	return true, 0
}

func (throttle *submissionThrottle) clients() int {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	return len(throttle.recent)
}

// liveLocked drops attempts that fell out of the window. Attempts are
// appended in time order, so the first live one ends the scan.
func (throttle *submissionThrottle) liveLocked(client string, now time.Time) []time.Time {
	attempts := throttle.recent[client]
	cutoff := now.Add(-throttle.window)

	first := 0
	for first < len(attempts) && !attempts[first].After(cutoff) {
		first++
	}
	if first == len(attempts) {
		delete(throttle.recent, client)
		return nil
	}
	if first > 0 {
		attempts = append([]time.Time(nil), attempts[first:]...)
		throttle.recent[client] = attempts
	}
	return attempts
}

func (throttle *submissionThrottle) sweepLocked(now time.Time) {
	for client := range throttle.recent {
		throttle.liveLocked(client, now)
	}
}

func throttleClientKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
