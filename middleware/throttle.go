package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/bdc/weather-api/apierror"
	"github.com/bdc/weather-api/metrics"
)

// ThrottleConfig bounds how many requests a key may make per sliding window
type ThrottleConfig struct {
	// MaxRequests is the number of requests admitted within any window. Must be > 0.
	MaxRequests int
	// Window is the length of the sliding window. Must be > 0.
	Window time.Duration
}

// Validate checks that the ThrottleConfig has valid values
func (c ThrottleConfig) Validate() error {
	if c.MaxRequests <= 0 {
		return fmt.Errorf("MaxRequests must be > 0 (got %d)", c.MaxRequests)
	}
	if c.Window <= 0 {
		return fmt.Errorf("Window must be > 0 (got %s)", c.Window)
	}
	return nil
}

// Decision is the outcome of one throttle check
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// ThrottleStore holds sliding window state. Implementations must be safe for
// concurrent use.
type ThrottleStore interface {
	// Allow records a request for key if it fits in the window.
	// On a store failure it returns an allowing decision together with the error.
	Allow(ctx context.Context, key string, config ThrottleConfig) (Decision, error)
}

// InMemoryThrottleStore keeps a sliding window log per key inside the process.
// Each key holds at most MaxRequests timestamps.
type InMemoryThrottleStore struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	windows map[string][]time.Time
}

// NewInMemoryThrottleStore creates an in-memory store reading time from clock
func NewInMemoryThrottleStore(clock clockwork.Clock) *InMemoryThrottleStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &InMemoryThrottleStore{
		clock:   clock,
		windows: make(map[string][]time.Time),
	}
}

// Allow implements ThrottleStore
func (s *InMemoryThrottleStore) Allow(ctx context.Context, key string, config ThrottleConfig) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	hits := prune(s.windows[key], now.Add(-config.Window))

	if len(hits) < config.MaxRequests {
		hits = append(hits, now)
		s.windows[key] = hits
		return Decision{Allowed: true, Remaining: config.MaxRequests - len(hits)}, nil
	}

	s.windows[key] = hits
	return Decision{
		Allowed:    false,
		Remaining:  0,
		RetryAfter: hits[0].Add(config.Window).Sub(now),
	}, nil
}

// Cleanup drops keys whose window is empty. Call it periodically when keys
// are per client.
func (s *InMemoryThrottleStore) Cleanup(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-window)
	for key, hits := range s.windows {
		if hits = prune(hits, cutoff); len(hits) == 0 {
			delete(s.windows, key)
		} else {
			s.windows[key] = hits
		}
	}
}

// prune drops timestamps at or before cutoff. hits is kept in ascending order.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// KeyFunc extracts a throttle key from an HTTP request
type KeyFunc func(r *http.Request) string

// GlobalKey puts every request of the process into a single window
func GlobalKey() KeyFunc {
	return func(r *http.Request) string {
		return "global"
	}
}

// IPKey gives every client address its own window
func IPKey() KeyFunc {
	return func(r *http.Request) string {
		return "ip:" + requestIP(r)
	}
}

// Throttle is a middleware that rejects requests over the configured rate
// with 429 Too Many Requests. It is installed after the access gate, so only
// authenticated traffic consumes the budget.
func Throttle(store ThrottleStore, config ThrottleConfig, keyFunc KeyFunc, logger *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	limit := strconv.Itoa(config.MaxRequests)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)

			decision, err := store.Allow(r.Context(), key, config)
			if err != nil {
				// Fail open; the store already returned an allowing decision
				logger.Warn("throttle store failure", zap.String("key", key), zap.Error(err))
				m.ThrottleErrors.Inc()
			}

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				m.ThrottleRejected.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(decision.RetryAfter)))
				apierror.Write(w, apierror.TooManyRequests())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds rounds up so clients never retry before the window frees a slot
func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
