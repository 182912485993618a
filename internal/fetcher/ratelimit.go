package fetcher

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter is consulted before every request. Wait blocks until the
// request for host may proceed, or returns an error when ctx is done.
type RateLimiter interface {
	Wait(ctx context.Context, host string) error
}

// TokenBucket limits all requests together, regardless of host.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a global limiter allowing requestsPerSecond on
// average with bursts of up to burst requests. A burst below 1 is raised to 1.
func NewTokenBucket(requestsPerSecond float64, burst int) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), max(burst, 1))}
}

// Wait blocks until a token is available.
func (b *TokenBucket) Wait(ctx context.Context, _ string) error {
	return b.limiter.Wait(ctx)
}

// HostLimiter keeps an independent token bucket per host.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing requestsPerSecond per host.
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    max(burst, 1),
	}
}

// Wait blocks until a token for host is available.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	return h.limiterFor(host).Wait(ctx)
}

// limiterFor returns the limiter for host, creating it on first use.
func (h *HostLimiter) limiterFor(host string) *rate.Limiter {
	host = strings.ToLower(host)

	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[host] = l
	}
	return l
}

// hosts returns the number of hosts seen so far.
func (h *HostLimiter) hosts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.limiters)
}

// NewRateLimiter picks an implementation from flag-style settings.
// It returns nil when requestsPerSecond is not positive, meaning no limit.
func NewRateLimiter(requestsPerSecond float64, burst int, perHost bool) RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if perHost {
		return NewHostLimiter(requestsPerSecond, burst)
	}
	return NewTokenBucket(requestsPerSecond, burst)
}
