package middleware

import (
	"context"
	"math"
	"sync"
	"time"

	redisStore "pos-fiscal-ledger/internal/adapter/storage/redis"

	"golang.org/x/time/rate"
)

const localLimiterIdle = 10 * time.Minute

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per key. serve falls back to it
// when Redis is unavailable, so counters are per instance.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
	now       func() time.Time
}

// NewLocalLimiter creates an empty LocalLimiter.
func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{buckets: make(map[string]*localBucket), now: time.Now}
}

// Allow takes one token from key's bucket. The bucket holds limit tokens and
// refills the whole of them over window.
func (l *LocalLimiter) Allow(_ context.Context, key string, limit int64, window time.Duration) (*redisStore.RateLimitResult, error) {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	interval := window / time.Duration(limit)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Every(interval), int(limit))}
		l.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)
	remaining := int64(math.Floor(tokens))
	if remaining < 0 {
		remaining = 0
	}

	// next token when denied, full bucket otherwise
	missing := float64(limit) - tokens
	if !allowed {
		missing = 1 - tokens
	}
	resetAt := now.Add(time.Duration(math.Ceil(missing * float64(interval))))

	return &redisStore.RateLimitResult{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   int64(math.Ceil(float64(resetAt.UnixNano()) / float64(time.Second))),
	}, nil
}

// sweep drops buckets idle for localLimiterIdle. Caller holds mu.
func (l *LocalLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < localLimiterIdle/2 {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > localLimiterIdle {
			delete(l.buckets, key)
		}
	}
}

// Len reports the number of live buckets.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
