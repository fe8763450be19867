package identity

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleAfter is how long a bucket takes to refill completely. A bucket unused
// for that long is indistinguishable from a new one and can be dropped.
const idleAfter = time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiter keeps one token bucket per key (the normalized email). Idle buckets
// are swept at most once per idleAfter.
type limiter struct {
	mu        sync.Mutex
	perMin    int
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLimiter(perMinute int) *limiter {
	return &limiter{perMin: perMinute, buckets: map[string]*bucket{}}
}

func (l *limiter) Allow(key string, now time.Time) bool {
	if l.perMin <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= idleAfter {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

func (l *limiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) >= idleAfter {
			delete(l.buckets, k)
		}
	}
	l.lastSweep = now
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
