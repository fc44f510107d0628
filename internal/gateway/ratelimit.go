// Per-IP rate limiting.
//
// Token buckets keyed by client IP. The bucket map is capped; once it fills,
// it is reset wholesale rather than evicted per-entry.
package gateway

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/train-anywhere/coach-gateway/internal/config"
)

type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		buckets: make(map[string]*rate.Limiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

// Allow reports whether a request from ip may proceed.
func (l *ipLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[ip]
	if !ok {
		if len(l.buckets) >= config.MaxRateLimitBuckets {
			l.buckets = make(map[string]*rate.Limiter)
		}
		bucket = rate.NewLimiter(l.rps, l.burst)
		l.buckets[ip] = bucket
	}
	return bucket.Allow()
}
