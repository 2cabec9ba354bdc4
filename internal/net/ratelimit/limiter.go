// Package ratelimit throttles calls to the upstream data provider. The
// funnel also uses it as the inter-candidate delay: a deliberate
// throughput brake, not a correctness requirement.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter hands out token-bucket limiters keyed by endpoint class, so
// cheap quote calls and expensive statement calls can run on different
// budgets.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// New creates a limiter factory with the given default requests-per-second
// and burst.
func New(rps float64, burst int) *Limiter {
	if rps <= 0 {
		rps = 4
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (l *Limiter) limiter(class string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[class]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.limiters[class] = lim
	}
	return lim
}

// Wait blocks until a call of the given class may proceed, or the context
// is done.
func (l *Limiter) Wait(ctx context.Context, class string) error {
	return l.limiter(class).Wait(ctx)
}

// Allow reports whether a call of the given class may proceed right now.
func (l *Limiter) Allow(class string) bool {
	return l.limiter(class).Allow()
}
