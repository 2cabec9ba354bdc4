// Package breaker wraps provider calls in a circuit breaker so a degraded
// upstream fails fast instead of stalling a whole scan on timeouts.
package breaker

import (
	"time"

	"github.com/sony/gobreaker"
)

// Breaker is a thin typed wrapper over gobreaker tuned for the financial
// data provider's failure profile.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a breaker that trips on 5 consecutive failures or a >20%
// failure rate over a meaningful sample, and probes again after 30s.
// Funnel stages treat an open breaker like any other per-candidate fetch
// failure: the candidate is excluded and the run continues.
func New(name string) *Breaker {
	settings := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.2
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn under the breaker.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	return b.cb.Execute(fn)
}

// State returns the breaker's current state name, for health reporting.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
