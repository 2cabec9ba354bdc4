// Package ledger tracks when each candidate was last alerted and enforces
// the minimum re-alert interval.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNoRecord is returned by repositories when a key has never alerted.
var ErrNoRecord = errors.New("ledger: no record")

// Repository is the persistence seam. The scoring core only ever calls
// Get and Put; the on-disk JSON map and the Redis hash are two concrete
// implementations.
type Repository interface {
	Get(ctx context.Context, key string) (time.Time, error)
	Put(ctx context.Context, key string, at time.Time) error
}

// Ledger applies the cooldown policy over a repository.
type Ledger struct {
	repo     Repository
	cooldown time.Duration
	clock    func() time.Time
}

// Option mutates a Ledger at construction.
type Option func(*Ledger)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// New builds a ledger with the given cooldown period.
func New(repo Repository, cooldown time.Duration, opts ...Option) *Ledger {
	l := &Ledger{repo: repo, cooldown: cooldown, clock: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsOnCooldown reports whether key alerted within the cooldown period.
// A key with no record is never on cooldown. Repository errors fail open:
// a broken ledger should not silence alerts, only log.
func (l *Ledger) IsOnCooldown(ctx context.Context, key string) bool {
	last, err := l.repo.Get(ctx, key)
	if errors.Is(err, ErrNoRecord) {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cooldown lookup failed, treating as off cooldown")
		return false
	}
	return l.clock().Sub(last) < l.cooldown
}

// MarkAlerted overwrites the key's last-alerted timestamp with now. Called
// only after the publishing collaborator reports success.
func (l *Ledger) MarkAlerted(ctx context.Context, key string) error {
	return l.repo.Put(ctx, key, l.clock())
}

// Selection is the outcome of picking the next candidate to alert from a
// ranked symbol list.
type Selection struct {
	Selected string   `json:"selected,omitempty"`
	Skipped  []string `json:"skipped,omitempty"`
	Found    bool     `json:"found"`
}

// SelectNext walks symbols in rank order, skipping those on cooldown, and
// returns the first eligible one. Override bypasses the cooldown check
// entirely; the caller still marks the record on a successful alert.
func (l *Ledger) SelectNext(ctx context.Context, symbols []string, override bool) Selection {
	var sel Selection
	for _, sym := range symbols {
		if !override && l.IsOnCooldown(ctx, sym) {
			sel.Skipped = append(sel.Skipped, sym)
			continue
		}
		sel.Selected = sym
		sel.Found = true
		return sel
	}
	return sel
}
