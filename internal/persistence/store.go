// Package persistence stores per-run outputs. The leaderboard is written
// wholesale each run, never incrementally patched.
package persistence

import (
	"context"

	"github.com/grifflux/pennywatch/internal/rank"
)

// RunStore persists scan run outputs.
type RunStore interface {
	// SaveLeaderboard writes the run's full leaderboard.
	SaveLeaderboard(ctx context.Context, lb rank.Leaderboard) error

	// LatestLeaderboard returns the most recent run's leaderboard, or nil
	// when no run has been stored yet.
	LatestLeaderboard(ctx context.Context) (*rank.Leaderboard, error)
}
