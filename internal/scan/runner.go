// Package scan orchestrates one full pipeline run: universe, funnel,
// scoring, convergence, ranking, persistence, and the optional alert
// handoff.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/grifflux/pennywatch/internal/alert"
	"github.com/grifflux/pennywatch/internal/converge"
	"github.com/grifflux/pennywatch/internal/funnel"
	"github.com/grifflux/pennywatch/internal/persistence"
	"github.com/grifflux/pennywatch/internal/rank"
	"github.com/grifflux/pennywatch/internal/score"
	"github.com/grifflux/pennywatch/internal/telemetry"
	"github.com/grifflux/pennywatch/internal/universe"
)

// Runner wires the pipeline components for repeated runs.
type Runner struct {
	universe  *universe.Provider
	funnel    *funnel.Funnel
	scorer    *score.Scorer
	detector  *converge.Detector
	publisher *alert.Publisher
	store     persistence.RunStore
	registry  *telemetry.Registry
	topK      int
	clock     func() time.Time
}

// NewRunner assembles a runner. Store may be nil when persistence is
// disabled.
func NewRunner(
	u *universe.Provider,
	f *funnel.Funnel,
	s *score.Scorer,
	d *converge.Detector,
	p *alert.Publisher,
	store persistence.RunStore,
	registry *telemetry.Registry,
	topK int,
) *Runner {
	return &Runner{
		universe:  u,
		funnel:    f,
		scorer:    s,
		detector:  d,
		publisher: p,
		store:     store,
		registry:  registry,
		topK:      topK,
		clock:     time.Now,
	}
}

// Options control a single run.
type Options struct {
	// PostAlert hands the top eligible candidate to the poster.
	PostAlert bool
	// OverrideCooldown bypasses the cooldown gate (the record still
	// updates on a successful alert).
	OverrideCooldown bool
}

// Report is the full outcome of one run.
type Report struct {
	RunID        string                     `json:"run_id"`
	StartedAt    time.Time                  `json:"started_at"`
	Duration     time.Duration              `json:"duration"`
	Universe     int                        `json:"universe"`
	Survivors    int                        `json:"survivors"`
	Leaderboard  rank.Leaderboard           `json:"leaderboard"`
	Convergences map[string]converge.Result `json:"convergences"`
	NearMisses   []converge.Result          `json:"near_misses,omitempty"`
	AlertResult  alert.Result               `json:"alert_result"`
}

// Run executes the whole pipeline once. Per-candidate failures never
// surface here; only persistence and alert-handoff errors do.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	start := r.clock()
	runID := uuid.NewString()
	r.registry.ActiveScans.Inc()
	r.registry.TotalScans.Inc()
	defer func() {
		r.registry.ActiveScans.Dec()
		r.registry.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	logger := log.With().Str("run_id", runID).Logger()
	logger.Info().Msg("Scan run starting")

	candidates := r.universe.Candidates(ctx)
	snapshots := r.funnel.Run(ctx, candidates)

	report := &Report{
		RunID:        runID,
		StartedAt:    start,
		Universe:     len(candidates),
		Survivors:    len(snapshots),
		Convergences: make(map[string]converge.Result),
	}

	cards := make([]*score.Scorecard, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.Bundle == nil {
			continue
		}
		card := r.scorer.Score(snap.Bundle)
		cards = append(cards, card)

		conv := r.detector.Evaluate(card)
		if conv.Converged {
			r.registry.Convergences.Inc()
			report.Convergences[card.Symbol] = conv
			logger.Info().Str("symbol", card.Symbol).Int("intensity", conv.Intensity).
				Msg("Convergence detected")
		} else if conv.NearMiss {
			r.registry.NearMisses.Inc()
			report.NearMisses = append(report.NearMisses, conv)
			logger.Info().Str("symbol", card.Symbol).Strs("failing", conv.FailedCriteria).
				Msg("Convergence near miss")
		}
	}

	report.Leaderboard = rank.Build(runID, cards, r.topK, r.clock())

	if r.store != nil {
		if err := r.store.SaveLeaderboard(ctx, report.Leaderboard); err != nil {
			return report, fmt.Errorf("persist leaderboard: %w", err)
		}
	}

	if opts.PostAlert && r.publisher != nil {
		res, err := r.publisher.Publish(ctx, report.Leaderboard, report.Convergences, opts.OverrideCooldown)
		report.AlertResult = res
		if err != nil {
			return report, fmt.Errorf("alert handoff: %w", err)
		}
	}

	report.Duration = time.Since(start)
	logger.Info().
		Int("universe", report.Universe).
		Int("survivors", report.Survivors).
		Int("ranked", len(report.Leaderboard.Entries)).
		Dur("duration", report.Duration).
		Msg("Scan run complete")
	return report, nil
}
