// Package funnel narrows the candidate universe through progressively
// more expensive stages: quote prefilter, attention prefilter, then full
// multi-call analysis. The point is cost control: the statement fetches
// only ever run on the minority surviving the cheap stages.
package funnel

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/grifflux/pennywatch/internal/metrics"
	"github.com/grifflux/pennywatch/internal/model"
	"github.com/grifflux/pennywatch/internal/net/ratelimit"
	"github.com/grifflux/pennywatch/internal/provider"
	"github.com/grifflux/pennywatch/internal/telemetry"
)

// Stage names, stable for metrics and reports.
const (
	StageQuote     = "quote_prefilter"
	StageAttention = "attention_prefilter"
	StageFull      = "full_analysis"
)

// throttleClass is the limiter bucket for the inter-candidate delay.
const throttleClass = "funnel"

// Config holds the stage predicates and cost caps.
type Config struct {
	QuoteMaxPrice     float64 `yaml:"quote_max_price"`
	QuoteMaxMarketCap float64 `yaml:"quote_max_market_cap"`
	QuoteMinVolume    float64 `yaml:"quote_min_volume"`

	AttentionMinVolumeRatio float64 `yaml:"attention_min_volume_ratio"`
	AttentionMinPeakGainPct float64 `yaml:"attention_min_peak_gain_pct"`
	CandleLookbackDays      int     `yaml:"candle_lookback_days"`

	MaxFullAnalysis int `yaml:"max_full_analysis"`
}

// DefaultConfig returns the production funnel settings.
func DefaultConfig() Config {
	return Config{
		QuoteMaxPrice:           10,
		QuoteMaxMarketCap:       500_000_000,
		QuoteMinVolume:          200_000,
		AttentionMinVolumeRatio: 1.5,
		AttentionMinPeakGainPct: 25,
		CandleLookbackDays:      90,
		MaxFullAnalysis:         25,
	}
}

// Funnel runs the staged pipeline. Candidates advance sequentially with a
// rate-limiter delay between fetches; a per-candidate fetch failure drops
// that candidate and never the batch.
type Funnel struct {
	client   provider.Client
	cfg      Config
	limiter  *ratelimit.Limiter
	registry *telemetry.Registry
	clock    func() time.Time
}

// Option mutates a Funnel at construction.
type Option func(*Funnel)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(f *Funnel) { f.clock = clock }
}

// WithLimiter overrides the inter-candidate throttle.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(f *Funnel) { f.limiter = l }
}

// New builds a funnel.
func New(client provider.Client, cfg Config, registry *telemetry.Registry, opts ...Option) *Funnel {
	if cfg.MaxFullAnalysis <= 0 {
		cfg.MaxFullAnalysis = DefaultConfig().MaxFullAnalysis
	}
	if cfg.CandleLookbackDays <= 0 {
		cfg.CandleLookbackDays = DefaultConfig().CandleLookbackDays
	}
	f := &Funnel{
		client:   client,
		cfg:      cfg,
		limiter:  ratelimit.New(2, 1),
		registry: registry,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type stage struct {
	name  string
	apply func(ctx context.Context, in []model.Snapshot) []model.Snapshot
}

// Run pushes candidates through every stage in order. The survivor count
// is strictly non-increasing per stage.
func (f *Funnel) Run(ctx context.Context, candidates []model.Candidate) []model.Snapshot {
	snaps := make([]model.Snapshot, 0, len(candidates))
	for _, c := range candidates {
		snaps = append(snaps, model.Snapshot{Candidate: c})
	}
	f.registry.CandidatesSeen.Add(float64(len(snaps)))

	stages := []stage{
		{name: StageQuote, apply: f.quoteStage},
		{name: StageAttention, apply: f.attentionStage},
		{name: StageFull, apply: f.fullStage},
	}

	for _, st := range stages {
		before := len(snaps)
		snaps = st.apply(ctx, snaps)
		f.registry.FunnelSurvivors.WithLabelValues(st.name).Set(float64(len(snaps)))
		log.Info().Str("stage", st.name).Int("in", before).Int("out", len(snaps)).
			Msg("Funnel stage complete")
		if len(snaps) == 0 {
			break
		}
	}
	return snaps
}

// quoteStage keeps candidates whose cheap quote matches the small-cap,
// liquid-enough profile.
func (f *Funnel) quoteStage(ctx context.Context, in []model.Snapshot) []model.Snapshot {
	out := in[:0:0]
	for _, s := range in {
		if err := f.limiter.Wait(ctx, throttleClass); err != nil {
			return out
		}
		quote, err := f.client.Quote(ctx, s.Candidate.Symbol)
		if err != nil {
			f.dropped(StageQuote, s.Candidate.Symbol, err)
			continue
		}
		if f.cfg.QuoteMaxPrice > 0 && quote.Price > f.cfg.QuoteMaxPrice {
			continue
		}
		if f.cfg.QuoteMaxMarketCap > 0 && quote.MarketCap > f.cfg.QuoteMaxMarketCap {
			continue
		}
		if f.cfg.QuoteMinVolume > 0 && quote.Volume < f.cfg.QuoteMinVolume {
			continue
		}
		s.Quote = quote
		out = append(out, s)
	}
	return out
}

// attentionStage keeps candidates showing a volume surge or a recent
// spike, judged from the candle series alone.
func (f *Funnel) attentionStage(ctx context.Context, in []model.Snapshot) []model.Snapshot {
	now := f.clock()
	out := in[:0:0]
	for _, s := range in {
		if err := f.limiter.Wait(ctx, throttleClass); err != nil {
			return out
		}
		candles, err := f.client.PriceSeries(ctx, s.Candidate.Symbol, f.cfg.CandleLookbackDays)
		if err != nil {
			f.dropped(StageAttention, s.Candidate.Symbol, err)
			continue
		}
		s.Candles = candles

		volumeRatio := metrics.VolumeRatio(candles)
		gain, _, _ := metrics.PeakStats(candles, now)

		surge := volumeRatio.IsKnown() && volumeRatio.MustValue() >= f.cfg.AttentionMinVolumeRatio
		spiked := gain.IsKnown() && gain.MustValue() >= f.cfg.AttentionMinPeakGainPct
		if !surge && !spiked {
			continue
		}
		out = append(out, s)
	}
	return out
}

// fullStage runs the expensive multi-call analysis on the survivors, up to
// the configured cap, and attaches the resolved metric bundle.
func (f *Funnel) fullStage(ctx context.Context, in []model.Snapshot) []model.Snapshot {
	if len(in) > f.cfg.MaxFullAnalysis {
		log.Info().Int("cap", f.cfg.MaxFullAnalysis).Int("candidates", len(in)).
			Msg("Full analysis capped")
		in = in[:f.cfg.MaxFullAnalysis]
	}
	now := f.clock()
	out := in[:0:0]
	for _, s := range in {
		if err := f.limiter.Wait(ctx, throttleClass); err != nil {
			return out
		}
		fundamentals, err := f.client.Fundamentals(ctx, s.Candidate.Symbol)
		if err != nil {
			f.dropped(StageFull, s.Candidate.Symbol, err)
			continue
		}
		s.Fundamentals = fundamentals
		bundle := metrics.ComputeBundle(s.Candidate.Symbol, fundamentals, s.Candles, now)
		s.Bundle = &bundle
		out = append(out, s)
	}
	return out
}

func (f *Funnel) dropped(stageName, symbol string, err error) {
	f.registry.FetchErrors.WithLabelValues(stageName).Inc()
	log.Warn().Err(err).Str("stage", stageName).Str("symbol", symbol).
		Msg("Candidate dropped on fetch failure")
}
