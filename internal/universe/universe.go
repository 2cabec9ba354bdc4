// Package universe assembles the candidate list a scan starts from:
// configured watchlist symbols, a screener scan, and symbols named by
// recent dilution-relevant filings, deduplicated with provenance.
package universe

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/grifflux/pennywatch/internal/model"
	"github.com/grifflux/pennywatch/internal/provider"
)

// Config controls universe assembly.
type Config struct {
	Watchlist          []string              `yaml:"watchlist"`
	Screen             provider.ScreenFilter `yaml:"screen"`
	FilingLookbackDays int                   `yaml:"filing_lookback_days"`
	MaxCandidates      int                   `yaml:"max_candidates"`
}

// DefaultConfig returns sane production limits.
func DefaultConfig() Config {
	return Config{
		Screen: provider.ScreenFilter{
			MaxPrice:     10,
			MaxMarketCap: 500_000_000,
			MinVolume:    200_000,
			Limit:        200,
		},
		FilingLookbackDays: 7,
		MaxCandidates:      150,
	}
}

// Provider builds candidate lists.
type Provider struct {
	client provider.Client
	cfg    Config
	clock  func() time.Time
}

// NewProvider wires the universe against the data client.
func NewProvider(client provider.Client, cfg Config) *Provider {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultConfig().MaxCandidates
	}
	if cfg.FilingLookbackDays <= 0 {
		cfg.FilingLookbackDays = DefaultConfig().FilingLookbackDays
	}
	return &Provider{client: client, cfg: cfg, clock: time.Now}
}

// Candidates assembles the deduplicated universe. Source failures degrade
// the universe instead of failing the run: a screener outage still leaves
// the watchlist.
func (p *Provider) Candidates(ctx context.Context) []model.Candidate {
	now := p.clock()
	seen := make(map[string]bool)
	var out []model.Candidate

	add := func(symbol string, source model.CandidateSource) {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" || seen[symbol] {
			return
		}
		seen[symbol] = true
		out = append(out, model.Candidate{Symbol: symbol, Source: source, SeenAt: now})
	}

	// Watchlist first: explicitly configured symbols outrank scans when
	// the cap truncates.
	for _, sym := range p.cfg.Watchlist {
		add(sym, model.SourceWatchlist)
	}

	lookback := time.Duration(p.cfg.FilingLookbackDays) * 24 * time.Hour
	filings, err := p.client.RecentFilings(ctx, now.Add(-lookback))
	if err != nil {
		log.Warn().Err(err).Msg("Filing feed unavailable, universe degraded")
	}
	for _, f := range filings {
		add(f.Symbol, model.SourceFiling)
	}

	screened, err := p.client.Screen(ctx, p.cfg.Screen)
	if err != nil {
		log.Warn().Err(err).Msg("Screener unavailable, universe degraded")
	}
	for _, sym := range screened {
		add(sym, model.SourceScreener)
	}

	if len(out) > p.cfg.MaxCandidates {
		out = out[:p.cfg.MaxCandidates]
	}
	log.Info().Int("candidates", len(out)).Msg("Universe assembled")
	return out
}
