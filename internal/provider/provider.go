// Package provider talks to the upstream financial data API. The pipeline
// depends only on the Client interface; the HTTP implementation carries
// the rate limiter, circuit breaker and response cache.
package provider

import (
	"context"
	"time"

	"github.com/grifflux/pennywatch/internal/model"
)

// ScreenFilter narrows the screener scan that seeds the candidate
// universe.
type ScreenFilter struct {
	MaxPrice     float64 `yaml:"max_price" json:"max_price"`
	MaxMarketCap float64 `yaml:"max_market_cap" json:"max_market_cap"`
	MinVolume    float64 `yaml:"min_volume" json:"min_volume"`
	Limit        int     `yaml:"limit" json:"limit"`
}

// Client is the upstream data collaborator. Every method may return a
// partial result; callers treat missing sub-objects as "metric
// unavailable" and never crash on them.
type Client interface {
	// Quote fetches the cheap market snapshot for one symbol.
	Quote(ctx context.Context, symbol string) (*model.Quote, error)

	// PriceSeries fetches daily candles, oldest first.
	PriceSeries(ctx context.Context, symbol string, lookbackDays int) ([]model.Candle, error)

	// Fundamentals fetches statements, quote, insider trades and filings
	// in one logical call. Individual pieces may be absent on failure.
	Fundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error)

	// Screen returns symbols matching the filter, for universe seeding.
	Screen(ctx context.Context, filter ScreenFilter) ([]string, error)

	// RecentFilings returns dilution-relevant filings since the cutoff.
	RecentFilings(ctx context.Context, since time.Time) ([]model.Filing, error)
}
