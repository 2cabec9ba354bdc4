package score

import (
	"github.com/grifflux/pennywatch/internal/metrics"
	"github.com/grifflux/pennywatch/internal/model"
)

// NewInsolvencyEngine builds the bankruptcy-risk weight table. Weights sum
// to 100; overrides rebalance individual factors by name.
func NewInsolvencyEngine(overrides map[string]float64) *Engine {
	factors := []Factor{
		{Name: "runway", Weight: 30, Score: scoreRunway},
		{Name: "debt_load", Weight: 20, Score: scoreDebtLoad},
		{Name: "interest_coverage", Weight: 20, Score: scoreInterestCoverage},
		{Name: "revenue_trend", Weight: 20, Score: scoreRevenueTrend},
		{Name: "insider_selling", Weight: 10, Score: scoreInsiderSelling},
	}
	return &Engine{Name: "insolvency", Factors: applyOverrides(factors, overrides)}
}

// scoreRunway maps months of cash to distress. Two months or less is the
// maximum tier; the sentinel cap scores zero.
func scoreRunway(b *model.MetricBundle) float64 {
	months, ok := b.RunwayMonths.Value()
	if !ok {
		return 0
	}
	switch {
	case months <= 2:
		return 1.0
	case months <= 4:
		return 0.75
	case months <= 6:
		return 0.5
	case months <= 9:
		return 0.3
	case months <= 12:
		return 0.15
	default:
		return 0
	}
}

func scoreDebtLoad(b *model.MetricBundle) float64 {
	ratio, ok := b.DebtToCash.Value()
	if !ok {
		return 0
	}
	switch {
	case ratio >= 5:
		return 1.0
	case ratio >= 3:
		return 0.75
	case ratio >= 2:
		return 0.5
	case ratio >= 1:
		return 0.25
	default:
		return 0
	}
}

func scoreInterestCoverage(b *model.MetricBundle) float64 {
	cov, ok := b.InterestCoverage.Value()
	if !ok {
		return 0
	}
	// CoverageSafe means no interest expense at all.
	if cov >= metrics.CoverageSafe {
		return 0
	}
	switch {
	case cov < 0:
		return 1.0
	case cov < 1:
		return 0.85
	case cov < 2:
		return 0.6
	case cov < 4:
		return 0.3
	default:
		return 0
	}
}

func scoreRevenueTrend(b *model.MetricBundle) float64 {
	change, ok := b.RevenueChangePct.Value()
	if !ok {
		return 0
	}
	switch {
	case change <= -40:
		return 1.0
	case change <= -25:
		return 0.7
	case change <= -10:
		return 0.4
	case change < 0:
		return 0.2
	default:
		return 0
	}
}

func scoreInsiderSelling(b *model.MetricBundle) float64 {
	if b.RecentInsiderSelling {
		return 1.0
	}
	return 0
}
