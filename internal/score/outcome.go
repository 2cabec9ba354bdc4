package score

import (
	"math"

	"github.com/grifflux/pennywatch/internal/metrics"
	"github.com/grifflux/pennywatch/internal/model"
)

// Outcome is a competing end-state for a distressed ticker.
type Outcome string

const (
	OutcomeDilution      Outcome = "DILUTION"
	OutcomeRestructuring Outcome = "RESTRUCTURING"
	OutcomeBankruptcy    Outcome = "BANKRUPTCY"
	// OutcomeStable is the reserved label when no rule block fires.
	OutcomeStable Outcome = "STABLE"
)

// outcomePriority breaks exact-percentage ties deterministically: the more
// severe outcome wins.
var outcomePriority = []Outcome{OutcomeBankruptcy, OutcomeDilution, OutcomeRestructuring}

// Confidence is a coarse banding of total raw points, independent of the
// normalized percentages.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// OutcomeDistribution maps outcome labels to integer percentages. When any
// rule fired the percentages sum to exactly 100; when none fired all are 0,
// Primary is STABLE and Confidence is LOW.
type OutcomeDistribution struct {
	Percentages map[Outcome]int `json:"percentages"`
	Primary     Outcome         `json:"primary"`
	Confidence  Confidence      `json:"confidence"`
	RawTotal    float64         `json:"raw_total"`
}

// ComputeOutcomes runs the rule blocks and normalizes their raw points.
// Blocks are non-exclusive: one metric may add points to several outcomes
// at once, modeling correlated risk.
func ComputeOutcomes(b *model.MetricBundle) OutcomeDistribution {
	raw := map[Outcome]float64{}
	add := func(o Outcome, pts float64) { raw[o] += pts }

	if months, ok := b.RunwayMonths.Value(); ok {
		switch {
		case months <= 3:
			add(OutcomeDilution, 25)
			add(OutcomeBankruptcy, 15)
		case months <= 6:
			add(OutcomeDilution, 20)
			add(OutcomeBankruptcy, 5)
		case months <= 12:
			add(OutcomeDilution, 10)
		}
	}

	if ratio, ok := b.DebtToCash.Value(); ok {
		switch {
		case ratio >= 5:
			add(OutcomeBankruptcy, 25)
			add(OutcomeRestructuring, 15)
		case ratio >= 3:
			add(OutcomeBankruptcy, 15)
			add(OutcomeRestructuring, 10)
		case ratio >= 1.5:
			add(OutcomeRestructuring, 5)
		}
	}

	if cov, ok := b.InterestCoverage.Value(); ok && cov < metrics.CoverageSafe {
		switch {
		case cov < 1:
			add(OutcomeBankruptcy, 20)
			add(OutcomeRestructuring, 10)
		case cov < 2:
			add(OutcomeRestructuring, 5)
		}
	}

	if b.DilutionMechanismActive {
		add(OutcomeDilution, 30)
	}

	if change, ok := b.RevenueChangePct.Value(); ok && change <= -25 {
		add(OutcomeBankruptcy, 10)
		add(OutcomeRestructuring, 5)
	}

	if b.RecentInsiderSelling {
		add(OutcomeDilution, 5)
	}

	return normalize(raw)
}

// normalize converts raw points to integer percentages summing to exactly
// 100. Each label rounds independently; the rounding residual lands on the
// primary label so the invariant holds without reordering anything.
func normalize(raw map[Outcome]float64) OutcomeDistribution {
	dist := OutcomeDistribution{Percentages: map[Outcome]int{}}

	var total float64
	for _, pts := range raw {
		total += pts
	}
	dist.RawTotal = total

	if total <= 0 {
		for _, o := range outcomePriority {
			dist.Percentages[o] = 0
		}
		dist.Primary = OutcomeStable
		dist.Confidence = ConfidenceLow
		return dist
	}

	sum := 0
	for _, o := range outcomePriority {
		pct := int(math.Round(raw[o] / total * 100))
		dist.Percentages[o] = pct
		sum += pct
	}

	// Primary: highest percentage, priority order breaking ties.
	primary := outcomePriority[0]
	for _, o := range outcomePriority[1:] {
		if dist.Percentages[o] > dist.Percentages[primary] {
			primary = o
		}
	}
	dist.Primary = primary

	if residual := 100 - sum; residual != 0 {
		dist.Percentages[primary] += residual
	}

	switch {
	case total < 30:
		dist.Confidence = ConfidenceLow
	case total < 60:
		dist.Confidence = ConfidenceMedium
	default:
		dist.Confidence = ConfidenceHigh
	}
	return dist
}
