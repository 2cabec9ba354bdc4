package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grifflux/pennywatch/internal/metrics"
	"github.com/grifflux/pennywatch/internal/model"
)

func distressedBundle() *model.MetricBundle {
	return &model.MetricBundle{
		Symbol:                  "DIST",
		Cash:                    model.Known(1_500_000),
		MonthlyBurn:             model.Known(1_000_000),
		RunwayMonths:            model.Known(1.5),
		DebtToCash:              model.Known(6),
		InterestCoverage:        model.Known(-2),
		RevenueChangePct:        model.Known(-45),
		VolumeRatio:             model.Known(4),
		FloatRatio:              model.Known(0.6),
		PeakGainPct:             model.Known(150),
		PullbackPct:             model.Known(30),
		DaysSincePeak:           model.Known(4),
		DilutionMechanismActive: true,
		RecentInsiderSelling:    true,
		QuartersAvailable:       4,
	}
}

func assertBreakdownConsistent(t *testing.T, bd Breakdown) {
	t.Helper()
	var sum float64
	for _, c := range bd.Contributions {
		assert.GreaterOrEqual(t, c.Raw, 0.0)
		assert.LessOrEqual(t, c.Raw, 1.0)
		assert.InDelta(t, c.Raw*c.Weight, c.Contribution, 1e-9)
		sum += c.Contribution
	}
	assert.InDelta(t, sum, bd.Total, 1e-9, "total must equal the sum of contributions")
	assert.GreaterOrEqual(t, bd.Total, 0.0)
	assert.LessOrEqual(t, bd.Total, 100.0)
}

func TestEngines_BreakdownSumsToTotal(t *testing.T) {
	bundles := []*model.MetricBundle{
		distressedBundle(),
		{Symbol: "EMPTY"},
		{Symbol: "MID", RunwayMonths: model.Known(8), DebtToCash: model.Known(1.2), QuartersAvailable: 3},
	}
	engines := []*Engine{
		NewInsolvencyEngine(nil),
		NewDilutionEngine(nil),
		NewAttentionEngine(nil),
	}
	for _, e := range engines {
		assert.InDelta(t, 100.0, e.WeightTotal(), 1e-9, "engine %s weights must sum to 100", e.Name)
		for _, b := range bundles {
			assertBreakdownConsistent(t, e.Evaluate(b))
		}
	}
}

func TestInsolvencyEngine_RunwayAndDebtExample(t *testing.T) {
	// Runway 1.5 months and debt/cash of 6 both hit their factor maxima;
	// with every other factor silent the total is exactly the sum of the
	// two factor weights.
	b := &model.MetricBundle{
		Symbol:            "EX",
		RunwayMonths:      model.Known(1.5),
		DebtToCash:        model.Known(6),
		QuartersAvailable: 4,
	}
	bd := NewInsolvencyEngine(nil).Evaluate(b)

	byName := map[string]Contribution{}
	for _, c := range bd.Contributions {
		byName[c.Name] = c
	}
	assert.Equal(t, 1.0, byName["runway"].Raw)
	assert.Equal(t, 1.0, byName["debt_load"].Raw)
	assert.Zero(t, byName["interest_coverage"].Contribution)
	assert.Zero(t, byName["revenue_trend"].Contribution)
	assert.InDelta(t, byName["runway"].Weight+byName["debt_load"].Weight, bd.Total, 1e-9)
}

func TestInsolvencyEngine_MissingMetricContributesZero(t *testing.T) {
	full := distressedBundle()
	partial := distressedBundle()
	partial.DebtToCash = model.Unknown()

	e := NewInsolvencyEngine(nil)
	fullBD := e.Evaluate(full)
	partialBD := e.Evaluate(partial)

	// Only the debt factor moved; nothing else was skipped or disturbed.
	assert.InDelta(t, fullBD.Total-20, partialBD.Total, 1e-9)
	for i, c := range partialBD.Contributions {
		if c.Name == "debt_load" {
			assert.Zero(t, c.Contribution)
			continue
		}
		assert.InDelta(t, fullBD.Contributions[i].Contribution, c.Contribution, 1e-9)
	}
}

func TestInterestCoverage_SafeSentinelScoresZero(t *testing.T) {
	b := &model.MetricBundle{
		Symbol:            "NODEBT",
		InterestCoverage:  model.Known(metrics.CoverageSafe),
		QuartersAvailable: 4,
	}
	assert.Zero(t, scoreInterestCoverage(b), "no-debt sentinel must not read as distress")
}

func TestDilutionEngine_MechanismDominates(t *testing.T) {
	b := &model.MetricBundle{
		Symbol:                  "ATM",
		DilutionMechanismActive: true,
		QuartersAvailable:       4,
	}
	bd := NewDilutionEngine(nil).Evaluate(b)
	assert.InDelta(t, 35.0, bd.Total, 1e-9)
}

func TestApplyOverrides(t *testing.T) {
	e := NewInsolvencyEngine(map[string]float64{"runway": 50, "nonexistent": 10})
	var runwayWeight float64
	for _, f := range e.Factors {
		if f.Name == "runway" {
			runwayWeight = f.Weight
		}
	}
	require.Equal(t, 50.0, runwayWeight)
}

func TestEvaluate_TotalEqualsSumEvenOffScale(t *testing.T) {
	// An inflated weight table must not see the total diverge from the
	// contributions; the scale is enforced at validation time, not by
	// clamping here.
	e := NewInsolvencyEngine(map[string]float64{"runway": 60, "debt_load": 60})
	bd := e.Evaluate(distressedBundle())

	var sum float64
	for _, c := range bd.Contributions {
		sum += c.Contribution
	}
	assert.InDelta(t, sum, bd.Total, 1e-9)
	assert.Greater(t, bd.Total, 100.0)
}

func TestValidateWeights(t *testing.T) {
	assert.NoError(t, ValidateWeights(nil))
	assert.NoError(t, ValidateWeights(map[string]map[string]float64{
		"insolvency": {"runway": 40, "debt_load": 10},
	}))

	err := ValidateWeights(map[string]map[string]float64{
		"insolvency": {"runway": 60, "debt_load": 60},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insolvency")

	assert.Error(t, ValidateWeights(map[string]map[string]float64{
		"attention": {"volume_surge": 10},
	}))
}

func TestFactorStepFunctionsMonotone(t *testing.T) {
	// Walking runway downward never decreases the sub-score.
	prev := -1.0
	for months := 24.0; months >= 0; months -= 0.5 {
		b := &model.MetricBundle{RunwayMonths: model.Known(months)}
		s := scoreRunway(b)
		assert.GreaterOrEqual(t, s, prev-1e-12)
		if !math.IsNaN(s) {
			prev = s
		}
	}
}
