package score

import "github.com/grifflux/pennywatch/internal/model"

// NewDilutionEngine builds the dilution-severity weight table: how likely
// and how damaging a near-term share issuance would be. Weights sum to 100.
func NewDilutionEngine(overrides map[string]float64) *Engine {
	factors := []Factor{
		{Name: "mechanism_active", Weight: 35, Score: scoreMechanismActive},
		{Name: "runway_pressure", Weight: 25, Score: scoreRunwayPressure},
		{Name: "float_fragility", Weight: 15, Score: scoreFloatFragility},
		{Name: "insider_selling", Weight: 15, Score: scoreInsiderSelling},
		{Name: "volume_surge", Weight: 10, Score: scoreVolumeSurge},
	}
	return &Engine{Name: "dilution", Factors: applyOverrides(factors, overrides)}
}

// scoreMechanismActive: an effective shelf or ATM on file is the single
// strongest dilution tell.
func scoreMechanismActive(b *model.MetricBundle) float64 {
	if b.DilutionMechanismActive {
		return 1.0
	}
	return 0
}

// scoreRunwayPressure: the shorter the runway, the sooner the company must
// raise, into whatever price the market gives it.
func scoreRunwayPressure(b *model.MetricBundle) float64 {
	months, ok := b.RunwayMonths.Value()
	if !ok {
		return 0
	}
	switch {
	case months <= 3:
		return 1.0
	case months <= 6:
		return 0.7
	case months <= 9:
		return 0.4
	case months <= 12:
		return 0.2
	default:
		return 0
	}
}

// scoreFloatFragility: daily turnover as a fraction of float. A small
// float turning over fast absorbs new supply badly.
func scoreFloatFragility(b *model.MetricBundle) float64 {
	ratio, ok := b.FloatRatio.Value()
	if !ok {
		return 0
	}
	switch {
	case ratio >= 0.5:
		return 1.0
	case ratio >= 0.25:
		return 0.6
	case ratio >= 0.1:
		return 0.3
	default:
		return 0
	}
}

func scoreVolumeSurge(b *model.MetricBundle) float64 {
	ratio, ok := b.VolumeRatio.Value()
	if !ok {
		return 0
	}
	switch {
	case ratio >= 3:
		return 1.0
	case ratio >= 2:
		return 0.6
	case ratio >= 1.5:
		return 0.3
	default:
		return 0
	}
}
