package score

import "github.com/grifflux/pennywatch/internal/model"

// NewAttentionEngine builds the market-attention table: how much of the
// market's eye a ticker currently holds. High attention plus high risk is
// what makes an alert worth publishing. Weights sum to 100.
func NewAttentionEngine(overrides map[string]float64) *Engine {
	factors := []Factor{
		{Name: "volume_surge", Weight: 35, Score: scoreAttentionVolume},
		{Name: "peak_gain", Weight: 25, Score: scorePeakGain},
		{Name: "pullback", Weight: 20, Score: scorePullback},
		{Name: "float_turnover", Weight: 20, Score: scoreFloatTurnover},
	}
	return &Engine{Name: "attention", Factors: applyOverrides(factors, overrides)}
}

func scoreAttentionVolume(b *model.MetricBundle) float64 {
	ratio, ok := b.VolumeRatio.Value()
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
	case ratio >= 1.5:
		return 0.25
	default:
		return 0
	}
}

// scorePeakGain: the size of the recent run-up. Big spikes draw the crowd
// that a dilution lands on.
func scorePeakGain(b *model.MetricBundle) float64 {
	gain, ok := b.PeakGainPct.Value()
	if !ok {
		return 0
	}
	switch {
	case gain >= 200:
		return 1.0
	case gain >= 100:
		return 0.75
	case gain >= 50:
		return 0.5
	case gain >= 25:
		return 0.25
	default:
		return 0
	}
}

// scorePullback: a spike already fading keeps attention while supply
// overhang builds.
func scorePullback(b *model.MetricBundle) float64 {
	pb, ok := b.PullbackPct.Value()
	if !ok {
		return 0
	}
	// Only meaningful off a recent peak.
	if days, ok := b.DaysSincePeak.Value(); !ok || days > 20 {
		return 0
	}
	switch {
	case pb >= 40:
		return 1.0
	case pb >= 25:
		return 0.7
	case pb >= 15:
		return 0.4
	case pb >= 8:
		return 0.2
	default:
		return 0
	}
}

func scoreFloatTurnover(b *model.MetricBundle) float64 {
	ratio, ok := b.FloatRatio.Value()
	if !ok {
		return 0
	}
	switch {
	case ratio >= 1.0:
		return 1.0
	case ratio >= 0.5:
		return 0.7
	case ratio >= 0.2:
		return 0.4
	case ratio >= 0.05:
		return 0.15
	default:
		return 0
	}
}
