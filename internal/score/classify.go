package score

// Tier is a discrete risk classification derived from one numeric score.
type Tier string

const (
	TierSevere   Tier = "SEVERE"
	TierHigh     Tier = "HIGH"
	TierModerate Tier = "MODERATE"
	TierLow      Tier = "LOW"
	// TierInsufficientData marks candidates with too few statements to
	// score. Distinct from TierLow: "we don't know" is not "low risk".
	TierInsufficientData Tier = "INSUFFICIENT_DATA"
)

// Band is one rung of an ordered threshold ladder: scores at or above Min
// classify into Tier, highest rung checked first.
type Band struct {
	Min  float64 `yaml:"min" json:"min"`
	Tier Tier    `yaml:"tier" json:"tier"`
}

// riskBands is the default ladder for domain risk scores. Bands must stay
// contiguous and monotonic; Classify walks them top-down.
var riskBands = []Band{
	{Min: 75, Tier: TierSevere},
	{Min: 55, Tier: TierHigh},
	{Min: 35, Tier: TierModerate},
	{Min: 0, Tier: TierLow},
}

// MinQuartersForScoring is the fewest fiscal quarters a candidate needs
// before its fundamentals scores mean anything.
const MinQuartersForScoring = 2

// Classify maps a score to a tier via the band ladder. Recomputed fresh on
// every call, never cached against stale scores.
func Classify(score float64, bands []Band) Tier {
	for _, b := range bands {
		if score >= b.Min {
			return b.Tier
		}
	}
	return TierLow
}

// ClassifyRisk applies the default risk ladder, routing thin-coverage
// candidates to the insufficient-data tier with their score zeroed by the
// caller's contract.
func ClassifyRisk(score float64, quartersAvailable int) Tier {
	if quartersAvailable < MinQuartersForScoring {
		return TierInsufficientData
	}
	return Classify(score, riskBands)
}
