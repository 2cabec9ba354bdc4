package score

// Composite index weights: risk carries the index, attention decides how
// loud the alert is.
const (
	defaultRiskWeight      = 0.6
	defaultAttentionWeight = 0.4
)

// AlertTier classifies the composite index and carries alert eligibility:
// a tier can be scored and reported without ever being posted.
type AlertTier struct {
	Min      float64 `yaml:"min" json:"min"`
	Label    string  `yaml:"label" json:"label"`
	Eligible bool    `yaml:"eligible" json:"eligible"`
}

var defaultAlertTiers = []AlertTier{
	{Min: 70, Label: "critical", Eligible: true},
	{Min: 55, Label: "elevated", Eligible: true},
	{Min: 40, Label: "watch", Eligible: false},
	{Min: 0, Label: "informational", Eligible: false},
}

// CompositeIndex is the blended ranking index with its classification.
type CompositeIndex struct {
	Value          float64 `json:"value"`
	RiskScore      float64 `json:"risk_score"`
	AttentionScore float64 `json:"attention_score"`
	RiskWeight     float64 `json:"risk_weight"`
	AttentionWt    float64 `json:"attention_weight"`
	Tier           string  `json:"tier"`
	AlertEligible  bool    `json:"alert_eligible"`
}

// Combiner blends two already-computed domain scores with fixed weights.
type Combiner struct {
	riskWeight      float64
	attentionWeight float64
	tiers           []AlertTier
}

// NewCombiner returns a combiner with the given convex weights; zero
// values fall back to the 0.6/0.4 default. Tiers may be nil for defaults.
func NewCombiner(riskWeight, attentionWeight float64, tiers []AlertTier) *Combiner {
	if riskWeight <= 0 || attentionWeight <= 0 {
		riskWeight = defaultRiskWeight
		attentionWeight = defaultAttentionWeight
	}
	if len(tiers) == 0 {
		tiers = defaultAlertTiers
	}
	return &Combiner{riskWeight: riskWeight, attentionWeight: attentionWeight, tiers: tiers}
}

// Combine blends risk and attention (each 0-100) and classifies the index.
func (c *Combiner) Combine(risk, attention float64) CompositeIndex {
	idx := CompositeIndex{
		RiskScore:      risk,
		AttentionScore: attention,
		RiskWeight:     c.riskWeight,
		AttentionWt:    c.attentionWeight,
		Value:          risk*c.riskWeight + attention*c.attentionWeight,
	}
	for _, t := range c.tiers {
		if idx.Value >= t.Min {
			idx.Tier = t.Label
			idx.AlertEligible = t.Eligible
			break
		}
	}
	return idx
}
