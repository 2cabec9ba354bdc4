package score

import (
	"time"

	"github.com/grifflux/pennywatch/internal/model"
)

// Scorecard is the fully-evaluated view of one candidate: every engine's
// breakdown, the outcome distribution, the composite index and the tier.
// This is the object handed to ranking, convergence and the content
// collaborator.
type Scorecard struct {
	Symbol      string              `json:"symbol"`
	GeneratedAt time.Time           `json:"generated_at"`
	Bundle      model.MetricBundle  `json:"bundle"`
	Insolvency  Breakdown           `json:"insolvency"`
	Dilution    Breakdown           `json:"dilution"`
	Attention   Breakdown           `json:"attention"`
	RiskScore   float64             `json:"risk_score"`
	RiskTier    Tier                `json:"risk_tier"`
	Outcomes    OutcomeDistribution `json:"outcomes"`
	Index       CompositeIndex      `json:"index"`
}

// Scorer wires the three engines and the combiner into one evaluation.
type Scorer struct {
	insolvency *Engine
	dilution   *Engine
	attention  *Engine
	combiner   *Combiner
	clock      func() time.Time
}

// ScorerOption mutates a Scorer at construction.
type ScorerOption func(*Scorer)

// WithClock overrides the scorecard timestamp source.
func WithClock(clock func() time.Time) ScorerOption {
	return func(s *Scorer) { s.clock = clock }
}

// WithEngineWeights applies per-engine factor weight overrides keyed by
// engine name ("insolvency", "dilution", "attention").
func WithEngineWeights(weights map[string]map[string]float64) ScorerOption {
	return func(s *Scorer) {
		s.insolvency = NewInsolvencyEngine(weights["insolvency"])
		s.dilution = NewDilutionEngine(weights["dilution"])
		s.attention = NewAttentionEngine(weights["attention"])
	}
}

// WithCombiner overrides the composite index combiner.
func WithCombiner(c *Combiner) ScorerOption {
	return func(s *Scorer) { s.combiner = c }
}

// NewScorer builds a scorer with default tables.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		insolvency: NewInsolvencyEngine(nil),
		dilution:   NewDilutionEngine(nil),
		attention:  NewAttentionEngine(nil),
		combiner:   NewCombiner(0, 0, nil),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score evaluates every engine over the bundle. Candidates with too few
// statements get a zeroed risk score and the insufficient-data tier; their
// attention score still reflects market data, but the index cannot make
// them alert-eligible on fundamentals they don't have.
func (s *Scorer) Score(b *model.MetricBundle) *Scorecard {
	card := &Scorecard{
		Symbol:      b.Symbol,
		GeneratedAt: s.clock(),
		Bundle:      *b,
		Attention:   s.attention.Evaluate(b),
	}

	if b.QuartersAvailable < MinQuartersForScoring {
		card.Insolvency = Breakdown{Engine: "insolvency"}
		card.Dilution = Breakdown{Engine: "dilution"}
		card.RiskScore = 0
		card.RiskTier = TierInsufficientData
		card.Outcomes = ComputeOutcomes(&model.MetricBundle{Symbol: b.Symbol})
		card.Index = s.combiner.Combine(0, card.Attention.Total)
		return card
	}

	card.Insolvency = s.insolvency.Evaluate(b)
	card.Dilution = s.dilution.Evaluate(b)

	// The domain risk score is the worse of the two fundamental engines:
	// a clean balance sheet with an aggressive ATM is still a risk story.
	card.RiskScore = card.Insolvency.Total
	if card.Dilution.Total > card.RiskScore {
		card.RiskScore = card.Dilution.Total
	}

	card.RiskTier = ClassifyRisk(card.RiskScore, b.QuartersAvailable)
	card.Outcomes = ComputeOutcomes(b)
	card.Index = s.combiner.Combine(card.RiskScore, card.Attention.Total)
	return card
}
