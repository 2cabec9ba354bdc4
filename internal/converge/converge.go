// Package converge detects when independently-sourced risk and attention
// signals align on one candidate. Convergence is a strict AND: no
// criterion is soft.
package converge

import (
	"fmt"
	"math"

	"github.com/grifflux/pennywatch/internal/score"
)

// boolCriterionPoints is the fixed intensity value a satisfied boolean
// criterion contributes, since it has no numeric score of its own.
const boolCriterionPoints = 100.0

// Criteria names, stable across config and reports.
const (
	CriterionMechanism = "mechanism_active"
	CriterionRisk      = "risk_score"
	CriterionAttention = "attention_index"
)

// Thresholds configures the numeric criteria.
type Thresholds struct {
	MinRiskScore      float64 `yaml:"min_risk_score" json:"min_risk_score"`
	MinAttentionScore float64 `yaml:"min_attention_score" json:"min_attention_score"`
}

// DefaultThresholds returns the production criteria levels.
func DefaultThresholds() Thresholds {
	return Thresholds{MinRiskScore: 60, MinAttentionScore: 50}
}

// criterion is one named check. Adding a fourth convergence signal means
// adding one entry to the table in Evaluate, nothing else.
type criterion struct {
	name  string
	met   bool
	score float64 // numeric contribution when met
}

// Result reports which criteria fired, whether they all did, and the
// intensity of the alignment. NearMiss marks candidates one criterion
// short; FailedCriteria names what held them back. This is a first-class
// diagnostic output, not a logging side effect.
type Result struct {
	Symbol         string          `json:"symbol"`
	CriteriaMet    map[string]bool `json:"criteria_met"`
	PassCount      int             `json:"pass_count"`
	Converged      bool            `json:"converged"`
	Intensity      int             `json:"intensity,omitempty"` // defined only when Converged
	NearMiss       bool            `json:"near_miss"`
	FailedCriteria []string        `json:"failed_criteria,omitempty"`
}

// Detector evaluates the criteria set against scorecards.
type Detector struct {
	thresholds Thresholds
}

// NewDetector builds a detector; zero thresholds fall back to defaults.
func NewDetector(t Thresholds) *Detector {
	if t.MinRiskScore <= 0 && t.MinAttentionScore <= 0 {
		t = DefaultThresholds()
	}
	return &Detector{thresholds: t}
}

// Evaluate checks all criteria for one scorecard.
func (d *Detector) Evaluate(card *score.Scorecard) Result {
	criteria := []criterion{
		{
			name:  CriterionMechanism,
			met:   card.Bundle.DilutionMechanismActive,
			score: boolCriterionPoints,
		},
		{
			name:  CriterionRisk,
			met:   card.RiskScore >= d.thresholds.MinRiskScore,
			score: card.RiskScore,
		},
		{
			name:  CriterionAttention,
			met:   card.Attention.Total >= d.thresholds.MinAttentionScore,
			score: card.Attention.Total,
		},
	}

	res := Result{
		Symbol:      card.Symbol,
		CriteriaMet: make(map[string]bool, len(criteria)),
	}
	var sum float64
	for _, c := range criteria {
		res.CriteriaMet[c.name] = c.met
		if c.met {
			res.PassCount++
			sum += c.score
		} else {
			res.FailedCriteria = append(res.FailedCriteria, c.name)
		}
	}

	res.Converged = res.PassCount == len(criteria)
	if res.Converged {
		res.Intensity = int(math.Round(sum / float64(len(criteria))))
		res.FailedCriteria = nil
		return res
	}
	res.NearMiss = res.PassCount == len(criteria)-1
	return res
}

// Describe renders a short human-readable account of a result.
func Describe(r Result) string {
	if r.Converged {
		return fmt.Sprintf("%s converged, intensity %d", r.Symbol, r.Intensity)
	}
	if r.NearMiss {
		return fmt.Sprintf("%s near miss, failing: %v", r.Symbol, r.FailedCriteria)
	}
	return fmt.Sprintf("%s passed %d criteria", r.Symbol, r.PassCount)
}
