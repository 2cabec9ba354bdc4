// Package score maps metric bundles to domain risk scores, outcome
// probabilities and alert classifications. Each engine is a declarative
// table of weighted factors over a shared scorer; engines never read each
// other's output.
package score

import (
	"fmt"
	"math"

	"github.com/grifflux/pennywatch/internal/model"
)

// weightScale is the sum every engine's weight table must keep so totals
// stay on the 0-100 scale.
const weightScale = 100.0

// Factor is one row of an engine's weight table. Score maps the bundle to
// a raw sub-score in [0,1]; a missing metric must map to 0 so the factor
// contributes nothing without disturbing the rest of the table.
type Factor struct {
	Name   string
	Weight float64
	Score  func(b *model.MetricBundle) float64
}

// Contribution is one factor's share of an engine total.
type Contribution struct {
	Name         string  `json:"name"`
	Raw          float64 `json:"raw"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Breakdown is a full engine evaluation: the total always equals the sum
// of the contributions. With a weight table on the 100 scale and raw
// sub-scores in [0,1] the total lands in [0,100].
type Breakdown struct {
	Engine        string         `json:"engine"`
	Total         float64        `json:"total"`
	Contributions []Contribution `json:"contributions"`
}

// Engine evaluates a weight table against metric bundles. Weights are
// expected to sum to 100 so the total lands on a 0-100 scale.
type Engine struct {
	Name    string
	Factors []Factor
}

// WeightTotal returns the sum of the table's weights.
func (e *Engine) WeightTotal() float64 {
	var total float64
	for _, f := range e.Factors {
		total += f.Weight
	}
	return total
}

// Evaluate scores the bundle against every factor in table order.
func (e *Engine) Evaluate(b *model.MetricBundle) Breakdown {
	out := Breakdown{
		Engine:        e.Name,
		Contributions: make([]Contribution, 0, len(e.Factors)),
	}
	for _, f := range e.Factors {
		raw := f.Score(b)
		if raw < 0 {
			raw = 0
		}
		if raw > 1 {
			raw = 1
		}
		c := raw * f.Weight
		out.Contributions = append(out.Contributions, Contribution{
			Name:         f.Name,
			Raw:          raw,
			Weight:       f.Weight,
			Contribution: c,
		})
		out.Total += c
	}
	return out
}

// ValidateWeights builds each engine with the given overrides applied and
// rejects any table whose weights no longer sum to the 100 scale. An
// unbalanced table would let contributions drift off the scale the totals
// are read on.
func ValidateWeights(overrides map[string]map[string]float64) error {
	engines := []*Engine{
		NewInsolvencyEngine(overrides["insolvency"]),
		NewDilutionEngine(overrides["dilution"]),
		NewAttentionEngine(overrides["attention"]),
	}
	for _, e := range engines {
		if sum := e.WeightTotal(); math.Abs(sum-weightScale) > 1e-6 {
			return fmt.Errorf("scoring.weights.%s: weights sum to %g, want %g", e.Name, sum, weightScale)
		}
	}
	return nil
}

// applyOverrides swaps in configured weights by factor name. Unknown names
// are ignored so a stale config key cannot break an engine.
func applyOverrides(factors []Factor, overrides map[string]float64) []Factor {
	if len(overrides) == 0 {
		return factors
	}
	out := make([]Factor, len(factors))
	copy(out, factors)
	for i := range out {
		if w, ok := overrides[out[i].Name]; ok {
			out[i].Weight = w
		}
	}
	return out
}
