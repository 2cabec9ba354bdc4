// Package rank builds the per-run leaderboard: a deterministic top-K
// selection over scored candidates.
package rank

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/grifflux/pennywatch/internal/score"
)

// Entry is one leaderboard row. Rank is 1-based and contiguous.
type Entry struct {
	Rank    int              `json:"rank"`
	Symbol  string           `json:"symbol"`
	Score   float64          `json:"score"`
	Reason  string           `json:"reason"`
	Card    *score.Scorecard `json:"card"`
}

// Leaderboard is the full ranked output of one run, written wholesale.
type Leaderboard struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
}

// Build sorts cards by composite index descending, breaks exact ties by
// symbol ascending, assigns contiguous ranks and truncates to topK. The
// input slice is not modified.
func Build(runID string, cards []*score.Scorecard, topK int, now time.Time) Leaderboard {
	sorted := make([]*score.Scorecard, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Index.Value != sorted[j].Index.Value {
			return sorted[i].Index.Value > sorted[j].Index.Value
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	if topK > 0 && len(sorted) > topK {
		sorted = sorted[:topK]
	}

	lb := Leaderboard{RunID: runID, GeneratedAt: now, Entries: make([]Entry, 0, len(sorted))}
	for i, card := range sorted {
		lb.Entries = append(lb.Entries, Entry{
			Rank:   i + 1,
			Symbol: card.Symbol,
			Score:  card.Index.Value,
			Reason: ReasonSummary(card),
			Card:   card,
		})
	}
	return lb
}

// ReasonSummary names the heaviest contributing factors across the
// fundamental engines, most damaging first.
func ReasonSummary(card *score.Scorecard) string {
	if card.RiskTier == score.TierInsufficientData {
		return "insufficient data"
	}

	type hit struct {
		name         string
		contribution float64
	}
	var hits []hit
	for _, bd := range []score.Breakdown{card.Insolvency, card.Dilution} {
		for _, c := range bd.Contributions {
			if c.Contribution > 0 {
				hits = append(hits, hit{name: bd.Engine + "/" + c.Name, contribution: c.Contribution})
			}
		}
	}
	if len(hits) == 0 {
		return "no risk factors firing"
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].contribution > hits[j].contribution })
	if len(hits) > 3 {
		hits = hits[:3]
	}
	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = fmt.Sprintf("%s (+%.0f)", h.name, h.contribution)
	}
	return strings.Join(names, ", ")
}
