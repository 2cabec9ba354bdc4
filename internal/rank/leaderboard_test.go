package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grifflux/pennywatch/internal/score"
)

func cardWith(symbol string, index float64) *score.Scorecard {
	return &score.Scorecard{
		Symbol: symbol,
		Index:  score.CompositeIndex{Value: index},
	}
}

func TestBuild_RanksDescendingContiguous(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	cards := []*score.Scorecard{
		cardWith("AAA", 40),
		cardWith("BBB", 90),
		cardWith("CCC", 65),
	}
	lb := Build("run-1", cards, 10, now)

	require.Len(t, lb.Entries, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{lb.Entries[0].Rank, lb.Entries[1].Rank, lb.Entries[2].Rank})
	assert.Equal(t, "BBB", lb.Entries[0].Symbol)
	assert.Equal(t, "CCC", lb.Entries[1].Symbol)
	assert.Equal(t, "AAA", lb.Entries[2].Symbol)
}

func TestBuild_TieBreakSymbolAscending(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	cards := []*score.Scorecard{
		cardWith("ZZZ", 70),
		cardWith("MMM", 70),
		cardWith("AAA", 70),
	}

	// Reproducible across repeated builds on identical input.
	for i := 0; i < 5; i++ {
		lb := Build("run-1", cards, 10, now)
		require.Len(t, lb.Entries, 3)
		assert.Equal(t, "AAA", lb.Entries[0].Symbol)
		assert.Equal(t, "MMM", lb.Entries[1].Symbol)
		assert.Equal(t, "ZZZ", lb.Entries[2].Symbol)
	}
}

func TestBuild_TruncatesToTopK(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	cards := []*score.Scorecard{
		cardWith("AAA", 10), cardWith("BBB", 20), cardWith("CCC", 30),
		cardWith("DDD", 40), cardWith("EEE", 50),
	}
	lb := Build("run-1", cards, 2, now)
	require.Len(t, lb.Entries, 2)
	assert.Equal(t, "EEE", lb.Entries[0].Symbol)
	assert.Equal(t, "DDD", lb.Entries[1].Symbol)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	cards := []*score.Scorecard{cardWith("AAA", 10), cardWith("BBB", 90)}
	Build("run-1", cards, 10, now)
	assert.Equal(t, "AAA", cards[0].Symbol, "caller's order preserved")
}

func TestReasonSummary_InsufficientData(t *testing.T) {
	card := &score.Scorecard{Symbol: "THIN", RiskTier: score.TierInsufficientData}
	assert.Equal(t, "insufficient data", ReasonSummary(card))
}

func TestReasonSummary_TopFactors(t *testing.T) {
	card := &score.Scorecard{
		Symbol:   "XYZ",
		RiskTier: score.TierHigh,
		Insolvency: score.Breakdown{
			Engine: "insolvency",
			Contributions: []score.Contribution{
				{Name: "runway", Contribution: 30},
				{Name: "debt_load", Contribution: 0},
			},
		},
		Dilution: score.Breakdown{
			Engine: "dilution",
			Contributions: []score.Contribution{
				{Name: "mechanism_active", Contribution: 35},
			},
		},
	}
	summary := ReasonSummary(card)
	assert.Contains(t, summary, "dilution/mechanism_active (+35)")
	assert.Contains(t, summary, "insolvency/runway (+30)")
	assert.NotContains(t, summary, "debt_load")
}
