package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/grifflux/pennywatch/internal/converge"
	"github.com/grifflux/pennywatch/internal/rank"
	"github.com/grifflux/pennywatch/internal/score"
)

// PlainGenerator is the built-in text fallback when no external content
// collaborator is configured.
type PlainGenerator struct{}

// Compose renders a terse factual summary.
func (PlainGenerator) Compose(_ context.Context, card *score.Scorecard, conv *converge.Result) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "$%s distress watch: index %.0f (%s), risk %.0f, attention %.0f.",
		card.Symbol, card.Index.Value, card.Index.Tier, card.RiskScore, card.Attention.Total)
	if card.Outcomes.Primary != score.OutcomeStable {
		fmt.Fprintf(&b, " Primary outcome: %s %d%% (%s confidence).",
			card.Outcomes.Primary, card.Outcomes.Percentages[card.Outcomes.Primary], card.Outcomes.Confidence)
	}
	if conv != nil && conv.Converged {
		fmt.Fprintf(&b, " Signals converged, intensity %d.", conv.Intensity)
	}
	fmt.Fprintf(&b, " Top factors: %s.", rank.ReasonSummary(card))
	return b.String(), nil
}

// LogPoster logs the alert instead of publishing it. Used by dry runs and
// as the default when no posting collaborator is configured.
type LogPoster struct{}

// Post writes the alert to the log and reports success.
func (LogPoster) Post(_ context.Context, a Alert) error {
	log.Info().Str("alert_id", a.ID).Str("symbol", a.Symbol).Str("text", a.Text).
		Msg("Alert (dry run)")
	return nil
}
