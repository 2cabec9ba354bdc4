// Package alert selects the next candidate to publish and hands it to the
// external content and posting collaborators. The cooldown record is
// updated only after the poster reports success.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/grifflux/pennywatch/internal/converge"
	"github.com/grifflux/pennywatch/internal/ledger"
	"github.com/grifflux/pennywatch/internal/rank"
	"github.com/grifflux/pennywatch/internal/score"
	"github.com/grifflux/pennywatch/internal/telemetry"
)

// Alert is the payload handed to the posting collaborator.
type Alert struct {
	ID          string           `json:"id"`
	Symbol      string           `json:"symbol"`
	Text        string           `json:"text"`
	Card        *score.Scorecard `json:"card"`
	Convergence *converge.Result `json:"convergence,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ContentGenerator turns a scorecard into publishable text. The pipeline
// makes no assumption about its output format.
type ContentGenerator interface {
	Compose(ctx context.Context, card *score.Scorecard, conv *converge.Result) (string, error)
}

// Poster publishes an alert. An error means the alert did not go out and
// the cooldown record must not be written.
type Poster interface {
	Post(ctx context.Context, a Alert) error
}

// Publisher runs the cooldown-gated selection and the collaborator
// handoff.
type Publisher struct {
	ledger   *ledger.Ledger
	gen      ContentGenerator
	poster   Poster
	minScore float64
	registry *telemetry.Registry
	clock    func() time.Time
}

// NewPublisher wires the publisher.
func NewPublisher(ld *ledger.Ledger, gen ContentGenerator, poster Poster, minScore float64, registry *telemetry.Registry) *Publisher {
	return &Publisher{
		ledger:   ld,
		gen:      gen,
		poster:   poster,
		minScore: minScore,
		registry: registry,
		clock:    time.Now,
	}
}

// Result reports what Publish did, including candidates skipped on
// cooldown.
type Result struct {
	Alert    *Alert   `json:"alert,omitempty"`
	Skipped  []string `json:"skipped,omitempty"`
	Selected bool     `json:"selected"`
}

// Publish walks the leaderboard in rank order, keeps only alert-eligible
// entries above the score floor, applies the cooldown gate (unless
// override) and posts the first survivor. Nothing eligible is a normal
// outcome, not an error.
func (p *Publisher) Publish(ctx context.Context, lb rank.Leaderboard, convergences map[string]converge.Result, override bool) (Result, error) {
	var eligible []string
	cards := make(map[string]*score.Scorecard, len(lb.Entries))
	for _, e := range lb.Entries {
		if !e.Card.Index.AlertEligible || e.Score < p.minScore {
			continue
		}
		eligible = append(eligible, e.Symbol)
		cards[e.Symbol] = e.Card
	}
	if len(eligible) == 0 {
		log.Info().Msg("No alert-eligible candidates this run")
		return Result{}, nil
	}

	sel := p.ledger.SelectNext(ctx, eligible, override)
	p.registry.AlertsSkipped.Add(float64(len(sel.Skipped)))
	res := Result{Skipped: sel.Skipped}
	if !sel.Found {
		log.Info().Strs("skipped", sel.Skipped).Msg("All eligible candidates on cooldown")
		return res, nil
	}

	card := cards[sel.Selected]
	var conv *converge.Result
	if c, ok := convergences[sel.Selected]; ok {
		conv = &c
	}

	text, err := p.gen.Compose(ctx, card, conv)
	if err != nil {
		return res, fmt.Errorf("compose alert for %s: %w", sel.Selected, err)
	}

	a := Alert{
		ID:          uuid.NewString(),
		Symbol:      sel.Selected,
		Text:        text,
		Card:        card,
		Convergence: conv,
		CreatedAt:   p.clock(),
	}
	if err := p.poster.Post(ctx, a); err != nil {
		return res, fmt.Errorf("post alert for %s: %w", sel.Selected, err)
	}

	// Poster confirmed: now, and only now, the cooldown record moves.
	if err := p.ledger.MarkAlerted(ctx, a.Symbol); err != nil {
		log.Error().Err(err).Str("symbol", a.Symbol).Msg("Alert posted but cooldown record failed")
	}
	p.registry.AlertsEmitted.Inc()
	res.Alert = &a
	res.Selected = true
	return res, nil
}
