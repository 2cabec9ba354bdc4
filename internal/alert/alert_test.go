package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grifflux/pennywatch/internal/converge"
	"github.com/grifflux/pennywatch/internal/ledger"
	"github.com/grifflux/pennywatch/internal/rank"
	"github.com/grifflux/pennywatch/internal/score"
	"github.com/grifflux/pennywatch/internal/telemetry"
)

type memRepo struct {
	records map[string]time.Time
}

func newMemRepo() *memRepo { return &memRepo{records: map[string]time.Time{}} }

func (m *memRepo) Get(_ context.Context, key string) (time.Time, error) {
	at, ok := m.records[key]
	if !ok {
		return time.Time{}, ledger.ErrNoRecord
	}
	return at, nil
}

func (m *memRepo) Put(_ context.Context, key string, at time.Time) error {
	m.records[key] = at
	return nil
}

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Compose(context.Context, *score.Scorecard, *converge.Result) (string, error) {
	return s.text, s.err
}

type recordingPoster struct {
	posted []Alert
	err    error
}

func (r *recordingPoster) Post(_ context.Context, a Alert) error {
	if r.err != nil {
		return r.err
	}
	r.posted = append(r.posted, a)
	return nil
}

var alertNow = time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC)

func entry(rankN int, symbol string, indexValue float64, eligible bool) rank.Entry {
	return rank.Entry{
		Rank:   rankN,
		Symbol: symbol,
		Score:  indexValue,
		Card: &score.Scorecard{
			Symbol: symbol,
			Index:  score.CompositeIndex{Value: indexValue, AlertEligible: eligible},
		},
	}
}

func board(entries ...rank.Entry) rank.Leaderboard {
	return rank.Leaderboard{RunID: "run-1", GeneratedAt: alertNow, Entries: entries}
}

func newPublisher(repo ledger.Repository, poster Poster, gen ContentGenerator) *Publisher {
	ld := ledger.New(repo, 7*24*time.Hour, ledger.WithClock(func() time.Time { return alertNow }))
	p := NewPublisher(ld, gen, poster, 55, telemetry.NewRegistry())
	p.clock = func() time.Time { return alertNow }
	return p
}

func TestPublish_PostsTopEligibleAndMarksCooldown(t *testing.T) {
	repo := newMemRepo()
	poster := &recordingPoster{}
	p := newPublisher(repo, poster, stubGenerator{text: "watch AAA"})

	res, err := p.Publish(context.Background(), board(
		entry(1, "AAA", 80, true),
		entry(2, "BBB", 70, true),
	), nil, false)

	require.NoError(t, err)
	require.True(t, res.Selected)
	require.NotNil(t, res.Alert)
	assert.Equal(t, "AAA", res.Alert.Symbol)
	assert.Equal(t, "watch AAA", res.Alert.Text)
	assert.NotEmpty(t, res.Alert.ID)
	require.Len(t, poster.posted, 1)

	_, onRecord := repo.records["AAA"]
	assert.True(t, onRecord, "cooldown record written after post success")
	_, bbbRecord := repo.records["BBB"]
	assert.False(t, bbbRecord)
}

func TestPublish_PosterFailureLeavesNoCooldownRecord(t *testing.T) {
	repo := newMemRepo()
	poster := &recordingPoster{err: errors.New("api down")}
	p := newPublisher(repo, poster, stubGenerator{text: "x"})

	res, err := p.Publish(context.Background(), board(entry(1, "AAA", 80, true)), nil, false)

	require.Error(t, err)
	assert.False(t, res.Selected)
	assert.Empty(t, repo.records, "failed post must not burn the cooldown")
}

func TestPublish_ComposeFailureLeavesNoCooldownRecord(t *testing.T) {
	repo := newMemRepo()
	poster := &recordingPoster{}
	p := newPublisher(repo, poster, stubGenerator{err: errors.New("template broken")})

	_, err := p.Publish(context.Background(), board(entry(1, "AAA", 80, true)), nil, false)

	require.Error(t, err)
	assert.Empty(t, poster.posted)
	assert.Empty(t, repo.records)
}

func TestPublish_SkipsCooldownAndReportsSkipped(t *testing.T) {
	repo := newMemRepo()
	repo.records["AAA"] = alertNow.Add(-24 * time.Hour) // alerted yesterday
	poster := &recordingPoster{}
	p := newPublisher(repo, poster, stubGenerator{text: "x"})

	res, err := p.Publish(context.Background(), board(
		entry(1, "AAA", 80, true),
		entry(2, "BBB", 70, true),
	), nil, false)

	require.NoError(t, err)
	require.True(t, res.Selected)
	assert.Equal(t, "BBB", res.Alert.Symbol)
	assert.Equal(t, []string{"AAA"}, res.Skipped)
}

func TestPublish_OverrideBypassesCooldown(t *testing.T) {
	repo := newMemRepo()
	repo.records["AAA"] = alertNow.Add(-24 * time.Hour)
	poster := &recordingPoster{}
	p := newPublisher(repo, poster, stubGenerator{text: "x"})

	res, err := p.Publish(context.Background(), board(entry(1, "AAA", 80, true)), nil, true)

	require.NoError(t, err)
	require.True(t, res.Selected)
	assert.Equal(t, "AAA", res.Alert.Symbol)
	assert.Equal(t, alertNow, repo.records["AAA"], "record refreshed even on override")
}

func TestPublish_AllOnCooldownIsNormalOutcome(t *testing.T) {
	repo := newMemRepo()
	repo.records["AAA"] = alertNow.Add(-time.Hour)
	poster := &recordingPoster{}
	p := newPublisher(repo, poster, stubGenerator{text: "x"})

	res, err := p.Publish(context.Background(), board(entry(1, "AAA", 80, true)), nil, false)

	require.NoError(t, err)
	assert.False(t, res.Selected)
	assert.Equal(t, []string{"AAA"}, res.Skipped)
	assert.Empty(t, poster.posted)
}

func TestPublish_FiltersIneligibleAndBelowFloor(t *testing.T) {
	repo := newMemRepo()
	poster := &recordingPoster{}
	p := newPublisher(repo, poster, stubGenerator{text: "x"})

	res, err := p.Publish(context.Background(), board(
		entry(1, "WATCH", 45, false), // below the eligibility tier
		entry(2, "LOWSC", 50, true),  // eligible tier but under the floor
	), nil, false)

	require.NoError(t, err)
	assert.False(t, res.Selected)
	assert.Empty(t, poster.posted)
}

func TestPublish_AttachesConvergence(t *testing.T) {
	repo := newMemRepo()
	poster := &recordingPoster{}
	p := newPublisher(repo, poster, stubGenerator{text: "x"})

	convs := map[string]converge.Result{
		"AAA": {Symbol: "AAA", Converged: true, Intensity: 80},
	}
	res, err := p.Publish(context.Background(), board(entry(1, "AAA", 80, true)), convs, false)

	require.NoError(t, err)
	require.NotNil(t, res.Alert)
	require.NotNil(t, res.Alert.Convergence)
	assert.True(t, res.Alert.Convergence.Converged)
}
