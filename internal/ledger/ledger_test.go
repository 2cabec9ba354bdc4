package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	m map[string]time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{m: map[string]time.Time{}}
}

func (r *memRepo) Get(_ context.Context, key string) (time.Time, error) {
	at, ok := r.m[key]
	if !ok {
		return time.Time{}, ErrNoRecord
	}
	return at, nil
}

func (r *memRepo) Put(_ context.Context, key string, at time.Time) error {
	r.m[key] = at
	return nil
}

func TestLedger_CooldownBoundaries(t *testing.T) {
	ctx := context.Background()
	cooldown := 7 * 24 * time.Hour
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	l := New(newMemRepo(), cooldown, WithClock(func() time.Time { return now }))

	assert.False(t, l.IsOnCooldown(ctx, "XYZ"), "no record means never on cooldown")

	require.NoError(t, l.MarkAlerted(ctx, "XYZ"))
	assert.True(t, l.IsOnCooldown(ctx, "XYZ"), "just alerted")

	marked := now

	now = marked.Add(cooldown - time.Second)
	assert.True(t, l.IsOnCooldown(ctx, "XYZ"), "one unit before the period ends")

	now = marked.Add(cooldown)
	assert.False(t, l.IsOnCooldown(ctx, "XYZ"), "exactly at the period boundary")

	now = marked.Add(cooldown + time.Hour)
	assert.False(t, l.IsOnCooldown(ctx, "XYZ"), "after the period")
}

func TestLedger_MarkOverwrites(t *testing.T) {
	ctx := context.Background()
	cooldown := 24 * time.Hour
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	l := New(newMemRepo(), cooldown, WithClock(func() time.Time { return now }))

	require.NoError(t, l.MarkAlerted(ctx, "XYZ"))
	now = now.Add(48 * time.Hour)
	assert.False(t, l.IsOnCooldown(ctx, "XYZ"))

	// Re-alerting restarts the clock.
	require.NoError(t, l.MarkAlerted(ctx, "XYZ"))
	now = now.Add(time.Hour)
	assert.True(t, l.IsOnCooldown(ctx, "XYZ"))
}

func TestSelectNext_SkipsCooldownInRankOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	l := New(newMemRepo(), 7*24*time.Hour, WithClock(func() time.Time { return now }))

	require.NoError(t, l.MarkAlerted(ctx, "AAA"))
	require.NoError(t, l.MarkAlerted(ctx, "BBB"))

	sel := l.SelectNext(ctx, []string{"AAA", "BBB", "CCC", "DDD"}, false)
	require.True(t, sel.Found)
	assert.Equal(t, "CCC", sel.Selected, "first candidate off cooldown wins")
	assert.Equal(t, []string{"AAA", "BBB"}, sel.Skipped)
}

func TestSelectNext_AllOnCooldown(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	l := New(newMemRepo(), 7*24*time.Hour, WithClock(func() time.Time { return now }))

	require.NoError(t, l.MarkAlerted(ctx, "AAA"))
	sel := l.SelectNext(ctx, []string{"AAA"}, false)
	assert.False(t, sel.Found)
	assert.Equal(t, []string{"AAA"}, sel.Skipped)
}

func TestSelectNext_OverrideBypassesCooldown(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	l := New(newMemRepo(), 7*24*time.Hour, WithClock(func() time.Time { return now }))

	require.NoError(t, l.MarkAlerted(ctx, "AAA"))
	sel := l.SelectNext(ctx, []string{"AAA", "BBB"}, true)
	require.True(t, sel.Found)
	assert.Equal(t, "AAA", sel.Selected)
	assert.Empty(t, sel.Skipped)
}

func TestLedger_RepoErrorFailsOpen(t *testing.T) {
	ctx := context.Background()
	l := New(errRepo{}, time.Hour)
	assert.False(t, l.IsOnCooldown(ctx, "XYZ"))
}

type errRepo struct{}

func (errRepo) Get(context.Context, string) (time.Time, error) {
	return time.Time{}, assert.AnError
}

func (errRepo) Put(context.Context, string, time.Time) error {
	return assert.AnError
}
