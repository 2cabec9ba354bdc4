package universe

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grifflux/pennywatch/internal/model"
	"github.com/grifflux/pennywatch/internal/provider"
)

type stubClient struct {
	screened  []string
	screenErr error
	filings   []model.Filing
	filingErr error
}

func (s *stubClient) Quote(context.Context, string) (*model.Quote, error) {
	return nil, errors.New("not used")
}

func (s *stubClient) PriceSeries(context.Context, string, int) ([]model.Candle, error) {
	return nil, errors.New("not used")
}

func (s *stubClient) Fundamentals(context.Context, string) (*model.Fundamentals, error) {
	return nil, errors.New("not used")
}

func (s *stubClient) Screen(context.Context, provider.ScreenFilter) ([]string, error) {
	return s.screened, s.screenErr
}

func (s *stubClient) RecentFilings(context.Context, time.Time) ([]model.Filing, error) {
	return s.filings, s.filingErr
}

func symbols(cands []model.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Symbol
	}
	return out
}

func TestCandidates_MergesAllSources(t *testing.T) {
	client := &stubClient{
		screened: []string{"SCRN"},
		filings:  []model.Filing{{Symbol: "FILE", FormType: "S-3"}},
	}
	p := NewProvider(client, Config{Watchlist: []string{"WTCH"}})

	out := p.Candidates(context.Background())

	assert.Equal(t, []string{"WTCH", "FILE", "SCRN"}, symbols(out))
}

func TestCandidates_DedupesKeepingFirstProvenance(t *testing.T) {
	client := &stubClient{
		screened: []string{"aaa", "BBB"},
		filings:  []model.Filing{{Symbol: "AAA", FormType: "424B5"}},
	}
	p := NewProvider(client, Config{Watchlist: []string{"AAA"}})

	out := p.Candidates(context.Background())

	require.Len(t, out, 2)
	assert.Equal(t, "AAA", out[0].Symbol)
	assert.Equal(t, model.SourceWatchlist, out[0].Source, "watchlist outranks filing and screener")
	assert.Equal(t, "BBB", out[1].Symbol)
	assert.Equal(t, model.SourceScreener, out[1].Source)
}

func TestCandidates_NormalizesSymbols(t *testing.T) {
	p := NewProvider(&stubClient{}, Config{Watchlist: []string{" abc ", "ABC", ""}})

	out := p.Candidates(context.Background())

	require.Len(t, out, 1)
	assert.Equal(t, "ABC", out[0].Symbol)
}

func TestCandidates_SourceFailuresDegrade(t *testing.T) {
	client := &stubClient{
		screenErr: errors.New("screener 500"),
		filingErr: errors.New("rss timeout"),
	}
	p := NewProvider(client, Config{Watchlist: []string{"ONLY"}})

	out := p.Candidates(context.Background())

	require.Len(t, out, 1)
	assert.Equal(t, "ONLY", out[0].Symbol)
}

func TestCandidates_CapPrefersWatchlist(t *testing.T) {
	var screened []string
	for i := 0; i < 20; i++ {
		screened = append(screened, fmt.Sprintf("SC%02d", i))
	}
	client := &stubClient{screened: screened}
	p := NewProvider(client, Config{
		Watchlist:     []string{"AAA", "BBB"},
		MaxCandidates: 5,
	})

	out := p.Candidates(context.Background())

	require.Len(t, out, 5)
	assert.Equal(t, "AAA", out[0].Symbol)
	assert.Equal(t, "BBB", out[1].Symbol)
}

func TestCandidates_StampsSeenAt(t *testing.T) {
	p := NewProvider(&stubClient{}, Config{Watchlist: []string{"AAA"}})
	before := time.Now()

	out := p.Candidates(context.Background())

	require.Len(t, out, 1)
	assert.False(t, out[0].SeenAt.Before(before))
}
