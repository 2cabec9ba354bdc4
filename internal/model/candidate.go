package model

import "time"

// CandidateSource identifies which universe source surfaced a symbol.
type CandidateSource string

const (
	SourceWatchlist CandidateSource = "watchlist"
	SourceScreener  CandidateSource = "screener"
	SourceFiling    CandidateSource = "filing"
)

// Candidate is a ticker symbol plus provenance. Candidates are immutable
// once enriched for a run; enrichment data rides alongside in a Snapshot.
type Candidate struct {
	Symbol string          `json:"symbol"`
	Source CandidateSource `json:"source"`
	SeenAt time.Time       `json:"seen_at"`
}

// Snapshot is a candidate plus whatever enrichment the funnel has fetched
// so far. Later stages fill in more expensive fields; a nil field means the
// stage that needs it has not run (or its fetch failed and the candidate
// was dropped).
type Snapshot struct {
	Candidate    Candidate     `json:"candidate"`
	Quote        *Quote        `json:"quote,omitempty"`
	Candles      []Candle      `json:"candles,omitempty"`
	Fundamentals *Fundamentals `json:"fundamentals,omitempty"`
	Bundle       *MetricBundle `json:"bundle,omitempty"`
}
