package metrics

import (
	"time"

	"github.com/grifflux/pennywatch/internal/model"
)

const (
	volumeRecentDays = 5
	volumePriorDays  = 20

	// peakWindowDays bounds the lookback for spike/pullback detection.
	peakWindowDays = 60

	// minPeakCandles is the shortest series peak metrics are computed on.
	minPeakCandles = 10
)

// VolumeRatio compares recent average volume against the prior baseline.
// A ratio well above 1 means volume is surging; well below 1, fading.
// Requires a full recent+prior window of candles.
func VolumeRatio(candles []model.Candle) model.Field {
	need := volumeRecentDays + volumePriorDays
	if len(candles) < need {
		return model.Unknown()
	}
	recent := candles[len(candles)-volumeRecentDays:]
	prior := candles[len(candles)-need : len(candles)-volumeRecentDays]

	var recentSum, priorSum float64
	for _, c := range recent {
		recentSum += c.Volume
	}
	for _, c := range prior {
		priorSum += c.Volume
	}
	priorAvg := priorSum / float64(len(prior))
	if priorAvg <= 0 {
		return model.Unknown()
	}
	return model.Known((recentSum / float64(len(recent))) / priorAvg)
}

// FloatRatio is the latest day's volume as a fraction of the public float.
// High turnover of a small float is the fragility signal dilution sellers
// exploit.
func FloatRatio(quote *model.Quote) model.Field {
	if quote == nil || quote.FloatShares <= 0 {
		return model.Unknown()
	}
	return model.Known(quote.Volume / quote.FloatShares)
}

// PeakStats derives spike-and-fade metrics from a daily candle series:
// the gain into the most recent peak, the pullback from that peak to the
// latest close, and the age of the peak in days.
func PeakStats(candles []model.Candle, now time.Time) (gainPct, pullbackPct, daysSincePeak model.Field) {
	if len(candles) < minPeakCandles {
		return model.Unknown(), model.Unknown(), model.Unknown()
	}
	window := candles
	if len(window) > peakWindowDays {
		window = window[len(window)-peakWindowDays:]
	}

	peakIdx := 0
	for i, c := range window {
		if c.Close > window[peakIdx].Close {
			peakIdx = i
		}
	}
	peak := window[peakIdx]

	// Lowest close before the peak is the base of the run-up.
	base := peak.Close
	for _, c := range window[:peakIdx+1] {
		if c.Close < base && c.Close > 0 {
			base = c.Close
		}
	}

	last := window[len(window)-1]

	gain := model.Unknown()
	if base > 0 {
		gain = model.Known((peak.Close - base) / base * 100)
	}
	pullback := model.Unknown()
	if peak.Close > 0 {
		pullback = model.Known((peak.Close - last.Close) / peak.Close * 100)
	}
	age := model.Known(now.Sub(peak.Date).Hours() / 24)
	return gain, pullback, age
}
