// Package metrics derives normalized financial and technical metrics from
// raw fundamentals and candle series. Every calculator is a pure function;
// missing or short input produces an absent Field, never a zero.
package metrics

import (
	"strings"
	"time"

	"github.com/grifflux/pennywatch/internal/model"
)

const (
	// dilutionFilingMaxAge is how recent a shelf/ATM filing must be to
	// count as an active dilution mechanism.
	dilutionFilingMaxAge = 180 * 24 * time.Hour

	// insiderSaleMaxAge bounds the window for the insider-selling flag.
	insiderSaleMaxAge = 90 * 24 * time.Hour

	// insiderSaleMinValue filters out token-sized sales.
	insiderSaleMinValue = 50_000.0
)

// dilutionFormTypes are the filing forms that register new share supply.
var dilutionFormTypes = map[string]bool{
	"S-1":    true,
	"S-3":    true,
	"424B5":  true,
	"F-1":    true,
	"F-3":    true,
	"S-3ASR": true,
}

// ComputeBundle resolves every metric for a symbol in one pass. This is the
// single normalization point: downstream consumers read the bundle and
// never reach back into raw fundamentals.
func ComputeBundle(symbol string, f *model.Fundamentals, candles []model.Candle, now time.Time) model.MetricBundle {
	b := model.MetricBundle{Symbol: symbol}
	if f == nil {
		f = &model.Fundamentals{}
	}

	b.Cash = TotalCash(f.BalanceSheets)
	b.TotalDebt = totalDebt(f.BalanceSheets)
	b.MonthlyBurn = MonthlyBurn(f.CashFlows)
	b.RunwayMonths = Runway(b.Cash, b.MonthlyBurn)
	b.DebtToCash = DebtToCash(f.BalanceSheets)
	b.InterestCoverage = InterestCoverage(f.Incomes)
	b.RevenueChangePct = RevenueChangePct(f.Incomes)

	b.VolumeRatio = VolumeRatio(candles)
	b.FloatRatio = FloatRatio(f.Quote)
	b.PeakGainPct, b.PullbackPct, b.DaysSincePeak = PeakStats(candles, now)

	b.DilutionMechanismActive = mechanismActive(f.Filings, now)
	b.RecentInsiderSelling = insiderSelling(f.InsiderTrades, now)
	b.QuartersAvailable = quartersAvailable(f)
	return b
}

func totalDebt(sheets []model.BalanceSheet) model.Field {
	if len(sheets) == 0 {
		return model.Unknown()
	}
	return model.Known(sheets[0].TotalDebt)
}

func mechanismActive(filings []model.Filing, now time.Time) bool {
	for _, fl := range filings {
		form := strings.ToUpper(strings.TrimSpace(fl.FormType))
		if dilutionFormTypes[form] && now.Sub(fl.FiledAt) <= dilutionFilingMaxAge {
			return true
		}
	}
	return false
}

func insiderSelling(trades []model.InsiderTrade, now time.Time) bool {
	for _, tr := range trades {
		if !strings.HasPrefix(strings.ToUpper(tr.TransactionType), "S") {
			continue
		}
		if now.Sub(tr.Date) <= insiderSaleMaxAge && tr.Value >= insiderSaleMinValue {
			return true
		}
	}
	return false
}

// quartersAvailable is the weakest link across statement types: scoring
// needs balance sheet, cash flow and income data to agree on coverage.
func quartersAvailable(f *model.Fundamentals) int {
	n := len(f.BalanceSheets)
	if len(f.CashFlows) < n {
		n = len(f.CashFlows)
	}
	if len(f.Incomes) < n {
		n = len(f.Incomes)
	}
	return n
}
