package metrics

import "github.com/grifflux/pennywatch/internal/model"

const (
	// RunwayCapMonths is the sentinel for "comfortable": runway at or above
	// the cap is reported as the cap, never as an unbounded number.
	RunwayCapMonths = 24.0

	// DebtToCashMax is the sentinel ratio when a company carries debt
	// against effectively zero cash.
	DebtToCashMax = 99.0

	// CoverageSafe is the sentinel interest coverage for companies with no
	// interest expense. Division by zero debt is a safe state, not an error.
	CoverageSafe = 999.0

	// burnLookbackQuarters is how many trailing quarters of operating cash
	// flow feed the burn-rate average.
	burnLookbackQuarters = 4

	monthsPerQuarter = 3.0
)

// MonthlyBurn derives the monthly cash burn from trailing operating cash
// flow. Burn is defined only when the trailing average is negative; a cash
// generative company burns 0. No statements at all means the metric is
// unknown.
func MonthlyBurn(cashFlows []model.CashFlowStatement) model.Field {
	if len(cashFlows) == 0 {
		return model.Unknown()
	}
	n := len(cashFlows)
	if n > burnLookbackQuarters {
		n = burnLookbackQuarters
	}
	var total float64
	for _, cf := range cashFlows[:n] {
		total += cf.OperatingCashFlow
	}
	avg := total / float64(n)
	if avg >= 0 {
		return model.Known(0)
	}
	return model.Known(-avg / monthsPerQuarter)
}

// Runway converts cash and monthly burn into months of runway, capped at
// RunwayCapMonths. Zero burn means the cap regardless of cash level.
func Runway(cash, burn model.Field) model.Field {
	b, ok := burn.Value()
	if !ok {
		return model.Unknown()
	}
	if b <= 0 {
		return model.Known(RunwayCapMonths)
	}
	c, ok := cash.Value()
	if !ok {
		return model.Unknown()
	}
	months := c / b
	if months > RunwayCapMonths {
		months = RunwayCapMonths
	}
	if months < 0 {
		months = 0
	}
	return model.Known(months)
}

// TotalCash sums cash and short-term investments from the latest balance
// sheet.
func TotalCash(sheets []model.BalanceSheet) model.Field {
	if len(sheets) == 0 {
		return model.Unknown()
	}
	return model.Known(sheets[0].CashAndEquivalents + sheets[0].ShortTermInvestments)
}

// DebtToCash computes total debt over total cash from the latest balance
// sheet. No debt is the safe zero; debt against no cash is the
// DebtToCashMax sentinel.
func DebtToCash(sheets []model.BalanceSheet) model.Field {
	if len(sheets) == 0 {
		return model.Unknown()
	}
	debt := sheets[0].TotalDebt
	cash := sheets[0].CashAndEquivalents + sheets[0].ShortTermInvestments
	if debt <= 0 {
		return model.Known(0)
	}
	if cash <= 0 {
		return model.Known(DebtToCashMax)
	}
	ratio := debt / cash
	if ratio > DebtToCashMax {
		ratio = DebtToCashMax
	}
	return model.Known(ratio)
}

// InterestCoverage computes operating income over interest expense from the
// latest income statement. No interest expense yields the CoverageSafe
// sentinel; negative coverage (operating losses) passes through unchanged.
func InterestCoverage(incomes []model.IncomeStatement) model.Field {
	if len(incomes) == 0 {
		return model.Unknown()
	}
	interest := incomes[0].InterestExpense
	if interest <= 0 {
		return model.Known(CoverageSafe)
	}
	return model.Known(incomes[0].OperatingIncome / interest)
}

// RevenueChangePct computes quarter-over-quarter revenue change in percent.
// Requires two quarters with a positive prior-quarter base.
func RevenueChangePct(incomes []model.IncomeStatement) model.Field {
	if len(incomes) < 2 {
		return model.Unknown()
	}
	prior := incomes[1].Revenue
	if prior <= 0 {
		return model.Unknown()
	}
	return model.Known((incomes[0].Revenue - prior) / prior * 100)
}
