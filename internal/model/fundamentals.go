package model

import "time"

// BalanceSheet is one fiscal quarter of balance-sheet data, most recent
// first in Fundamentals.BalanceSheets.
type BalanceSheet struct {
	FiscalDate           string  `json:"fiscal_date"`
	CashAndEquivalents   float64 `json:"cash_and_equivalents"`
	ShortTermInvestments float64 `json:"short_term_investments"`
	TotalDebt            float64 `json:"total_debt"`
	TotalAssets          float64 `json:"total_assets"`
	TotalLiabilities     float64 `json:"total_liabilities"`
	StockholdersEquity   float64 `json:"stockholders_equity"`
}

// CashFlowStatement is one fiscal quarter of cash-flow data.
type CashFlowStatement struct {
	FiscalDate         string  `json:"fiscal_date"`
	OperatingCashFlow  float64 `json:"operating_cash_flow"`
	CapitalExpenditure float64 `json:"capital_expenditure"`
	FreeCashFlow       float64 `json:"free_cash_flow"`
}

// IncomeStatement is one fiscal quarter of income data.
type IncomeStatement struct {
	FiscalDate        string  `json:"fiscal_date"`
	Revenue           float64 `json:"revenue"`
	OperatingIncome   float64 `json:"operating_income"`
	NetIncome         float64 `json:"net_income"`
	InterestExpense   float64 `json:"interest_expense"`
	SharesOutstanding float64 `json:"shares_outstanding"`
}

// Quote is the latest market snapshot for a symbol.
type Quote struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	MarketCap         float64 `json:"market_cap"`
	Volume            float64 `json:"volume"`
	AvgVolume         float64 `json:"avg_volume"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	FloatShares       float64 `json:"float_shares"`
}

// InsiderTrade is a single reported insider transaction.
type InsiderTrade struct {
	Date            time.Time `json:"date"`
	TransactionType string    `json:"transaction_type"` // "S-Sale" | "P-Purchase" | ...
	Shares          float64   `json:"shares"`
	Value           float64   `json:"value"`
}

// Filing is a regulatory filing event relevant to dilution mechanics
// (shelf registrations, ATM offerings, warrant registrations).
type Filing struct {
	Symbol   string    `json:"symbol"`
	FormType string    `json:"form_type"` // "S-3", "S-1", "424B5", ...
	FiledAt  time.Time `json:"filed_at"`
}

// Fundamentals bundles everything the full-analysis stage fetches for one
// symbol. Any slice may be short or empty and Quote may be nil: the
// upstream provider returns partial payloads on thin coverage and the
// pipeline treats every missing piece as "metric unavailable".
type Fundamentals struct {
	BalanceSheets []BalanceSheet      `json:"balance_sheets"`
	CashFlows     []CashFlowStatement `json:"cash_flows"`
	Incomes       []IncomeStatement   `json:"incomes"`
	Quote         *Quote              `json:"quote,omitempty"`
	InsiderTrades []InsiderTrade      `json:"insider_trades,omitempty"`
	Filings       []Filing            `json:"filings,omitempty"`
}

// Candle is one day of price/volume history, oldest first in a series.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}
