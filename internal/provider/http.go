package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/grifflux/pennywatch/internal/cache"
	"github.com/grifflux/pennywatch/internal/model"
	"github.com/grifflux/pennywatch/internal/net/breaker"
	"github.com/grifflux/pennywatch/internal/net/ratelimit"
)

// Endpoint classes for rate limiting and error metrics.
const (
	ClassQuote      = "quote"
	ClassHistory    = "history"
	ClassStatements = "statements"
	ClassScreener   = "screener"
	ClassFilings    = "filings"
)

const (
	quoteTTL      = 2 * time.Minute
	historyTTL    = 30 * time.Minute
	statementsTTL = 12 * time.Hour

	statementQuarters = 8
)

// HTTPClient implements Client against an FMP-style REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	limiter *ratelimit.Limiter
	brk     *breaker.Breaker
	cache   cache.Cache
}

// HTTPOption mutates the client at construction.
type HTTPOption func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.hc = hc }
}

// WithCache overrides the response cache.
func WithCache(ca cache.Cache) HTTPOption {
	return func(c *HTTPClient) { c.cache = ca }
}

// WithLimiter overrides the rate limiter.
func WithLimiter(l *ratelimit.Limiter) HTTPOption {
	return func(c *HTTPClient) { c.limiter = l }
}

// NewHTTPClient builds the production provider client.
func NewHTTPClient(baseURL, apiKey string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: ratelimit.New(4, 2),
		brk:     breaker.New("provider"),
		cache:   cache.NewMemory(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON fetches path+query under the limiter and breaker, consulting the
// cache first, and decodes the body into out.
func (c *HTTPClient) getJSON(ctx context.Context, class, path string, query url.Values, ttl time.Duration, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.apiKey)
	full := c.baseURL + path + "?" + query.Encode()
	cacheKey := class + ":" + path + "?" + query.Encode()

	if raw, ok := c.cache.Get(ctx, cacheKey); ok {
		return json.Unmarshal(raw, out)
	}

	if err := c.limiter.Wait(ctx, class); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := c.brk.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("provider returned %d for %s", resp.StatusCode, path)
		}
		return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	})
	if err != nil {
		return fmt.Errorf("%s fetch: %w", class, err)
	}

	raw := body.([]byte)
	c.cache.Set(ctx, cacheKey, raw, ttl)
	return json.Unmarshal(raw, out)
}

type quoteDTO struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	MarketCap         float64 `json:"marketCap"`
	Volume            float64 `json:"volume"`
	AvgVolume         float64 `json:"avgVolume"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
	FloatShares       float64 `json:"floatShares"`
}

// Quote fetches the market snapshot for one symbol.
func (c *HTTPClient) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	var dtos []quoteDTO
	if err := c.getJSON(ctx, ClassQuote, "/api/v3/quote/"+symbol, nil, quoteTTL, &dtos); err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return nil, fmt.Errorf("no quote for %s", symbol)
	}
	d := dtos[0]
	return &model.Quote{
		Symbol:            d.Symbol,
		Price:             d.Price,
		MarketCap:         d.MarketCap,
		Volume:            d.Volume,
		AvgVolume:         d.AvgVolume,
		SharesOutstanding: d.SharesOutstanding,
		FloatShares:       d.FloatShares,
	}, nil
}

type historyDTO struct {
	Historical []struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	} `json:"historical"`
}

// PriceSeries fetches daily candles, oldest first.
func (c *HTTPClient) PriceSeries(ctx context.Context, symbol string, lookbackDays int) ([]model.Candle, error) {
	q := url.Values{"timeseries": {fmt.Sprint(lookbackDays)}}
	var dto historyDTO
	if err := c.getJSON(ctx, ClassHistory, "/api/v3/historical-price-full/"+symbol, q, historyTTL, &dto); err != nil {
		return nil, err
	}
	candles := make([]model.Candle, 0, len(dto.Historical))
	// API returns newest first; reverse into chronological order.
	for i := len(dto.Historical) - 1; i >= 0; i-- {
		h := dto.Historical[i]
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			continue
		}
		candles = append(candles, model.Candle{
			Date: date, Open: h.Open, High: h.High, Low: h.Low, Close: h.Close, Volume: h.Volume,
		})
	}
	return candles, nil
}

type balanceDTO struct {
	Date                 string  `json:"date"`
	CashAndEquivalents   float64 `json:"cashAndCashEquivalents"`
	ShortTermInvestments float64 `json:"shortTermInvestments"`
	TotalDebt            float64 `json:"totalDebt"`
	TotalAssets          float64 `json:"totalAssets"`
	TotalLiabilities     float64 `json:"totalLiabilities"`
	StockholdersEquity   float64 `json:"totalStockholdersEquity"`
}

type cashFlowDTO struct {
	Date               string  `json:"date"`
	OperatingCashFlow  float64 `json:"operatingCashFlow"`
	CapitalExpenditure float64 `json:"capitalExpenditure"`
	FreeCashFlow       float64 `json:"freeCashFlow"`
}

type incomeDTO struct {
	Date                  string  `json:"date"`
	Revenue               float64 `json:"revenue"`
	OperatingIncome       float64 `json:"operatingIncome"`
	NetIncome             float64 `json:"netIncome"`
	InterestExpense       float64 `json:"interestExpense"`
	WeightedAverageShsOut float64 `json:"weightedAverageShsOut"`
}

type insiderDTO struct {
	TransactionDate      string  `json:"transactionDate"`
	TransactionType      string  `json:"transactionType"`
	SecuritiesTransacted float64 `json:"securitiesTransacted"`
	Price                float64 `json:"price"`
}

type filingDTO struct {
	Symbol      string `json:"symbol"`
	Type        string `json:"type"`
	FillingDate string `json:"fillingDate"`
}

// Fundamentals fans out the six per-symbol fetches concurrently and
// assembles whatever succeeded. A failed piece is logged and left empty;
// only a symbol with nothing at all returns an error.
func (c *HTTPClient) Fundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	f := &model.Fundamentals{}
	quarterQ := func() url.Values {
		return url.Values{"period": {"quarter"}, "limit": {fmt.Sprint(statementQuarters)}}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := 0
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Str("piece", name).
					Msg("Fundamentals piece unavailable")
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}()
	}

	run("balance_sheet", func() error {
		var dtos []balanceDTO
		if err := c.getJSON(ctx, ClassStatements, "/api/v3/balance-sheet-statement/"+symbol, quarterQ(), statementsTTL, &dtos); err != nil {
			return err
		}
		sheets := make([]model.BalanceSheet, 0, len(dtos))
		for _, d := range dtos {
			sheets = append(sheets, model.BalanceSheet{
				FiscalDate:           d.Date,
				CashAndEquivalents:   d.CashAndEquivalents,
				ShortTermInvestments: d.ShortTermInvestments,
				TotalDebt:            d.TotalDebt,
				TotalAssets:          d.TotalAssets,
				TotalLiabilities:     d.TotalLiabilities,
				StockholdersEquity:   d.StockholdersEquity,
			})
		}
		mu.Lock()
		f.BalanceSheets = sheets
		mu.Unlock()
		return nil
	})

	run("cash_flow", func() error {
		var dtos []cashFlowDTO
		if err := c.getJSON(ctx, ClassStatements, "/api/v3/cash-flow-statement/"+symbol, quarterQ(), statementsTTL, &dtos); err != nil {
			return err
		}
		flows := make([]model.CashFlowStatement, 0, len(dtos))
		for _, d := range dtos {
			flows = append(flows, model.CashFlowStatement{
				FiscalDate:         d.Date,
				OperatingCashFlow:  d.OperatingCashFlow,
				CapitalExpenditure: d.CapitalExpenditure,
				FreeCashFlow:       d.FreeCashFlow,
			})
		}
		mu.Lock()
		f.CashFlows = flows
		mu.Unlock()
		return nil
	})

	run("income", func() error {
		var dtos []incomeDTO
		if err := c.getJSON(ctx, ClassStatements, "/api/v3/income-statement/"+symbol, quarterQ(), statementsTTL, &dtos); err != nil {
			return err
		}
		incomes := make([]model.IncomeStatement, 0, len(dtos))
		for _, d := range dtos {
			incomes = append(incomes, model.IncomeStatement{
				FiscalDate:        d.Date,
				Revenue:           d.Revenue,
				OperatingIncome:   d.OperatingIncome,
				NetIncome:         d.NetIncome,
				InterestExpense:   d.InterestExpense,
				SharesOutstanding: d.WeightedAverageShsOut,
			})
		}
		mu.Lock()
		f.Incomes = incomes
		mu.Unlock()
		return nil
	})

	run("quote", func() error {
		quote, err := c.Quote(ctx, symbol)
		if err != nil {
			return err
		}
		mu.Lock()
		f.Quote = quote
		mu.Unlock()
		return nil
	})

	run("insider_trades", func() error {
		var dtos []insiderDTO
		q := url.Values{"symbol": {symbol}, "limit": {"50"}}
		if err := c.getJSON(ctx, ClassStatements, "/api/v4/insider-trading", q, statementsTTL, &dtos); err != nil {
			return err
		}
		trades := make([]model.InsiderTrade, 0, len(dtos))
		for _, d := range dtos {
			date, err := time.Parse("2006-01-02", d.TransactionDate)
			if err != nil {
				continue
			}
			trades = append(trades, model.InsiderTrade{
				Date:            date,
				TransactionType: d.TransactionType,
				Shares:          d.SecuritiesTransacted,
				Value:           d.SecuritiesTransacted * d.Price,
			})
		}
		mu.Lock()
		f.InsiderTrades = trades
		mu.Unlock()
		return nil
	})

	run("filings", func() error {
		var dtos []filingDTO
		q := url.Values{"limit": {"40"}}
		if err := c.getJSON(ctx, ClassFilings, "/api/v3/sec_filings/"+symbol, q, statementsTTL, &dtos); err != nil {
			return err
		}
		filings := make([]model.Filing, 0, len(dtos))
		for _, d := range dtos {
			filedAt, err := time.Parse("2006-01-02", d.FillingDate)
			if err != nil {
				continue
			}
			filings = append(filings, model.Filing{Symbol: symbol, FormType: d.Type, FiledAt: filedAt})
		}
		mu.Lock()
		f.Filings = filings
		mu.Unlock()
		return nil
	})

	wg.Wait()

	const pieces = 6
	if failures >= pieces {
		return nil, fmt.Errorf("all fundamentals pieces failed for %s", symbol)
	}
	return f, nil
}

type screenDTO struct {
	Symbol string `json:"symbol"`
}

// Screen returns symbols matching the filter.
func (c *HTTPClient) Screen(ctx context.Context, filter ScreenFilter) ([]string, error) {
	q := url.Values{}
	if filter.MaxPrice > 0 {
		q.Set("priceLowerThan", fmt.Sprint(filter.MaxPrice))
	}
	if filter.MaxMarketCap > 0 {
		q.Set("marketCapLowerThan", fmt.Sprint(filter.MaxMarketCap))
	}
	if filter.MinVolume > 0 {
		q.Set("volumeMoreThan", fmt.Sprint(filter.MinVolume))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("exchange", "NASDAQ,NYSE,AMEX")

	var dtos []screenDTO
	if err := c.getJSON(ctx, ClassScreener, "/api/v3/stock-screener", q, quoteTTL, &dtos); err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(dtos))
	for _, d := range dtos {
		symbols = append(symbols, d.Symbol)
	}
	return symbols, nil
}

type rssFilingDTO struct {
	Symbol string `json:"symbol"`
	Form   string `json:"form_type"`
	Date   string `json:"date"`
}

// RecentFilings returns dilution-relevant filings since the cutoff.
func (c *HTTPClient) RecentFilings(ctx context.Context, since time.Time) ([]model.Filing, error) {
	q := url.Values{
		"type": {"S-3,S-1,424B5"},
		"from": {since.Format("2006-01-02")},
	}
	var dtos []rssFilingDTO
	if err := c.getJSON(ctx, ClassFilings, "/api/v4/rss_feed", q, quoteTTL, &dtos); err != nil {
		return nil, err
	}
	filings := make([]model.Filing, 0, len(dtos))
	for _, d := range dtos {
		filedAt, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		filings = append(filings, model.Filing{Symbol: d.Symbol, FormType: d.Form, FiledAt: filedAt})
	}
	return filings, nil
}
