package market

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents one day of OHLCV price data.
type Bar struct {
	Symbol   string          `json:"symbol"`
	Date     time.Time       `json:"date"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adj_close"`
	Volume   int64           `json:"volume"`
}

// Profile holds basic company information for a symbol.
type Profile struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Exchange    string          `json:"exchange"`
	Currency    string          `json:"currency"`
	QuoteType   string          `json:"quote_type"`
	MarketState string          `json:"market_state"`
	Price       decimal.Decimal `json:"price"`
	IsTradeable bool            `json:"is_tradeable"`
	FetchedAt   time.Time       `json:"fetched_at"`
}

// Dividend is a single cash dividend event.
type Dividend struct {
	Symbol string          `json:"symbol"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Split is a single stock split event.
type Split struct {
	Symbol      string    `json:"symbol"`
	Date        time.Time `json:"date"`
	Numerator   int64     `json:"numerator"`
	Denominator int64     `json:"denominator"`
	Ratio       string    `json:"ratio"`
}

// Statement is a column-oriented financial statement: one column per
// reported period, one line per statement item.
type Statement struct {
	Symbol string          `json:"symbol"`
	Kind   Category        `json:"kind"`
	Dates  []time.Time     `json:"dates"`
	Lines  []StatementLine `json:"lines"`
}

// StatementLine is a single statement item. Values align with
// Statement.Dates; nil marks a period where the item was not reported.
type StatementLine struct {
	Label  string             `json:"label"`
	Values []*decimal.Decimal `json:"values"`
}

// Category identifies one kind of downloadable financial data.
type Category string

const (
	CategoryHistorical            Category = "historical"
	CategoryFinancials            Category = "financials"
	CategoryQuarterlyFinancials   Category = "quarterly_financials"
	CategoryBalanceSheet          Category = "balance_sheet"
	CategoryQuarterlyBalanceSheet Category = "quarterly_balance_sheet"
	CategoryCashflow              Category = "cashflow"
	CategoryQuarterlyCashflow     Category = "quarterly_cashflow"
	CategoryDividends             Category = "dividends"
	CategorySplits                Category = "splits"
	CategoryInfo                  Category = "info"
)

// AllCategories lists every category in prompt display order.
func AllCategories() []Category {
	return []Category{
		CategoryHistorical,
		CategoryFinancials,
		CategoryQuarterlyFinancials,
		CategoryBalanceSheet,
		CategoryQuarterlyBalanceSheet,
		CategoryCashflow,
		CategoryQuarterlyCashflow,
		CategoryDividends,
		CategorySplits,
		CategoryInfo,
	}
}

var categoryDescriptions = map[Category]string{
	CategoryHistorical:            "Price and volume history",
	CategoryFinancials:            "Annual financial statements",
	CategoryQuarterlyFinancials:   "Quarterly financial statements",
	CategoryBalanceSheet:          "Annual balance sheet",
	CategoryQuarterlyBalanceSheet: "Quarterly balance sheet",
	CategoryCashflow:              "Annual cash flow",
	CategoryQuarterlyCashflow:     "Quarterly cash flow",
	CategoryDividends:             "Dividend history",
	CategorySplits:                "Stock split history",
	CategoryInfo:                  "Company information",
}

// Description returns the human-readable description shown in prompts.
func (c Category) Description() string {
	if desc, ok := categoryDescriptions[c]; ok {
		return desc
	}
	return string(c)
}

// IsStatement reports whether the category maps to a financial statement.
func (c Category) IsStatement() bool {
	switch c {
	case CategoryFinancials, CategoryQuarterlyFinancials,
		CategoryBalanceSheet, CategoryQuarterlyBalanceSheet,
		CategoryCashflow, CategoryQuarterlyCashflow:
		return true
	}
	return false
}

// ParseCategory resolves a category name, case-insensitively.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := categoryDescriptions[c]; !ok {
		return "", fmt.Errorf("unknown data category: %s", name)
	}
	return c, nil
}
