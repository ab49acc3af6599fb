package analyzer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkocik/stocklens/internal/chart"
	"github.com/mkocik/stocklens/internal/market"
)

type fakeMarket struct {
	bars       map[string][]market.Bar
	statements map[string]*market.Statement
	dividends  map[string][]market.Dividend
	splits     map[string][]market.Split
	profiles   map[string]*market.Profile

	historyErr   map[string]error
	statementErr map[string]error
}

func (f *fakeMarket) History(symbol string, period market.Period) ([]market.Bar, error) {
	if err := f.historyErr[symbol]; err != nil {
		return nil, err
	}
	return f.bars[symbol], nil
}

func (f *fakeMarket) Statement(symbol string, category market.Category) (*market.Statement, error) {
	if err := f.statementErr[symbol]; err != nil {
		return nil, err
	}
	stmt := f.statements[symbol]
	if stmt == nil {
		return nil, errors.New("statement unavailable")
	}
	copied := *stmt
	copied.Kind = category
	return &copied, nil
}

func (f *fakeMarket) Dividends(symbol string, period market.Period) ([]market.Dividend, error) {
	return f.dividends[symbol], nil
}

func (f *fakeMarket) Splits(symbol string, period market.Period) ([]market.Split, error) {
	return f.splits[symbol], nil
}

func (f *fakeMarket) Profile(symbol string) (*market.Profile, error) {
	p := f.profiles[symbol]
	if p == nil {
		return nil, errors.New("quote not found")
	}
	return p, nil
}

func fakeBars(symbol string, n int) []market.Bar {
	bars := make([]market.Bar, 0, n)
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := decimal.NewFromInt(int64(100 + i))
		bars = append(bars, market.Bar{
			Symbol:   symbol,
			Date:     start.AddDate(0, 0, i),
			Open:     price,
			High:     price.Add(decimal.NewFromInt(2)),
			Low:      price.Sub(decimal.NewFromInt(2)),
			Close:    price.Add(decimal.NewFromInt(1)),
			AdjClose: price.Add(decimal.NewFromInt(1)),
			Volume:   1000,
		})
	}
	return bars
}

func fakeStatement(symbol string) *market.Statement {
	v := decimal.NewFromInt(5000)
	return &market.Statement{
		Symbol: symbol,
		Kind:   market.CategoryFinancials,
		Dates:  []time.Time{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		Lines:  []market.StatementLine{{Label: "Total Revenue", Values: []*decimal.Decimal{&v}}},
	}
}

func newTestAnalyzer(m Market) (*Analyzer, *bytes.Buffer) {
	var buf bytes.Buffer
	a := New(m, &buf)
	a.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }
	return a, &buf
}

func TestRunCreatesTickerFolders(t *testing.T) {
	m := &fakeMarket{
		bars: map[string][]market.Bar{
			"AAPL": fakeBars("AAPL", 30),
			"MSFT": fakeBars("MSFT", 30),
		},
	}
	a, _ := newTestAnalyzer(m)

	out := t.TempDir()
	report, err := a.Run(Request{
		Tickers:         []string{"AAPL", "MSFT"},
		Categories:      []market.Category{market.CategoryHistorical},
		Period:          "1y",
		OutputDir:       out,
		GeneratePlots:   true,
		GenerateSummary: true,
		ChartSettings:   chart.DefaultSettings(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.FailedTickers()) != 0 {
		t.Fatalf("unexpected failures: %v", report.FailedTickers())
	}

	for _, sym := range []string{"AAPL", "MSFT"} {
		dir := filepath.Join(out, sym)
		mustExist(t, filepath.Join(dir, sym+"_historical_20250602.xlsx"))
		mustExist(t, filepath.Join(dir, sym+"_chart_20250602.png"))
		mustExist(t, filepath.Join(dir, sym+"_summary_20250602.xlsx"))
	}
}

func TestRunIsolatesCategoryFailures(t *testing.T) {
	m := &fakeMarket{
		bars:         map[string][]market.Bar{"AAPL": fakeBars("AAPL", 10)},
		statementErr: map[string]error{"AAPL": errors.New("service unavailable")},
	}
	a, _ := newTestAnalyzer(m)

	out := t.TempDir()
	report, err := a.Run(Request{
		Tickers:    []string{"AAPL"},
		Categories: []market.Category{market.CategoryHistorical, market.CategoryFinancials},
		Period:     "1y",
		OutputDir:  out,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := report.Results[0]
	if res.Failed() {
		t.Fatal("ticker should not fail when one category succeeds")
	}
	if res.Errors[market.CategoryFinancials] == nil {
		t.Fatal("expected financials error to be recorded")
	}
	if len(res.Files) != 1 {
		t.Fatalf("expected only the historical workbook, got %v", res.Files)
	}
}

func TestRunReportsFullyFailedTicker(t *testing.T) {
	m := &fakeMarket{
		historyErr: map[string]error{"BADTICKER": errors.New("no historical data available")},
	}
	a, out := newTestAnalyzer(m)

	report, err := a.Run(Request{
		Tickers:         []string{"BADTICKER"},
		Categories:      []market.Category{market.CategoryHistorical},
		Period:          "2y",
		OutputDir:       t.TempDir(),
		GenerateSummary: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	failed := report.FailedTickers()
	if len(failed) != 1 || failed[0] != "BADTICKER" {
		t.Fatalf("expected BADTICKER to fail, got %v", failed)
	}
	if !bytes.Contains(out.Bytes(), []byte("no data could be retrieved")) {
		t.Error("expected failure notice in output")
	}
}

func TestRunHistoryFailureOnlyCountsWhenRequested(t *testing.T) {
	m := &fakeMarket{
		historyErr: map[string]error{"AAPL": errors.New("service unavailable")},
		dividends: map[string][]market.Dividend{"AAPL": {{
			Symbol: "AAPL",
			Date:   time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			Amount: decimal.NewFromFloat(0.24),
		}}},
	}
	a, _ := newTestAnalyzer(m)

	report, err := a.Run(Request{
		Tickers:       []string{"AAPL"},
		Categories:    []market.Category{market.CategoryDividends},
		Period:        "1y",
		OutputDir:     t.TempDir(),
		GeneratePlots: true,
		ChartSettings: chart.DefaultSettings(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := report.Results[0]
	if len(res.Errors) != 0 {
		t.Fatalf("bars fetched for the chart must not count as a category failure: %v", res.Errors)
	}
	if res.HistoryErr == nil {
		t.Fatal("expected the history failure to be recorded")
	}
	if res.Failed() {
		t.Fatal("dividends workbook should still be written")
	}
}

func TestRunNoPlotsSkipsChart(t *testing.T) {
	m := &fakeMarket{bars: map[string][]market.Bar{"AAPL": fakeBars("AAPL", 10)}}
	a, _ := newTestAnalyzer(m)

	out := t.TempDir()
	if _, err := a.Run(Request{
		Tickers:    []string{"AAPL"},
		Categories: []market.Category{market.CategoryHistorical},
		Period:     "1y",
		OutputDir:  out,
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(out, "AAPL"))
	if err != nil {
		t.Fatalf("read ticker dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".png" {
			t.Fatalf("chart written despite plots disabled: %s", e.Name())
		}
	}
}

func TestRunStatementsAndProfile(t *testing.T) {
	m := &fakeMarket{
		bars:       map[string][]market.Bar{"AAPL": fakeBars("AAPL", 10)},
		statements: map[string]*market.Statement{"AAPL": fakeStatement("AAPL")},
		profiles: map[string]*market.Profile{"AAPL": {
			Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NMS", Currency: "USD",
		}},
		dividends: map[string][]market.Dividend{"AAPL": {{
			Symbol: "AAPL",
			Date:   time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			Amount: decimal.NewFromFloat(0.24),
		}}},
	}
	a, _ := newTestAnalyzer(m)

	out := t.TempDir()
	report, err := a.Run(Request{
		Tickers: []string{"AAPL"},
		Categories: []market.Category{
			market.CategoryFinancials,
			market.CategoryQuarterlyCashflow,
			market.CategoryDividends,
			market.CategoryInfo,
		},
		Period:    "2y",
		OutputDir: out,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := report.Results[0]
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Files) != 4 {
		t.Fatalf("expected 4 workbooks, got %d: %v", len(res.Files), res.Files)
	}
	mustExist(t, filepath.Join(out, "AAPL", "AAPL_quarterly_cashflow_20250602.xlsx"))
	mustExist(t, filepath.Join(out, "AAPL", "AAPL_info_20250602.xlsx"))
}

func TestRunCSVFormatWritesBarHistory(t *testing.T) {
	m := &fakeMarket{bars: map[string][]market.Bar{"AAPL": fakeBars("AAPL", 10)}}
	a, _ := newTestAnalyzer(m)

	out := t.TempDir()
	report, err := a.Run(Request{
		Tickers:       []string{"AAPL"},
		Categories:    []market.Category{market.CategoryHistorical},
		Period:        "1y",
		OutputDir:     out,
		ExportFormats: []string{"excel", "csv"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	mustExist(t, filepath.Join(out, "AAPL", "AAPL_historical_20250602.xlsx"))
	mustExist(t, filepath.Join(out, "AAPL", "AAPL_historical_20250602.csv"))
	if len(report.Results[0].Files) != 2 {
		t.Fatalf("expected 2 files, got %v", report.Results[0].Files)
	}
}

func TestRunCSVOnlySkipsWorkbooks(t *testing.T) {
	m := &fakeMarket{bars: map[string][]market.Bar{"AAPL": fakeBars("AAPL", 10)}}
	a, _ := newTestAnalyzer(m)

	out := t.TempDir()
	if _, err := a.Run(Request{
		Tickers:       []string{"AAPL"},
		Categories:    []market.Category{market.CategoryHistorical},
		Period:        "1y",
		OutputDir:     out,
		ExportFormats: []string{"csv"},
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(out, "AAPL"))
	if err != nil {
		t.Fatalf("read ticker dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".xlsx" {
			t.Fatalf("workbook written in csv-only mode: %s", e.Name())
		}
	}
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s: %v", path, err)
	}
}
