// Package analyzer drives a full analysis run: it fetches the requested
// data categories for each ticker, renders charts and writes workbooks.
package analyzer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mkocik/stocklens/internal/chart"
	"github.com/mkocik/stocklens/internal/exporter"
	"github.com/mkocik/stocklens/internal/market"
	"github.com/mkocik/stocklens/internal/stats"
)

// Market is the data source consumed by the analyzer.
type Market interface {
	History(symbol string, period market.Period) ([]market.Bar, error)
	Statement(symbol string, category market.Category) (*market.Statement, error)
	Dividends(symbol string, period market.Period) ([]market.Dividend, error)
	Splits(symbol string, period market.Period) ([]market.Split, error)
	Profile(symbol string) (*market.Profile, error)
}

// Request describes one analysis run.
type Request struct {
	Tickers    []string
	Categories []market.Category
	Period     market.Period
	OutputDir  string

	GeneratePlots   bool
	GenerateSummary bool
	ChartSettings   chart.Settings

	// ExportFormats defaults to Excel only. Adding "csv" also writes
	// the price history as a CSV file.
	ExportFormats []string
}

func (r Request) wantsFormat(format string) bool {
	if len(r.ExportFormats) == 0 {
		return format == "excel"
	}
	for _, f := range r.ExportFormats {
		if f == format {
			return true
		}
	}
	return false
}

// TickerResult reports what happened for a single ticker.
type TickerResult struct {
	Symbol string
	Files  []string
	Errors map[market.Category]error
	// HistoryErr records a price history failure when the bars were
	// fetched only for the chart or the summary, so it never counts
	// against the requested categories.
	HistoryErr error
	// ChartErr and SummaryErr are set when those artifacts failed
	// independently of any category.
	ChartErr   error
	SummaryErr error
}

// Failed reports whether nothing at all was produced for the ticker.
func (r *TickerResult) Failed() bool {
	return len(r.Files) == 0
}

// Report aggregates the per-ticker results of a run.
type Report struct {
	Results []*TickerResult
}

// FailedTickers lists tickers that produced no output.
func (r *Report) FailedTickers() []string {
	var failed []string
	for _, res := range r.Results {
		if res.Failed() {
			failed = append(failed, res.Symbol)
		}
	}
	return failed
}

type Analyzer struct {
	market Market
	out    io.Writer
	now    func() time.Time
}

func New(m Market, out io.Writer) *Analyzer {
	if out == nil {
		out = os.Stdout
	}
	return &Analyzer{
		market: m,
		out:    out,
		now:    time.Now,
	}
}

// Run processes every ticker in the request. Failures are isolated per
// ticker and per category; the run itself only errors when the output
// directory cannot be created.
func (a *Analyzer) Run(req Request) (*Report, error) {
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	report := &Report{}
	for _, ticker := range req.Tickers {
		res := a.runTicker(ticker, req)
		report.Results = append(report.Results, res)
	}
	return report, nil
}

func (a *Analyzer) runTicker(ticker string, req Request) *TickerResult {
	res := &TickerResult{
		Symbol: ticker,
		Errors: make(map[market.Category]error),
	}

	fmt.Fprintf(a.out, "\n📊 Analyzing %s...\n", ticker)

	dir := filepath.Join(req.OutputDir, ticker)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		res.Errors[market.CategoryHistorical] = fmt.Errorf("create ticker directory: %w", err)
		fmt.Fprintf(a.out, "❌ %s: %v\n", ticker, res.Errors[market.CategoryHistorical])
		return res
	}

	stamp := a.now().Format("20060102")

	// Bars feed the historical workbook, the chart and the summary
	// metrics, so fetch them once up front when any of those is wanted.
	var bars []market.Bar
	needBars := req.GeneratePlots || req.GenerateSummary || hasCategory(req.Categories, market.CategoryHistorical)
	if needBars {
		var err error
		bars, err = a.market.History(ticker, req.Period)
		if err != nil {
			if hasCategory(req.Categories, market.CategoryHistorical) {
				res.Errors[market.CategoryHistorical] = err
			} else {
				res.HistoryErr = err
			}
			fmt.Fprintf(a.out, "  ⚠️ historical data: %v\n", err)
		}
	}

	summary := exporter.Summary{Symbol: ticker, Bars: bars}

	if req.wantsFormat("excel") {
		for _, cat := range req.Categories {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.xlsx", ticker, cat, stamp))
			if err := a.exportCategory(ticker, cat, req.Period, bars, path, &summary); err != nil {
				res.Errors[cat] = err
				fmt.Fprintf(a.out, "  ⚠️ %s: %v\n", cat, err)
				continue
			}
			res.Files = append(res.Files, path)
			fmt.Fprintf(a.out, "  ✅ %s -> %s\n", cat, filepath.Base(path))
		}
	}

	if req.wantsFormat("csv") && len(bars) > 0 {
		path := filepath.Join(dir, fmt.Sprintf("%s_historical_%s.csv", ticker, stamp))
		if err := exporter.WriteBarsCSV(path, ticker, bars); err != nil {
			fmt.Fprintf(a.out, "  ⚠️ csv: %v\n", err)
		} else {
			res.Files = append(res.Files, path)
			fmt.Fprintf(a.out, "  ✅ csv -> %s\n", filepath.Base(path))
		}
	}

	if req.GeneratePlots && len(bars) > 0 {
		path := filepath.Join(dir, fmt.Sprintf("%s_chart_%s.png", ticker, stamp))
		if err := chart.Render(path, ticker, bars, req.ChartSettings); err != nil {
			res.ChartErr = err
			fmt.Fprintf(a.out, "  ⚠️ chart: %v\n", err)
		} else {
			res.Files = append(res.Files, path)
			fmt.Fprintf(a.out, "  ✅ chart -> %s\n", filepath.Base(path))
		}
	}

	if req.GenerateSummary && req.wantsFormat("excel") && a.summaryHasContent(summary) {
		if metrics, err := stats.Summarize(bars, a.now()); err == nil {
			summary.Metrics = metrics
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_summary_%s.xlsx", ticker, stamp))
		if err := exporter.WriteSummary(path, summary); err != nil {
			res.SummaryErr = err
			fmt.Fprintf(a.out, "  ⚠️ summary: %v\n", err)
		} else {
			res.Files = append(res.Files, path)
			fmt.Fprintf(a.out, "  ✅ summary -> %s\n", filepath.Base(path))
		}
	}

	if res.Failed() {
		fmt.Fprintf(a.out, "❌ %s: no data could be retrieved\n", ticker)
	}
	return res
}

// exportCategory fetches one category and writes its workbook,
// accumulating successful fetches into the summary.
func (a *Analyzer) exportCategory(ticker string, cat market.Category, period market.Period, bars []market.Bar, path string, summary *exporter.Summary) error {
	switch {
	case cat == market.CategoryHistorical:
		if len(bars) == 0 {
			return fmt.Errorf("no historical data available for %s", ticker)
		}
		return exporter.WriteBars(path, ticker, bars)

	case cat.IsStatement():
		stmt, err := a.market.Statement(ticker, cat)
		if err != nil {
			return err
		}
		summary.Statements = append(summary.Statements, stmt)
		return exporter.WriteStatement(path, stmt)

	case cat == market.CategoryDividends:
		divs, err := a.market.Dividends(ticker, period)
		if err != nil {
			return err
		}
		if len(divs) == 0 {
			return fmt.Errorf("no dividends reported for %s", ticker)
		}
		summary.Dividends = divs
		return exporter.WriteDividends(path, ticker, divs)

	case cat == market.CategorySplits:
		splits, err := a.market.Splits(ticker, period)
		if err != nil {
			return err
		}
		if len(splits) == 0 {
			return fmt.Errorf("no splits reported for %s", ticker)
		}
		summary.Splits = splits
		return exporter.WriteSplits(path, ticker, splits)

	case cat == market.CategoryInfo:
		profile, err := a.market.Profile(ticker)
		if err != nil {
			return err
		}
		summary.Profile = profile
		return exporter.WriteProfile(path, profile)

	default:
		return fmt.Errorf("unknown category %q", cat)
	}
}

func (a *Analyzer) summaryHasContent(s exporter.Summary) bool {
	return len(s.Bars) > 0 || len(s.Statements) > 0 || len(s.Dividends) > 0 ||
		len(s.Splits) > 0 || s.Profile != nil
}

func hasCategory(cats []market.Category, want market.Category) bool {
	for _, c := range cats {
		if c == want {
			return true
		}
	}
	return false
}
