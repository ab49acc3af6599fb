// Package exporter writes fetched market data to spreadsheet files.
package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mkocik/stocklens/internal/market"
	"github.com/mkocik/stocklens/internal/stats"
)

const (
	dateLayout      = "2006-01-02"
	maxSheetNameLen = 31 // Excel sheet name length limit
)

// WriteBars writes price history as a single-sheet workbook.
func WriteBars(path, symbol string, bars []market.Bar) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Historical Data"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := fillBarsSheet(f, sheet, bars); err != nil {
		return err
	}

	return save(f, path)
}

// WriteStatement writes a financial statement as a single-sheet workbook:
// one column per reported period, one row per line item.
func WriteStatement(path string, stmt *market.Statement) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(string(stmt.Kind))
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := fillStatementSheet(f, sheet, stmt); err != nil {
		return err
	}

	return save(f, path)
}

// WriteDividends writes dividend history as a single-sheet workbook.
func WriteDividends(path, symbol string, dividends []market.Dividend) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Dividends"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := fillDividendsSheet(f, sheet, dividends); err != nil {
		return err
	}

	return save(f, path)
}

// WriteSplits writes stock split history as a single-sheet workbook.
func WriteSplits(path, symbol string, splits []market.Split) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Splits"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := fillSplitsSheet(f, sheet, splits); err != nil {
		return err
	}

	return save(f, path)
}

// WriteProfile writes company information as a single-sheet workbook.
func WriteProfile(path string, profile *market.Profile) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Company Info"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := fillProfileSheet(f, sheet, profile); err != nil {
		return err
	}

	return save(f, path)
}

// Summary aggregates everything that was fetched successfully for one
// ticker. Only populated fields become sheets.
type Summary struct {
	Symbol     string
	Metrics    []stats.Metric
	Bars       []market.Bar
	Statements []*market.Statement
	Dividends  []market.Dividend
	Splits     []market.Split
	Profile    *market.Profile
}

// WriteSummary writes the aggregate workbook: a Summary sheet with key
// statistics, the price history, and one sheet per other fetched category.
func WriteSummary(path string, summary Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	f.SetCellValue("Summary", "A1", "Metric")
	f.SetCellValue("Summary", "B1", "Value")
	for i, m := range summary.Metrics {
		row := i + 2
		f.SetCellValue("Summary", cell(1, row), m.Name)
		f.SetCellValue("Summary", cell(2, row), m.Value)
	}

	if len(summary.Bars) > 0 {
		if _, err := f.NewSheet("Historical Data"); err != nil {
			return fmt.Errorf("add sheet: %w", err)
		}
		if err := fillBarsSheet(f, "Historical Data", summary.Bars); err != nil {
			return err
		}
	}

	for _, stmt := range summary.Statements {
		name := sheetName(string(stmt.Kind))
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
		if err := fillStatementSheet(f, name, stmt); err != nil {
			return err
		}
	}

	if len(summary.Dividends) > 0 {
		if _, err := f.NewSheet("Dividends"); err != nil {
			return fmt.Errorf("add sheet: %w", err)
		}
		if err := fillDividendsSheet(f, "Dividends", summary.Dividends); err != nil {
			return err
		}
	}

	if len(summary.Splits) > 0 {
		if _, err := f.NewSheet("Splits"); err != nil {
			return fmt.Errorf("add sheet: %w", err)
		}
		if err := fillSplitsSheet(f, "Splits", summary.Splits); err != nil {
			return err
		}
	}

	if summary.Profile != nil {
		if _, err := f.NewSheet("Company Info"); err != nil {
			return fmt.Errorf("add sheet: %w", err)
		}
		if err := fillProfileSheet(f, "Company Info", summary.Profile); err != nil {
			return err
		}
	}

	return save(f, path)
}

func fillBarsSheet(f *excelize.File, sheet string, bars []market.Bar) error {
	headers := []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(i+1, 1), h)
	}
	for i, bar := range bars {
		row := i + 2
		f.SetCellValue(sheet, cell(1, row), bar.Date.Format(dateLayout))
		f.SetCellValue(sheet, cell(2, row), bar.Open.InexactFloat64())
		f.SetCellValue(sheet, cell(3, row), bar.High.InexactFloat64())
		f.SetCellValue(sheet, cell(4, row), bar.Low.InexactFloat64())
		f.SetCellValue(sheet, cell(5, row), bar.Close.InexactFloat64())
		f.SetCellValue(sheet, cell(6, row), bar.AdjClose.InexactFloat64())
		f.SetCellValue(sheet, cell(7, row), bar.Volume)
	}
	return nil
}

func fillStatementSheet(f *excelize.File, sheet string, stmt *market.Statement) error {
	f.SetCellValue(sheet, "A1", "Item")
	for i, date := range stmt.Dates {
		f.SetCellValue(sheet, cell(i+2, 1), date.Format(dateLayout))
	}
	for r, line := range stmt.Lines {
		row := r + 2
		f.SetCellValue(sheet, cell(1, row), line.Label)
		for c, v := range line.Values {
			if v == nil {
				continue
			}
			f.SetCellValue(sheet, cell(c+2, row), v.InexactFloat64())
		}
	}
	return nil
}

func fillDividendsSheet(f *excelize.File, sheet string, dividends []market.Dividend) error {
	f.SetCellValue(sheet, "A1", "Date")
	f.SetCellValue(sheet, "B1", "Amount")
	for i, d := range dividends {
		row := i + 2
		f.SetCellValue(sheet, cell(1, row), d.Date.Format(dateLayout))
		f.SetCellValue(sheet, cell(2, row), d.Amount.InexactFloat64())
	}
	return nil
}

func fillSplitsSheet(f *excelize.File, sheet string, splits []market.Split) error {
	headers := []string{"Date", "Numerator", "Denominator", "Ratio"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(i+1, 1), h)
	}
	for i, s := range splits {
		row := i + 2
		f.SetCellValue(sheet, cell(1, row), s.Date.Format(dateLayout))
		f.SetCellValue(sheet, cell(2, row), s.Numerator)
		f.SetCellValue(sheet, cell(3, row), s.Denominator)
		f.SetCellValue(sheet, cell(4, row), s.Ratio)
	}
	return nil
}

func fillProfileSheet(f *excelize.File, sheet string, p *market.Profile) error {
	rows := []struct {
		label string
		value interface{}
	}{
		{"Symbol", p.Symbol},
		{"Name", p.Name},
		{"Exchange", p.Exchange},
		{"Currency", p.Currency},
		{"Quote Type", p.QuoteType},
		{"Market State", p.MarketState},
		{"Price", p.Price.InexactFloat64()},
		{"Tradeable", p.IsTradeable},
		{"Fetched At", p.FetchedAt.Format("2006-01-02 15:04:05")},
	}
	for i, r := range rows {
		f.SetCellValue(sheet, cell(1, i+1), r.label)
		f.SetCellValue(sheet, cell(2, i+1), r.value)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func sheetName(name string) string {
	if len(name) > maxSheetNameLen {
		return name[:maxSheetNameLen]
	}
	return name
}

func save(f *excelize.File, path string) error {
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook %s: %w", path, err)
	}
	return nil
}
