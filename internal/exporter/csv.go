package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/mkocik/stocklens/internal/market"
)

// WriteBarsCSV writes price history as a CSV file, for users who export
// in the csv format instead of (or alongside) Excel.
func WriteBarsCSV(path, symbol string, bars []market.Bar) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Symbol", "Date", "Open", "High", "Low", "Close", "AdjClose", "Volume"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	for _, bar := range bars {
		row := []string{
			symbol,
			bar.Date.Format(dateLayout),
			bar.Open.String(),
			bar.High.String(),
			bar.Low.String(),
			bar.Close.String(),
			bar.AdjClose.String(),
			strconv.FormatInt(bar.Volume, 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	return nil
}

// ReadBarsCSV reads price history back from a CSV written by WriteBarsCSV.
func ReadBarsCSV(path string) ([]market.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file %s: %w", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, fmt.Errorf("no data in CSV file %s", path)
	}

	bars := make([]market.Bar, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != 8 {
			return nil, fmt.Errorf("row %d: expected 8 fields, got %d", i+2, len(record))
		}
		bar, err := parseBarRecord(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

func parseBarRecord(record []string) (market.Bar, error) {
	var bar market.Bar
	var err error

	bar.Symbol = record[0]
	if bar.Date, err = parseDate(record[1]); err != nil {
		return bar, err
	}
	if bar.Open, err = parseDecimal(record[2]); err != nil {
		return bar, err
	}
	if bar.High, err = parseDecimal(record[3]); err != nil {
		return bar, err
	}
	if bar.Low, err = parseDecimal(record[4]); err != nil {
		return bar, err
	}
	if bar.Close, err = parseDecimal(record[5]); err != nil {
		return bar, err
	}
	if bar.AdjClose, err = parseDecimal(record[6]); err != nil {
		return bar, err
	}
	if bar.Volume, err = strconv.ParseInt(record[7], 10, 64); err != nil {
		return bar, fmt.Errorf("parse volume: %w", err)
	}

	return bar, nil
}
