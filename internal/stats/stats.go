// Package stats computes the summary metrics that go into the per-ticker
// summary workbook.
package stats

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mkocik/stocklens/internal/market"
)

const (
	tradingDaysPerYear  = 252
	tradingDaysPerMonth = 21
)

// Metric is one row of the summary sheet.
type Metric struct {
	Name  string
	Value string
}

// SMA computes the simple moving average of the given prices over the period.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// Range52Week scans the most recent 252 trading days and returns the high and low.
func Range52Week(bars []market.Bar) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	n := len(bars)
	start := n - tradingDaysPerYear
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		h := bars[i].High.InexactFloat64()
		l := bars[i].Low.InexactFloat64()
		if h > high {
			high = h
		}
		if l < low {
			low = l
		}
	}
	return high, low, nil
}

// AnnualizedVolatility returns the sample standard deviation of daily
// returns scaled to a yearly horizon.
func AnnualizedVolatility(bars []market.Bar) (float64, error) {
	returns, err := dailyReturns(bars)
	if err != nil {
		return 0, err
	}
	if len(returns) < 2 {
		return 0, errors.New("not enough returns for volatility")
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear), nil
}

// PeriodReturn returns the fractional change from the first to the last close.
func PeriodReturn(bars []market.Bar) (float64, error) {
	if len(bars) < 2 {
		return 0, errors.New("not enough bars for period return")
	}
	first := bars[0].Close.InexactFloat64()
	last := bars[len(bars)-1].Close.InexactFloat64()
	if first == 0 {
		return 0, errors.New("first close is zero")
	}
	return last/first - 1, nil
}

// MonthReturn returns the fractional change over roughly the last month
// of trading days.
func MonthReturn(bars []market.Bar) (float64, error) {
	if len(bars) < 2 {
		return 0, errors.New("not enough bars for monthly return")
	}
	start := len(bars) - 1 - tradingDaysPerMonth
	if start < 0 {
		start = 0
	}
	base := bars[start].Close.InexactFloat64()
	last := bars[len(bars)-1].Close.InexactFloat64()
	if base == 0 {
		return 0, errors.New("base close is zero")
	}
	return last/base - 1, nil
}

// YTDReturn returns the fractional change since the first close of the
// current year present in the bars.
func YTDReturn(bars []market.Bar, now time.Time) (float64, error) {
	if len(bars) == 0 {
		return 0, errors.New("no bars provided")
	}
	year := now.Year()
	for _, b := range bars {
		if b.Date.Year() == year {
			base := b.Close.InexactFloat64()
			if base == 0 {
				return 0, errors.New("year-start close is zero")
			}
			last := bars[len(bars)-1].Close.InexactFloat64()
			return last/base - 1, nil
		}
	}
	return 0, fmt.Errorf("no bars in year %d", year)
}

// Summarize builds the metric rows for the summary sheet from daily bars.
// Metrics that cannot be computed from the available history are skipped
// rather than reported as zero.
func Summarize(bars []market.Bar, now time.Time) ([]Metric, error) {
	if len(bars) == 0 {
		return nil, errors.New("no bars provided")
	}

	latest := bars[len(bars)-1].Close.InexactFloat64()
	metrics := []Metric{
		{Name: "Current Price", Value: fmt.Sprintf("%.2f", latest)},
	}

	if high, low, err := Range52Week(bars); err == nil {
		metrics = append(metrics,
			Metric{Name: "52-Week High", Value: fmt.Sprintf("%.2f", high)},
			Metric{Name: "52-Week Low", Value: fmt.Sprintf("%.2f", low)},
		)
		if high != 0 {
			metrics = append(metrics, Metric{
				Name:  "Distance from 52w High",
				Value: fmt.Sprintf("%.1f%%", (latest/high-1)*100),
			})
		}
		if low != 0 {
			metrics = append(metrics, Metric{
				Name:  "Distance from 52w Low",
				Value: fmt.Sprintf("%.1f%%", (latest/low-1)*100),
			})
		}
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close.InexactFloat64()
	}
	if ma50, err := SMA(closes, 50); err == nil {
		metrics = append(metrics, Metric{Name: "50-Day MA", Value: fmt.Sprintf("%.2f", ma50)})
	}
	if ma200, err := SMA(closes, 200); err == nil {
		metrics = append(metrics, Metric{Name: "200-Day MA", Value: fmt.Sprintf("%.2f", ma200)})
	}

	if vol, err := AnnualizedVolatility(bars); err == nil {
		metrics = append(metrics, Metric{Name: "Volatility (Annualized)", Value: fmt.Sprintf("%.1f%%", vol*100)})
	}
	if r, err := PeriodReturn(bars); err == nil {
		metrics = append(metrics, Metric{Name: "Return (Period)", Value: fmt.Sprintf("%.1f%%", r*100)})
	}
	if r, err := MonthReturn(bars); err == nil {
		metrics = append(metrics, Metric{Name: "Return (1-Month)", Value: fmt.Sprintf("%.1f%%", r*100)})
	}
	if r, err := YTDReturn(bars, now); err == nil {
		metrics = append(metrics, Metric{Name: "Return (YTD)", Value: fmt.Sprintf("%.1f%%", r*100)})
	}

	return metrics, nil
}

func dailyReturns(bars []market.Bar) ([]float64, error) {
	if len(bars) < 2 {
		return nil, errors.New("not enough bars for daily returns")
	}
	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close.InexactFloat64()
		if prev == 0 {
			continue
		}
		returns = append(returns, bars[i].Close.InexactFloat64()/prev-1)
	}
	if len(returns) == 0 {
		return nil, errors.New("no usable daily returns")
	}
	return returns, nil
}
