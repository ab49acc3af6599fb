package stats

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkocik/stocklens/internal/market"
)

// barsWithCloses builds one bar per trading day ending at end, with
// high/low derived from the close.
func barsWithCloses(closes []float64, end time.Time) []market.Bar {
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		date := end.AddDate(0, 0, i-len(closes)+1)
		bars[i] = market.Bar{
			Symbol: "TEST",
			Date:   date,
			Open:   decimal.NewFromFloat(c),
			High:   decimal.NewFromFloat(c * 1.01),
			Low:    decimal.NewFromFloat(c * 0.99),
			Close:  decimal.NewFromFloat(c),
			Volume: 1000,
		}
	}
	return bars
}

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}

	got, err := SMA(prices, 5)
	if err != nil {
		t.Fatalf("SMA: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected SMA 3, got %f", got)
	}

	got, err = SMA(prices, 2)
	if err != nil {
		t.Fatalf("SMA: %v", err)
	}
	if got != 4.5 {
		t.Fatalf("expected SMA 4.5, got %f", got)
	}

	if _, err := SMA(prices, 6); err == nil {
		t.Fatal("expected error when period exceeds data")
	}
	if _, err := SMA(prices, 0); err == nil {
		t.Fatal("expected error for non-positive period")
	}
}

func TestRange52Week(t *testing.T) {
	end := time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC)
	bars := barsWithCloses([]float64{100, 150, 120}, end)

	high, low, err := Range52Week(bars)
	if err != nil {
		t.Fatalf("Range52Week: %v", err)
	}
	if math.Abs(high-151.5) > 1e-9 {
		t.Fatalf("expected high 151.5, got %f", high)
	}
	if math.Abs(low-99) > 1e-9 {
		t.Fatalf("expected low 99, got %f", low)
	}

	if _, _, err := Range52Week(nil); err == nil {
		t.Fatal("expected error for empty bars")
	}
}

func TestPeriodReturn(t *testing.T) {
	end := time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC)
	bars := barsWithCloses([]float64{100, 110, 125}, end)

	r, err := PeriodReturn(bars)
	if err != nil {
		t.Fatalf("PeriodReturn: %v", err)
	}
	if math.Abs(r-0.25) > 1e-9 {
		t.Fatalf("expected 0.25, got %f", r)
	}
}

func TestYTDReturn(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	bars := []market.Bar{
		{Date: time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromFloat(90)},
		{Date: time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromFloat(100)},
		{Date: time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromFloat(120)},
	}

	r, err := YTDReturn(bars, now)
	if err != nil {
		t.Fatalf("YTDReturn: %v", err)
	}
	if math.Abs(r-0.2) > 1e-9 {
		t.Fatalf("expected 0.2, got %f", r)
	}

	// No bars in the current year.
	old := bars[:1]
	if _, err := YTDReturn(old, now); err == nil {
		t.Fatal("expected error when year has no bars")
	}
}

func TestAnnualizedVolatilityConstantPriceIsZero(t *testing.T) {
	end := time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC)
	bars := barsWithCloses([]float64{100, 100, 100, 100}, end)

	vol, err := AnnualizedVolatility(bars)
	if err != nil {
		t.Fatalf("AnnualizedVolatility: %v", err)
	}
	if vol != 0 {
		t.Fatalf("expected zero volatility, got %f", vol)
	}
}

func TestAnnualizedVolatilityUsesSampleVariance(t *testing.T) {
	end := time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC)
	bars := barsWithCloses([]float64{100, 110, 100}, end)

	vol, err := AnnualizedVolatility(bars)
	if err != nil {
		t.Fatalf("AnnualizedVolatility: %v", err)
	}

	// For two returns the sample standard deviation is |r1-r2|/sqrt(2).
	r1 := 110.0/100.0 - 1
	r2 := 100.0/110.0 - 1
	want := math.Abs(r1-r2) / math.Sqrt2 * math.Sqrt(tradingDaysPerYear)
	if math.Abs(vol-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, vol)
	}
}

func TestAnnualizedVolatilitySingleReturn(t *testing.T) {
	end := time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC)
	bars := barsWithCloses([]float64{100, 110}, end)

	if _, err := AnnualizedVolatility(bars); err == nil {
		t.Fatal("expected error for a single return")
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC)

	// 300 bars so the 200-day MA is computable.
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.1
	}
	bars := barsWithCloses(closes, now)

	metrics, err := Summarize(bars, now)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	names := map[string]bool{}
	for _, m := range metrics {
		names[m.Name] = true
		if m.Value == "" {
			t.Fatalf("metric %s has empty value", m.Name)
		}
	}

	for _, want := range []string{
		"Current Price", "52-Week High", "52-Week Low",
		"50-Day MA", "200-Day MA", "Volatility (Annualized)",
		"Return (Period)", "Return (1-Month)", "Return (YTD)",
	} {
		if !names[want] {
			t.Fatalf("missing metric %q in %v", want, names)
		}
	}
}

func TestSummarizeShortHistorySkipsLongMetrics(t *testing.T) {
	now := time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC)
	bars := barsWithCloses([]float64{100, 101, 102}, now)

	metrics, err := Summarize(bars, now)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	for _, m := range metrics {
		if m.Name == "200-Day MA" || m.Name == "50-Day MA" {
			t.Fatalf("metric %s should be skipped for short history", m.Name)
		}
	}
}
