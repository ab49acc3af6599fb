package market

import (
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// History fetches daily OHLCV bars for the requested period.
func (c *Client) History(symbol string, period Period) ([]Bar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, Permanent(err)
	}
	symbol = NormalizeSymbol(symbol)

	var cached []Bar
	if c.cache.Get("history", c.cacheKey(symbol, period, ""), &cached) {
		return cached, nil
	}

	start, end := period.Range(c.now())

	var result []Bar
	err := WithRetry(c.retry, func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)

		result = result[:0]
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, Bar{
				Symbol:   symbol,
				Date:     time.Unix(int64(bar.Timestamp), 0).UTC(),
				Open:     bar.Open,
				High:     bar.High,
				Low:      bar.Low,
				Close:    bar.Close,
				AdjClose: bar.AdjClose,
				Volume:   int64(bar.Volume),
			})
		}

		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get history for %s: %w", symbol, err)
		}
		if len(result) == 0 {
			return Permanent(fmt.Errorf("no historical data available for %s", symbol))
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	c.cache.Set("history", c.cacheKey(symbol, period, ""), result)

	return result, nil
}
