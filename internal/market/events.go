package market

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type chartEventsResponse struct {
	Chart struct {
		Result []struct {
			Events struct {
				Dividends map[string]dividendEvent `json:"dividends"`
				Splits    map[string]splitEvent    `json:"splits"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Dividends fetches cash dividend events over the requested period.
func (c *Client) Dividends(symbol string, period Period) ([]Dividend, error) {
	var cached []Dividend
	if c.cache.Get("dividends", c.cacheKey(symbol, period, ""), &cached) {
		return cached, nil
	}

	events, err := c.fetchEvents(symbol, period, "div")
	if err != nil {
		return nil, err
	}

	result := make([]Dividend, 0, len(events.Dividends))
	for _, d := range events.Dividends {
		result = append(result, Dividend{
			Symbol: NormalizeSymbol(symbol),
			Date:   time.Unix(d.Date, 0).UTC(),
			Amount: decimal.NewFromFloat(d.Amount),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })

	c.cache.Set("dividends", c.cacheKey(symbol, period, ""), result)

	return result, nil
}

// Splits fetches stock split events over the requested period.
func (c *Client) Splits(symbol string, period Period) ([]Split, error) {
	var cached []Split
	if c.cache.Get("splits", c.cacheKey(symbol, period, ""), &cached) {
		return cached, nil
	}

	events, err := c.fetchEvents(symbol, period, "split")
	if err != nil {
		return nil, err
	}

	result := make([]Split, 0, len(events.Splits))
	for _, s := range events.Splits {
		result = append(result, Split{
			Symbol:      NormalizeSymbol(symbol),
			Date:        time.Unix(s.Date, 0).UTC(),
			Numerator:   s.Numerator,
			Denominator: s.Denominator,
			Ratio:       s.SplitRatio,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })

	c.cache.Set("splits", c.cacheKey(symbol, period, ""), result)

	return result, nil
}

type dividendEvent struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type splitEvent struct {
	Date        int64  `json:"date"`
	Numerator   int64  `json:"numerator"`
	Denominator int64  `json:"denominator"`
	SplitRatio  string `json:"splitRatio"`
}

type chartEvents struct {
	Dividends map[string]dividendEvent
	Splits    map[string]splitEvent
}

func (c *Client) fetchEvents(symbol string, period Period, kind string) (*chartEvents, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, Permanent(err)
	}
	symbol = NormalizeSymbol(symbol)

	start, end := period.Range(c.now())

	var result *chartEvents
	err := WithRetry(c.retry, func() error {
		resp, err := c.http.R().
			SetQueryParams(map[string]string{
				"interval": "1d",
				"events":   kind,
				"period1":  strconv.FormatInt(start.Unix(), 10),
				"period2":  strconv.FormatInt(end.Unix(), 10),
			}).
			Get("/v8/finance/chart/" + symbol)
		if err != nil {
			return fmt.Errorf("failed to fetch %s events for %s: %w", kind, symbol, err)
		}
		if resp.StatusCode() != 200 {
			return apiError(resp.StatusCode(), resp.String())
		}

		var parsed chartEventsResponse
		if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
			return fmt.Errorf("failed to parse events response: %w", err)
		}
		if parsed.Chart.Error != nil {
			return Permanent(fmt.Errorf("provider error for %s: %s", symbol, parsed.Chart.Error.Description))
		}
		if len(parsed.Chart.Result) == 0 {
			return Permanent(fmt.Errorf("no event data returned for %s", symbol))
		}

		result = &chartEvents{
			Dividends: parsed.Chart.Result[0].Events.Dividends,
			Splits:    parsed.Chart.Result[0].Events.Splits,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}
