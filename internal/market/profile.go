package market

import (
	"fmt"
	"strings"

	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// Profile fetches basic company information for a symbol.
func (c *Client) Profile(symbol string) (*Profile, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, Permanent(err)
	}
	symbol = NormalizeSymbol(symbol)

	var cached Profile
	if c.cache.Get("profile", symbol, &cached) {
		return &cached, nil
	}

	var result *Profile
	err := WithRetry(c.retry, func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "not found") {
				return Permanent(fmt.Errorf("unknown symbol %s: %w", symbol, err))
			}
			return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
		}
		if q == nil {
			return Permanent(fmt.Errorf("unknown symbol %s", symbol))
		}

		result = &Profile{
			Symbol:      symbol,
			Name:        q.ShortName,
			Exchange:    q.FullExchangeName,
			Currency:    q.CurrencyID,
			QuoteType:   string(q.QuoteType),
			MarketState: string(q.MarketState),
			Price:       decimal.NewFromFloat(q.RegularMarketPrice),
			IsTradeable: q.IsTradeable,
			FetchedAt:   c.now(),
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	c.cache.Set("profile", symbol, result)

	return result, nil
}
