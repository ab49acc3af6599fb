package market

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// quoteSummary module names per statement category.
var statementModules = map[Category]string{
	CategoryFinancials:            "incomeStatementHistory",
	CategoryQuarterlyFinancials:   "incomeStatementHistoryQuarterly",
	CategoryBalanceSheet:          "balanceSheetHistory",
	CategoryQuarterlyBalanceSheet: "balanceSheetHistoryQuarterly",
	CategoryCashflow:              "cashflowStatementHistory",
	CategoryQuarterlyCashflow:     "cashflowStatementHistoryQuarterly",
}

type rawField struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Statement fetches a financial statement category for a symbol.
// Categories an instrument type does not report (e.g. a balance sheet for
// a crypto pair) come back as permanent errors.
func (c *Client) Statement(symbol string, category Category) (*Statement, error) {
	module, ok := statementModules[category]
	if !ok {
		return nil, Permanent(fmt.Errorf("category %s is not a financial statement", category))
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, Permanent(err)
	}
	symbol = NormalizeSymbol(symbol)

	var cached Statement
	if c.cache.Get("statement", c.cacheKey(symbol, "", module), &cached) {
		return &cached, nil
	}

	var result *Statement
	err := WithRetry(c.retry, func() error {
		resp, err := c.http.R().
			SetQueryParam("modules", module).
			Get("/v10/finance/quoteSummary/" + symbol)
		if err != nil {
			return fmt.Errorf("failed to fetch %s for %s: %w", category, symbol, err)
		}
		if resp.StatusCode() != 200 {
			return apiError(resp.StatusCode(), resp.String())
		}

		stmt, err := parseStatement(resp.Body(), module)
		if err != nil {
			return Permanent(fmt.Errorf("%s unavailable for %s: %w", category, symbol, err))
		}

		stmt.Symbol = symbol
		stmt.Kind = category
		result = stmt
		return nil
	})

	if err != nil {
		return nil, err
	}

	c.cache.Set("statement", c.cacheKey(symbol, "", module), result)

	return result, nil
}

// parseStatement extracts the reported periods and line items from a
// quoteSummary module. The inner array name varies per module, so the
// first array-valued field inside the module object is taken.
func parseStatement(body []byte, module string) (*Statement, error) {
	var parsed quoteSummaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("provider error: %s", parsed.QuoteSummary.Error.Description)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("empty result")
	}

	moduleRaw, ok := parsed.QuoteSummary.Result[0][module]
	if !ok {
		return nil, fmt.Errorf("module %s missing from response", module)
	}

	var moduleFields map[string]json.RawMessage
	if err := json.Unmarshal(moduleRaw, &moduleFields); err != nil {
		return nil, fmt.Errorf("failed to parse module %s: %w", module, err)
	}

	var entries []map[string]json.RawMessage
	for _, raw := range moduleFields {
		trimmed := strings.TrimSpace(string(raw))
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(raw, &entries); err == nil {
				break
			}
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no reported periods")
	}

	stmt := &Statement{Dates: make([]time.Time, 0, len(entries))}
	values := make(map[string][]*decimal.Decimal)

	for i, entry := range entries {
		date := time.Time{}
		if rawDate, ok := entry["endDate"]; ok {
			var f rawField
			if json.Unmarshal(rawDate, &f) == nil && f.Raw != nil {
				date = time.Unix(int64(*f.Raw), 0).UTC()
			}
		}
		stmt.Dates = append(stmt.Dates, date)

		for field, raw := range entry {
			if field == "endDate" || field == "maxAge" {
				continue
			}
			var f rawField
			if json.Unmarshal(raw, &f) != nil || f.Raw == nil {
				continue
			}
			if _, ok := values[field]; !ok {
				values[field] = make([]*decimal.Decimal, len(entries))
			}
			d := decimal.NewFromFloat(*f.Raw)
			values[field][i] = &d
		}
	}

	labels := make([]string, 0, len(values))
	for label := range values {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		stmt.Lines = append(stmt.Lines, StatementLine{
			Label:  humanizeLabel(label),
			Values: values[label],
		})
	}

	return stmt, nil
}

// humanizeLabel turns a camelCase API field into a spreadsheet heading,
// e.g. "totalRevenue" -> "Total Revenue".
func humanizeLabel(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
