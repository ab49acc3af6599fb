package market

import (
	"fmt"
	"strings"
	"time"
)

// Period is a requested historical time span, e.g. "1y" or "max".
type Period string

// ValidPeriods lists every accepted period, short spans first.
func ValidPeriods() []Period {
	return []Period{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}
}

// ParsePeriod validates a period string and normalizes its case.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidPeriods() {
		if p == valid {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid period %q (valid: %s)", s, joinPeriods())
}

// Range converts the period into a concrete start/end pair ending now.
func (p Period) Range(now time.Time) (start, end time.Time) {
	end = now
	switch p {
	case "1d":
		start = now.AddDate(0, 0, -1)
	case "5d":
		start = now.AddDate(0, 0, -5)
	case "1mo":
		start = now.AddDate(0, -1, 0)
	case "3mo":
		start = now.AddDate(0, -3, 0)
	case "6mo":
		start = now.AddDate(0, -6, 0)
	case "1y":
		start = now.AddDate(-1, 0, 0)
	case "2y":
		start = now.AddDate(-2, 0, 0)
	case "5y":
		start = now.AddDate(-5, 0, 0)
	case "10y":
		start = now.AddDate(-10, 0, 0)
	case "ytd":
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case "max":
		start = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		start = now.AddDate(-2, 0, 0)
	}
	return start, end
}

func joinPeriods() string {
	parts := make([]string, 0, len(ValidPeriods()))
	for _, p := range ValidPeriods() {
		parts = append(parts, string(p))
	}
	return strings.Join(parts, ", ")
}
