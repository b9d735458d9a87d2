package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidPeriod is returned for a period token outside the enumerated set.
var ErrInvalidPeriod = errors.New("invalid period")

// Period selects the comparison window: year-to-date, the trailing N years, or
// everything since the fund began.
type Period string

const (
	PeriodYTD Period = "YTD"
	PeriodAll Period = "ALL"

	// MaxPeriodYears is the longest trailing-years window offered.
	MaxPeriodYears = 5
)

// Periods lists every valid token in display order.
var Periods = []Period{PeriodYTD, "1", "2", "3", "4", "5", PeriodAll}

// ParsePeriod validates a period token.
func ParsePeriod(token string) (Period, error) {
	p := Period(token)
	if p == PeriodYTD || p == PeriodAll {
		return p, nil
	}
	if _, ok := p.Years(); ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, token)
}

// Years returns N for a trailing-years token.
func (p Period) Years() (int, bool) {
	n, err := strconv.Atoi(string(p))
	if err != nil || n < 1 || n > MaxPeriodYears || strconv.Itoa(n) != string(p) {
		return 0, false
	}
	return n, true
}

// YearsPeriod builds the token for a trailing N-year window.
func YearsPeriod(n int) Period {
	return Period(strconv.Itoa(n))
}
