package dataprocessing

import (
	"sort"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// yearState is the estimator's position within a fund's calendar year.
type yearState int

const (
	// stateFirstOfYear: no earlier disclosure this year, the YTD figure is already
	// the period's own growth.
	stateFirstOfYear yearState = iota
	// stateWithinYear: the YTD figure must be divided by the previous cumulative one.
	stateWithinYear
)

// EstimateRelativeChange derives each record's period-over-period change (percent)
// from the cumulative year-to-date figures. Records are partitioned by fund code and
// scanned in date order. The result is sorted by (fund_code, report_date); the input
// slice is not modified.
//
// A missing quarter is not special-cased: the previous present record is treated as
// the adjacent period.
func EstimateRelativeChange(records []domain.NormalizedRecord) []domain.NormalizedRecord {
	out := make([]domain.NormalizedRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FundCode != out[j].FundCode {
			return out[i].FundCode < out[j].FundCode
		}
		return out[i].ReportDate.Before(out[j].ReportDate)
	})

	for start := 0; start < len(out); {
		end := start + 1
		for end < len(out) && out[end].FundCode == out[start].FundCode {
			end++
		}
		scanFund(out[start:end])
		start = end
	}
	return out
}

// scanFund fills RelativeChange for one fund's date-ordered history.
func scanFund(history []domain.NormalizedRecord) {
	var prev *domain.NormalizedRecord
	for i := range history {
		cur := &history[i]
		ytd := cur.UnitValueChangeYTDPct.Map(func(v float64) float64 { return v / 100 })

		var change domain.NullFloat64
		switch stateFor(prev, cur) {
		case stateFirstOfYear:
			change = ytd
		case stateWithinYear:
			prevYTD := prev.UnitValueChangeYTDPct.Map(func(v float64) float64 { return v / 100 })
			change = domain.CombineFloat(ytd, prevYTD, func(x, y float64) float64 {
				return (1+x)/(1+y) - 1
			})
		}

		cur.RelativeChange = change.Map(func(v float64) float64 { return v * 100 })
		prev = cur
	}
}

func stateFor(prev, cur *domain.NormalizedRecord) yearState {
	if prev == nil || prev.ReportDate.Year() != cur.ReportDate.Year() || !prev.UnitValueChangeYTDPct.Valid {
		return stateFirstOfYear
	}
	return stateWithinYear
}
