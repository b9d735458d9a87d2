package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// ErrEmptyCohort is returned when a range is requested over no records.
var ErrEmptyCohort = errors.New("empty cohort")

// DateRange is an inclusive [Start, End] window of report dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ResolveRange computes the window for a period over the given records.
//
//   - YTD: January 1 of the latest report's year through the latest report.
//   - ALL: earliest through latest report.
//   - N years: the earliest report strictly after (latest - (12N-1) months) through
//     the latest report, so a 1-year window over quarterly data spans four reports.
func ResolveRange(records []domain.NormalizedRecord, period domain.Period) (DateRange, error) {
	if len(records) == 0 {
		return DateRange{}, ErrEmptyCohort
	}
	first, last := dateBounds(records)

	switch period {
	case domain.PeriodYTD:
		return DateRange{Start: time.Date(last.Year(), time.January, 1, 0, 0, 0, 0, last.Location()), End: last}, nil
	case domain.PeriodAll:
		return DateRange{Start: first, End: last}, nil
	}

	years, ok := period.Years()
	if !ok {
		return DateRange{}, fmt.Errorf("%w: %q", domain.ErrInvalidPeriod, string(period))
	}

	base := addMonths(last, -(12*years - 1))
	var start time.Time
	for _, r := range records {
		if r.ReportDate.After(base) && (start.IsZero() || r.ReportDate.Before(start)) {
			start = r.ReportDate
		}
	}
	return DateRange{Start: start, End: last}, nil
}

// FilterRange returns the records whose report date lies inside r, keeping order.
func FilterRange(records []domain.NormalizedRecord, r DateRange) []domain.NormalizedRecord {
	var out []domain.NormalizedRecord
	for _, rec := range records {
		if r.Contains(rec.ReportDate) {
			out = append(out, rec)
		}
	}
	return out
}

// AnchorRecords selects the records a range is resolved over. Since-inception
// windows follow the selected company's own history when it has any; every other
// period uses the whole cohort.
func AnchorRecords(cohort []domain.NormalizedRecord, period domain.Period, company domain.CompanyShort) []domain.NormalizedRecord {
	if period != domain.PeriodAll || company == "" {
		return cohort
	}
	own := ForCompany(cohort, company)
	if len(own) == 0 {
		return cohort
	}
	return own
}

// ForCompany returns the records of one owner, keeping order.
func ForCompany(records []domain.NormalizedRecord, company domain.CompanyShort) []domain.NormalizedRecord {
	var out []domain.NormalizedRecord
	for _, r := range records {
		if r.CompanyShort == company {
			out = append(out, r)
		}
	}
	return out
}

func dateBounds(records []domain.NormalizedRecord) (first, last time.Time) {
	first, last = records[0].ReportDate, records[0].ReportDate
	for _, r := range records[1:] {
		if r.ReportDate.Before(first) {
			first = r.ReportDate
		}
		if r.ReportDate.After(last) {
			last = r.ReportDate
		}
	}
	return first, last
}

// addMonths shifts t by n calendar months, clamping the day to the target month's
// length (March 31 minus one month is February 28 or 29).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	hour, minute, sec := t.Clock()
	return time.Date(target.Year(), target.Month(), d, hour, minute, sec, t.Nanosecond(), t.Location())
}
