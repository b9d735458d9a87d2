package testutil

import (
	"time"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// FundHistory describes one fund's quarterly disclosures for building test records.
// Participants and Bar, when set, must have one entry per change; a nil pointer or
// NaN leaves the value absent.
type FundHistory struct {
	Code         string
	Owner        domain.CompanyShort
	FundType     domain.FundType
	FirstQuarter string // quarter-end date, YYYY-MM-DD
	Changes      []float64
	Participants []*int32
	Bar          []float64
}

// Records expands the history into normalized records on consecutive quarter ends.
func (h FundHistory) Records() []domain.NormalizedRecord {
	dates := QuarterEnds(MustDate(h.FirstQuarter), len(h.Changes))
	records := make([]domain.NormalizedRecord, len(h.Changes))
	for i, change := range h.Changes {
		r := domain.NormalizedRecord{
			FundCode:              h.Code,
			CompanyShort:          h.Owner,
			FundType:              h.FundType,
			ReportDate:            dates[i],
			UnitValueChangeYTDPct: domain.SomeFloat(change),
			RelativeChange:        domain.SomeFloat(change),
		}
		if i < len(h.Participants) && h.Participants[i] != nil {
			r.NumberOfParticipants = domain.SomeInt(*h.Participants[i])
		}
		if i < len(h.Bar) {
			r.BarPct = domain.SomeFloat(h.Bar[i])
		}
		records[i] = r
	}
	return records
}

// Histories concatenates the records of several histories.
func Histories(histories ...FundHistory) []domain.NormalizedRecord {
	var out []domain.NormalizedRecord
	for _, h := range histories {
		out = append(out, h.Records()...)
	}
	return out
}

// QuarterEnds returns n consecutive quarter-end dates starting at first.
func QuarterEnds(first time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	y, m, _ := first.Date()
	for i := range dates {
		// day 0 of the following month is the last day of month m
		dates[i] = time.Date(y, m+time.Month(3*i)+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return dates
}

// MustDate parses a YYYY-MM-DD date in UTC.
func MustDate(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Count returns a pointer for FundHistory.Participants.
func Count(n int32) *int32 {
	return &n
}
