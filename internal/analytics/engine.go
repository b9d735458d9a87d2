package analytics

import (
	"math"
	"sort"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// coverageTolerance absorbs float error when comparing history length in years.
const coverageTolerance = 1e-6

// daysPerYear converts a day span into years of history.
const daysPerYear = 365.25

// Query selects one comparison: a fund-type cohort, a window and the highlighted owner.
type Query struct {
	FundType domain.FundType
	Period   domain.Period
	Company  domain.CompanyShort
}

// FundMetrics holds the raw metric values of one owner over the query window.
// Undefined values are NaN or absent; HasData is false when the owner had no records
// in the window or not enough history for the requested period.
type FundMetrics struct {
	Company            domain.CompanyShort
	HasData            bool
	Growth             float64
	Annualised         float64
	Worst              float64
	Best               float64
	ParticipantsLatest domain.NullInt32
	ParticipantsChange domain.NullInt32
	ExpenseRatio       domain.NullFloat64
}

// Result is the engine output for one query. Funds are in cohort order.
type Result struct {
	Range DateRange
	Funds []FundMetrics
}

// Compute resolves the window for q over the cohort and evaluates every metric for
// each owner present in the cohort. Records with an unrecognized owner take part in
// range resolution but are not reported.
func Compute(cohort []domain.NormalizedRecord, q Query) (*Result, error) {
	window, err := ResolveRange(AnchorRecords(cohort, q.Period, q.Company), q.Period)
	if err != nil {
		return nil, err
	}

	requiredYears, numeric := q.Period.Years()
	coverage := Coverage(cohort)
	inWindow := groupByCompany(FilterRange(cohort, window))

	result := &Result{Range: window}
	for _, company := range Companies(cohort) {
		rows := inWindow[company]
		if len(rows) == 0 || (numeric && !hasEnoughHistory(coverage[company], requiredYears)) {
			result.Funds = append(result.Funds, FundMetrics{
				Company:    company,
				Growth:     math.NaN(),
				Annualised: math.NaN(),
				Worst:      math.NaN(),
				Best:       math.NaN(),
			})
			continue
		}
		result.Funds = append(result.Funds, fundMetrics(company, rows))
	}
	return result, nil
}

// Coverage returns each owner's total history length in years, from the first to
// the last report in the records regardless of any window.
func Coverage(records []domain.NormalizedRecord) map[domain.CompanyShort]float64 {
	coverage := make(map[domain.CompanyShort]float64)
	for company, rows := range groupByCompany(records) {
		first, last := dateBounds(rows)
		days := math.Floor(last.Sub(first).Hours() / 24)
		coverage[company] = days / daysPerYear
	}
	return coverage
}

// Companies returns the distinct recognized owners of the records, sorted.
func Companies(records []domain.NormalizedRecord) []domain.CompanyShort {
	seen := make(map[domain.CompanyShort]bool)
	var companies []domain.CompanyShort
	for _, r := range records {
		if r.CompanyShort == "" || seen[r.CompanyShort] {
			continue
		}
		seen[r.CompanyShort] = true
		companies = append(companies, r.CompanyShort)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i] < companies[j] })
	return companies
}

// hasEnoughHistory reports whether coverage years satisfy a trailing-years window.
func hasEnoughHistory(coverage float64, years int) bool {
	return coverage+coverageTolerance >= float64(years)
}

func fundMetrics(company domain.CompanyShort, rows []domain.NormalizedRecord) FundMetrics {
	sorted := make([]domain.NormalizedRecord, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReportDate.Before(sorted[j].ReportDate)
	})

	changes := make([]domain.NullFloat64, len(sorted))
	for i, r := range sorted {
		changes[i] = r.RelativeChange
	}

	m := FundMetrics{
		Company:    company,
		HasData:    true,
		Growth:     GeometricCumulativeGrowth(changes),
		Annualised: AnnualisedReturn(changes),
	}
	m.Worst, m.Best = Extremes(changes)

	first, last := sorted[0], sorted[len(sorted)-1]
	if first.NumberOfParticipants.Valid && last.NumberOfParticipants.Valid {
		m.ParticipantsLatest = last.NumberOfParticipants
		m.ParticipantsChange = last.NumberOfParticipants.Sub(first.NumberOfParticipants)
	}
	m.ExpenseRatio = last.BarPct
	return m
}

func groupByCompany(records []domain.NormalizedRecord) map[domain.CompanyShort][]domain.NormalizedRecord {
	groups := make(map[domain.CompanyShort][]domain.NormalizedRecord)
	for _, r := range records {
		if r.CompanyShort == "" {
			continue
		}
		groups[r.CompanyShort] = append(groups[r.CompanyShort], r)
	}
	return groups
}
