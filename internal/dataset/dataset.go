package dataset

import (
	"sort"
	"time"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// Dataset is the normalized record set loaded at startup. It is never modified after
// construction and may be shared between goroutines. Slices returned by its methods
// must not be modified by callers.
type Dataset struct {
	records    []domain.NormalizedRecord
	byFundType map[domain.FundType][]domain.NormalizedRecord
	fundTypes  []domain.FundType
	owners     []domain.CompanyShort
	source     string
	loadedAt   time.Time
}

// New indexes records. The slice is copied and ordered by (fund_code, report_date).
func New(records []domain.NormalizedRecord, source string) *Dataset {
	sorted := make([]domain.NormalizedRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FundCode != sorted[j].FundCode {
			return sorted[i].FundCode < sorted[j].FundCode
		}
		return sorted[i].ReportDate.Before(sorted[j].ReportDate)
	})

	d := &Dataset{
		records:    sorted,
		byFundType: make(map[domain.FundType][]domain.NormalizedRecord),
		source:     source,
		loadedAt:   time.Now(),
	}

	owners := make(map[domain.CompanyShort]bool)
	for _, r := range sorted {
		if r.FundType != "" {
			d.byFundType[r.FundType] = append(d.byFundType[r.FundType], r)
		}
		if r.CompanyShort != "" && !owners[r.CompanyShort] {
			owners[r.CompanyShort] = true
			d.owners = append(d.owners, r.CompanyShort)
		}
	}
	for ft := range d.byFundType {
		d.fundTypes = append(d.fundTypes, ft)
	}
	sort.Slice(d.fundTypes, func(i, j int) bool { return d.fundTypes[i] < d.fundTypes[j] })
	sort.Slice(d.owners, func(i, j int) bool { return d.owners[i] < d.owners[j] })

	return d
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns every record ordered by (fund_code, report_date).
func (d *Dataset) Records() []domain.NormalizedRecord {
	return d.records
}

// FundTypes returns the distinct recognized fund types, sorted.
func (d *Dataset) FundTypes() []domain.FundType {
	return d.fundTypes
}

// HasFundType reports whether any record has the fund type.
func (d *Dataset) HasFundType(ft domain.FundType) bool {
	_, ok := d.byFundType[ft]
	return ok
}

// Owners returns the distinct recognized owners across all fund types, sorted.
func (d *Dataset) Owners() []domain.CompanyShort {
	return d.owners
}

// Cohort returns the records of one fund type, including those with an unrecognized
// owner. The result is nil for an unknown fund type.
func (d *Dataset) Cohort(ft domain.FundType) []domain.NormalizedRecord {
	return d.byFundType[ft]
}

// Source is the file the dataset was loaded from.
func (d *Dataset) Source() string {
	return d.source
}

// LoadedAt is the time the dataset was indexed.
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// LatestReport returns the most recent report date, or the zero time when empty.
func (d *Dataset) LatestReport() time.Time {
	var latest time.Time
	for _, r := range d.records {
		if r.ReportDate.After(latest) {
			latest = r.ReportDate
		}
	}
	return latest
}
