package analytics

import (
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// Controls are the selectable owners and periods for a cohort, with the effective
// selection after validation.
type Controls struct {
	Managers []domain.CompanyShort
	Manager  domain.CompanyShort
	Periods  []domain.Period
	Period   domain.Period
}

// ResolveControls offers the cohort's owners and the periods the chosen owner's
// history can support: YTD, every whole year up to five, and ALL. A requested owner
// or period that is not offered is replaced by the first owner or by YTD.
func ResolveControls(cohort []domain.NormalizedRecord, manager domain.CompanyShort, current domain.Period) Controls {
	managers := Companies(cohort)
	c := Controls{Managers: managers}
	if contains(managers, manager) {
		c.Manager = manager
	} else if len(managers) > 0 {
		c.Manager = managers[0]
	}

	history := cohort
	if c.Manager != "" {
		history = ForCompany(cohort, c.Manager)
	}
	maxYears := 0
	if len(history) > 0 {
		first, last := dateBounds(history)
		maxYears = int(last.Sub(first).Hours() / 24 / daysPerYear)
	}
	if maxYears > domain.MaxPeriodYears {
		maxYears = domain.MaxPeriodYears
	}

	c.Periods = append(c.Periods, domain.PeriodYTD)
	for y := 1; y <= maxYears; y++ {
		c.Periods = append(c.Periods, domain.YearsPeriod(y))
	}
	c.Periods = append(c.Periods, domain.PeriodAll)
	c.Period = selectPeriod(c.Periods, current)
	return c
}

// DefaultControls is used before a fund type is chosen: every owner and every period
// are offered.
func DefaultControls(owners []domain.CompanyShort, manager domain.CompanyShort, current domain.Period) Controls {
	c := Controls{
		Managers: owners,
		Periods:  append([]domain.Period(nil), domain.Periods...),
	}
	if contains(owners, manager) {
		c.Manager = manager
	} else if len(owners) > 0 {
		c.Manager = owners[0]
	}
	c.Period = selectPeriod(c.Periods, current)
	return c
}

func selectPeriod(offered []domain.Period, current domain.Period) domain.Period {
	if contains(offered, current) {
		return current
	}
	return domain.PeriodYTD
}

func contains[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
