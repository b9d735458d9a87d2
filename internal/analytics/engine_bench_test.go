package analytics

import (
	"testing"

	"github.com/zygimantas124/pension-fund-lt/internal/shared/testutil"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// benchCohort builds ten years of quarterly history for every known owner.
func benchCohort() []domain.NormalizedRecord {
	owners := []domain.CompanyShort{"Allianz", "Artea", "Goindex", "Luminor", "SEB", "Swedbank"}
	histories := make([]testutil.FundHistory, 0, len(owners))
	for i, owner := range owners {
		changes := make([]float64, 40)
		for q := range changes {
			changes[q] = float64((q+i)%7) - 2.5
		}
		histories = append(histories, testutil.FundHistory{
			Code:         string(owner) + "-89/95",
			Owner:        owner,
			FundType:     "1989-1995",
			FirstQuarter: "2014-09-30",
			Changes:      changes,
		})
	}
	return testutil.Histories(histories...)
}

func BenchmarkCompute(b *testing.B) {
	cohort := benchCohort()
	periods := []domain.Period{domain.PeriodYTD, "1", "5", domain.PeriodAll}

	for _, period := range periods {
		b.Run(string(period), func(b *testing.B) {
			q := Query{FundType: "1989-1995", Period: period, Company: "SEB"}
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Compute(cohort, q); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBuildTables(b *testing.B) {
	result, err := Compute(benchCohort(), Query{FundType: "1989-1995", Period: "5", Company: "SEB"})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildTables(result, "SEB", testMessages)
	}
}
