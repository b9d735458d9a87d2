package analytics

import (
	"math"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// GeometricCumulativeGrowth compounds per-period percent changes into a total percent
// change, rounded to 2 decimals. Missing values are skipped; a series with no present
// values yields NaN.
func GeometricCumulativeGrowth(changes []domain.NullFloat64) float64 {
	product := 1.0
	present := 0
	for _, c := range changes {
		if !c.Valid {
			continue
		}
		product *= 1 + c.Float64/100
		present++
	}
	if present == 0 {
		return math.NaN()
	}
	return round2((product - 1) * 100)
}

// AnnualisedReturn converts the cumulative growth of a quarterly series into an
// average yearly return in percent, rounded to 2 decimals. The number of years is the
// count of present quarters divided by four. The rounded cumulative growth is used as
// the base, so four quarters reproduce the cumulative figure exactly.
func AnnualisedReturn(changes []domain.NullFloat64) float64 {
	quarters := 0
	for _, c := range changes {
		if c.Valid {
			quarters++
		}
	}
	if quarters == 0 {
		return math.NaN()
	}
	years := float64(quarters) / 4

	growth := GeometricCumulativeGrowth(changes) / 100
	return round2((math.Pow(1+growth, 1/years) - 1) * 100)
}

// Extremes returns the lowest and highest present change, rounded to 2 decimals,
// or NaN for both when none is present.
func Extremes(changes []domain.NullFloat64) (worst, best float64) {
	worst, best = math.NaN(), math.NaN()
	for _, c := range changes {
		if !c.Valid {
			continue
		}
		if math.IsNaN(worst) || c.Float64 < worst {
			worst = c.Float64
		}
		if math.IsNaN(best) || c.Float64 > best {
			best = c.Float64
		}
	}
	return round2(worst), round2(best)
}

// round2 rounds half to even at 2 decimals. The sign of values that round to zero is
// kept, so -0.004 becomes -0.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.RoundToEven(v*100) / 100
}
