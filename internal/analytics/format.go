package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// Messages are the localized texts shown in place of missing values.
type Messages struct {
	FundNotExist   string
	NoDataReported string
}

// FormatSigned renders v with an explicit sign and 2 decimals, or msg when v is NaN.
// Values that round to zero keep their natural sign ("-0.00").
func FormatSigned(v float64, msg string) string {
	if math.IsNaN(v) {
		return msg
	}
	return fmt.Sprintf("%+.2f", v)
}

// FormatExpenseRatio renders a ratio with 3 decimals, or msg when absent.
func FormatExpenseRatio(v domain.NullFloat64, msg string) string {
	if !v.Valid {
		return msg
	}
	return fmt.Sprintf("%.3f", v.Float64)
}

func formatCount(v domain.NullInt32) string {
	return strconv.FormatInt(int64(v.Int32), 10)
}

func formatCountChange(v domain.NullInt32) string {
	return fmt.Sprintf("%+d", v.Int32)
}

// sanitize replaces blank or not-a-number cells with msg.
func sanitize(rows []Row, msg string) {
	for i := range rows {
		for col, v := range rows[i].Cells {
			trimmed := strings.ToLower(strings.TrimSpace(v))
			if trimmed == "" || trimmed == "nan" || trimmed == "+nan" || trimmed == "-nan" {
				rows[i].Cells[col] = msg
			}
		}
	}
}
