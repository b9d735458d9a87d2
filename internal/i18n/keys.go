package i18n

import (
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// Message keys shared by the service and the command line tools.
const (
	KeyAppTitle       = "app.title"
	KeyLabelFundType  = "label.fund_type"
	KeyLabelManager   = "label.manager"
	KeyLabelPeriod    = "label.period"
	KeyLabelDateRange = "label.date_range"
	KeyFundNotExist   = "msg.fund_not_exist"
	KeyNoDataReported = "msg.no_data_reported"
)

// PeriodKey returns the label key of a period token.
func PeriodKey(p domain.Period) string {
	switch p {
	case domain.PeriodYTD:
		return "period.ytd"
	case domain.PeriodAll:
		return "period.since_inception"
	}
	return "period." + string(p) + "y"
}

// ColumnKey returns the header key of a table column. The owner column is
// labeled "col.fund".
func ColumnKey(column string) string {
	if column == "company_short" {
		return "col.fund"
	}
	return "col." + column
}

// SectionTitleKey and SectionHelpKey return the heading keys of a table section.
func SectionTitleKey(section string) string {
	return "section." + section + ".title"
}

func SectionHelpKey(section string) string {
	return "section." + section + ".help"
}
