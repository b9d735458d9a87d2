package domain

import (
	"time"
)

// FundType is the age-cohort label of a fund, e.g. "1989-1995" or "TIPF".
// The empty value means the fund code suffix was not recognized.
type FundType string

// CompanyShort is the short name of the fund owner, e.g. "Swedbank".
// The empty value means the fund code prefix was not recognized.
type CompanyShort string

// RawReportRow is one spreadsheet data row after ordinal column selection.
// All values are still text; empty strings stand for blank cells.
type RawReportRow struct {
	CompanyName           string
	FundCode              string
	FundName              string
	NumberOfParticipants  string
	UnitValueChangeYTDPct string
	BarPct                string
}

// RawReportSnapshot is one report spreadsheet: the rows of a single reporting date.
type RawReportSnapshot struct {
	Source     string
	ReportDate time.Time
	Rows       []RawReportRow
}

// NormalizedRecord is one fund on one report date.
// (FundCode, ReportDate) is unique across the dataset.
type NormalizedRecord struct {
	FundCode              string       `json:"fund_code" validate:"required"`
	CompanyShort          CompanyShort `json:"company_short"`
	FundType              FundType     `json:"fund_type"`
	ReportDate            time.Time    `json:"report_date" validate:"required"`
	NumberOfParticipants  NullInt32    `json:"number_of_participants"`
	UnitValueChangeYTDPct NullFloat64  `json:"unit_value_change_ytd_pct"`
	BarPct                NullFloat64  `json:"bar_pct"`
	RelativeChange        NullFloat64  `json:"relative_change"`
}

// Classified reports whether both the owner and the fund type were recognized.
func (r NormalizedRecord) Classified() bool {
	return r.CompanyShort != "" && r.FundType != ""
}

// DateLayout is the report_date layout used in the flat snapshot.
const DateLayout = "2006-01-02"

// SnapshotColumns is the header of the flat dataset snapshot, in order.
var SnapshotColumns = []string{
	"fund_code",
	"report_date",
	"company_short",
	"fund_type",
	"number_of_participants",
	"unit_value_change_ytd_pct",
	"bar_pct",
	"relative_change",
}
