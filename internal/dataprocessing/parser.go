package dataprocessing

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// ErrCoercion marks a cell that could not be converted to its column type.
// It aborts ingestion of the whole file.
var ErrCoercion = errors.New("type coercion failed")

// ErrLayout is returned when a workbook does not have the expected shape.
var ErrLayout = errors.New("unexpected report layout")

const (
	// firstDataRow is the 0-based sheet row where fund rows begin: one header row
	// followed by two caption rows.
	firstDataRow = 3

	colCompanyName  = 0
	colFundCode     = 1
	colFundName     = 2
	colParticipants = 6
	colYTDChange    = 8
	// the disclosed ratio sits third from the right edge of the sheet
	colBarFromRight = 3
)

// notApplicable lists cell texts that mean the value does not apply for the period.
var notApplicable = map[string]bool{
	"Veikia trumpiau": true, // fund operated for less than the period
	"-":               true,
}

var (
	barNumberPattern = regexp.MustCompile(`(\d+\.?\d*)`)
	textDatePattern  = regexp.MustCompile(`(\d{4})[-./ ](\d{1,2})[-./ ](\d{1,2})`)
)

// ReadSnapshot opens a report workbook and extracts its report date and the fund rows
// of the first worksheet. Columns are selected by position, not by header text.
func ReadSnapshot(filePath string) (*domain.RawReportSnapshot, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrLayout)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: missing header cell", ErrLayout)
	}

	reportDate, err := ParseReportDate(rows[0][0])
	if err != nil {
		return nil, err
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	barCol := width - colBarFromRight
	if barCol <= colYTDChange {
		return nil, fmt.Errorf("%w: sheet is %d columns wide", ErrLayout, width)
	}

	snapshot := &domain.RawReportSnapshot{
		Source:     filePath,
		ReportDate: reportDate,
	}
	for i := firstDataRow; i < len(rows); i++ {
		row := rows[i]
		snapshot.Rows = append(snapshot.Rows, domain.RawReportRow{
			CompanyName:           cellAt(row, colCompanyName),
			FundCode:              cellAt(row, colFundCode),
			FundName:              cellAt(row, colFundName),
			NumberOfParticipants:  cellAt(row, colParticipants),
			UnitValueChangeYTDPct: cellAt(row, colYTDChange),
			BarPct:                cellAt(row, barCol),
		})
	}

	slog.Debug("report sheet read",
		slog.String("file", filePath),
		slog.String("sheet", sheets[0]),
		slog.String("report_date", reportDate.Format(domain.DateLayout)),
		slog.Int("rows", len(snapshot.Rows)),
		slog.Int("width", width))

	return snapshot, nil
}

// ParseReportDate reads the report date from the header cell. Date-formatted cells
// arrive as spreadsheet serial numbers; text cells may use dashes, dots or slashes.
func ParseReportDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: header date serial %q: %v", ErrLayout, cell, err)
		}
		return truncateDay(t), nil
	}
	if m := textDatePattern.FindStringSubmatch(cell); m != nil {
		t, err := time.Parse("2006-1-2", m[1]+"-"+m[2]+"-"+m[3])
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: header cell %q is not a report date", ErrLayout, cell)
}

// Normalize converts one snapshot into typed, classified records. A coercion failure
// in any row returns an error wrapping ErrCoercion and no records.
func Normalize(snapshot *domain.RawReportSnapshot) ([]domain.NormalizedRecord, error) {
	records := make([]domain.NormalizedRecord, 0, len(snapshot.Rows))
	unclassified := 0

	for i, raw := range snapshot.Rows {
		// the ratio is extracted from the raw text before sentinels are cleared
		bar := ExtractBarPct(raw.BarPct)

		fundCode := strings.TrimSpace(raw.FundCode)
		if fundCode == "" || notApplicable[fundCode] {
			continue
		}

		line := i + firstDataRow + 1
		participants, err := parseParticipants(clearNotApplicable(raw.NumberOfParticipants))
		if err != nil {
			return nil, fmt.Errorf("%s row %d number_of_participants: %w", snapshot.Source, line, err)
		}
		ytd, err := parseFloat32(clearNotApplicable(raw.UnitValueChangeYTDPct))
		if err != nil {
			return nil, fmt.Errorf("%s row %d unit_value_change_ytd_pct: %w", snapshot.Source, line, err)
		}
		if !ytd.Valid {
			continue
		}

		record := domain.NormalizedRecord{
			FundCode:              fundCode,
			CompanyShort:          OwnerFromCode(fundCode),
			FundType:              FundTypeFromCode(fundCode),
			ReportDate:            snapshot.ReportDate,
			NumberOfParticipants:  participants,
			UnitValueChangeYTDPct: ytd,
			BarPct:                bar,
		}
		if !record.Classified() {
			unclassified++
		}
		records = append(records, record)
	}

	if unclassified > 0 {
		slog.Debug("records with unrecognized fund code",
			slog.String("file", snapshot.Source),
			slog.Int("count", unclassified))
	}
	return records, nil
}

// ExtractBarPct parses the first decimal number of a ratio cell such as "0,65 %".
// Commas are read as decimal separators.
func ExtractBarPct(cell string) domain.NullFloat64 {
	m := barNumberPattern.FindString(strings.ReplaceAll(cell, ",", "."))
	if m == "" {
		return domain.NoFloat()
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return domain.NoFloat()
	}
	return domain.SomeFloat(float64(float32(v)))
}

func clearNotApplicable(cell string) string {
	cell = strings.TrimSpace(cell)
	if notApplicable[cell] {
		return ""
	}
	return cell
}

func parseFloat32(cell string) (domain.NullFloat64, error) {
	if cell == "" {
		return domain.NoFloat(), nil
	}
	v, err := strconv.ParseFloat(cell, 32)
	if err != nil {
		return domain.NoFloat(), fmt.Errorf("%w: %q is not a number", ErrCoercion, cell)
	}
	return domain.SomeFloat(v), nil
}

func parseParticipants(cell string) (domain.NullInt32, error) {
	if cell == "" {
		return domain.NullInt32{}, nil
	}
	if n, err := strconv.ParseInt(cell, 10, 32); err == nil {
		return domain.SomeInt(int32(n)), nil
	}
	// numeric cells may be stored as "1234.0"
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return domain.NullInt32{}, fmt.Errorf("%w: %q is not a 32-bit integer", ErrCoercion, cell)
	}
	return domain.SomeInt(int32(f)), nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
