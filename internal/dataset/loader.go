package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// ErrMissingColumn is returned when the snapshot header lacks a required column.
var ErrMissingColumn = errors.New("snapshot column missing")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads a snapshot CSV written by the batch processor. Columns are located by
// header name. Rows that fail to parse are logged and skipped.
func Load(path string, logger *slog.Logger) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	records, err := Read(file, logger.With(slog.String("file", path)))
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	d := New(records, path)
	logger.Info("dataset loaded",
		slog.String("file", path),
		slog.Int("records", d.Len()),
		slog.Int("fund_types", len(d.FundTypes())),
		slog.Int("owners", len(d.Owners())))
	return d, nil
}

// Read parses snapshot rows from r.
func Read(r io.Reader, logger *slog.Logger) ([]domain.NormalizedRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV file")
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = string(bytes.TrimPrefix([]byte(header[0]), utf8BOM))
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.NormalizedRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV record (line %d): %w", line, err)
		}

		record, err := parseRecord(row, index)
		if err != nil {
			logger.Warn("failed to parse snapshot record",
				slog.Int("line", line),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range domain.SnapshotColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return index, nil
}

func parseRecord(row []string, index map[string]int) (domain.NormalizedRecord, error) {
	cell := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	fundCode := cell("fund_code")
	if fundCode == "" {
		return domain.NormalizedRecord{}, fmt.Errorf("empty fund_code")
	}

	reportDate, err := time.Parse(domain.DateLayout, cell("report_date"))
	if err != nil {
		return domain.NormalizedRecord{}, fmt.Errorf("parse report_date: %w", err)
	}

	record := domain.NormalizedRecord{
		FundCode:     fundCode,
		CompanyShort: domain.CompanyShort(cell("company_short")),
		FundType:     domain.FundType(cell("fund_type")),
		ReportDate:   reportDate,
	}

	if record.NumberOfParticipants, err = parseInt(cell("number_of_participants")); err != nil {
		return domain.NormalizedRecord{}, fmt.Errorf("parse number_of_participants: %w", err)
	}
	floats := []struct {
		col string
		dst *domain.NullFloat64
	}{
		{"unit_value_change_ytd_pct", &record.UnitValueChangeYTDPct},
		{"bar_pct", &record.BarPct},
		{"relative_change", &record.RelativeChange},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloat(cell(f.col)); err != nil {
			return domain.NormalizedRecord{}, fmt.Errorf("parse %s: %w", f.col, err)
		}
	}
	return record, nil
}

func parseFloat(s string) (domain.NullFloat64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return domain.NoFloat(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.NoFloat(), err
	}
	return domain.SomeFloat(v), nil
}

func parseInt(s string) (domain.NullInt32, error) {
	if s == "" {
		return domain.NullInt32{}, nil
	}
	// counts may be written as "1234.0"
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return domain.NullInt32{}, err
	}
	return domain.SomeInt(int32(n)), nil
}
