package dataprocessing

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// reportRow builds a 13-column data row matching the report layout: company, code,
// name, three unused, participants, unused, YTD change, unused, ratio, two unused.
func reportRow(company, code string, participants, ytd, bar interface{}) []interface{} {
	return []interface{}{company, code, "Fund " + code, nil, nil, nil, participants, nil, ytd, nil, bar, nil, nil}
}

// writeReport saves a minimal report workbook and returns its path.
func writeReport(t *testing.T, dir, name string, header interface{}, rows ...[]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A1", header))
	require.NoError(t, f.SetCellValue(sheet, "M1", "Pastabos"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Pensijų fondų rodikliai"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "Bendrovė"))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, firstDataRow+1+i)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadSnapshot(t *testing.T) {
	path := writeReport(t, t.TempDir(), "2024Q1.xlsx", "2024-03-31",
		reportRow("Swedbank", "SWD-1-89/95", 1200, 5.25, "0,65 %"),
		reportRow("Sektorius", "", nil, nil, nil),
		reportRow("SEB", "SBN-2-89/95", "-", "Veikia trumpiau", "-"),
	)

	snapshot, err := ReadSnapshot(path)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), snapshot.ReportDate)
	require.Len(t, snapshot.Rows, 3)

	first := snapshot.Rows[0]
	assert.Equal(t, "Swedbank", first.CompanyName)
	assert.Equal(t, "SWD-1-89/95", first.FundCode)
	assert.Equal(t, "Fund SWD-1-89/95", first.FundName)
	assert.Equal(t, "1200", first.NumberOfParticipants)
	assert.Equal(t, "5.25", first.UnitValueChangeYTDPct)
	assert.Equal(t, "0,65 %", first.BarPct)

	assert.Empty(t, snapshot.Rows[1].FundCode)
	assert.Equal(t, "Veikia trumpiau", snapshot.Rows[2].UnitValueChangeYTDPct)
}

func TestReadSnapshot_DateCellHeader(t *testing.T) {
	header := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	path := writeReport(t, t.TempDir(), "2023Q4.xlsx", header,
		reportRow("Luminor", "LMN-1-TIPF", 10, 1.5, 0.4),
	)

	snapshot, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, header, snapshot.ReportDate)
	require.Len(t, snapshot.Rows, 1)
	assert.Equal(t, "0.4", snapshot.Rows[0].BarPct)
}

func TestReadSnapshot_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ReadSnapshot(filepath.Join(t.TempDir(), "missing.xlsx"))
		assert.Error(t, err)
	})

	t.Run("header is not a date", func(t *testing.T) {
		path := writeReport(t, t.TempDir(), "bad.xlsx", "Ataskaita",
			reportRow("Swedbank", "SWD-1-89/95", 1, 1.0, "0.5"))
		_, err := ReadSnapshot(path)
		assert.ErrorIs(t, err, ErrLayout)
	})

	t.Run("too narrow", func(t *testing.T) {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		require.NoError(t, f.SetCellValue(sheet, "A1", "2024-03-31"))
		require.NoError(t, f.SetCellValue(sheet, "C4", "x"))
		path := filepath.Join(t.TempDir(), "narrow.xlsx")
		require.NoError(t, f.SaveAs(path))

		_, err := ReadSnapshot(path)
		assert.ErrorIs(t, err, ErrLayout)
	})
}

func TestParseReportDate(t *testing.T) {
	tests := []struct {
		cell    string
		want    time.Time
		wantErr bool
	}{
		{cell: "2024-03-31", want: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{cell: "2024.06.30", want: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{cell: " 2024/9/30 ", want: time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)},
		{cell: "Ataskaita 2023-12-31 d.", want: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{cell: "45382", want: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{cell: "", wantErr: true},
		{cell: "Q1", wantErr: true},
		{cell: "2024-13-45", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, err := ParseReportDate(tt.cell)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrLayout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractBarPct(t *testing.T) {
	tests := []struct {
		cell  string
		want  float64
		valid bool
	}{
		{cell: "0,65", want: 0.65, valid: true},
		{cell: "0,65 %", want: 0.65, valid: true},
		{cell: "1.2 proc.", want: 1.2, valid: true},
		{cell: "2", want: 2, valid: true},
		{cell: "iki 0,8", want: 0.8, valid: true},
		{cell: "-", valid: false},
		{cell: "", valid: false},
		{cell: "nėra", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got := ExtractBarPct(tt.cell)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, got.Float64, 1e-6)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	date := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	snapshot := &domain.RawReportSnapshot{
		Source:     "2024Q1.xlsx",
		ReportDate: date,
		Rows: []domain.RawReportRow{
			{CompanyName: "Swedbank", FundCode: "SWD-1-89/95", NumberOfParticipants: "1200", UnitValueChangeYTDPct: "5.25", BarPct: "0,65"},
			{CompanyName: "Sektorius"},
			{CompanyName: "SEB", FundCode: "SBN-2-89/95", NumberOfParticipants: "300", UnitValueChangeYTDPct: "Veikia trumpiau", BarPct: "0,5"},
			{CompanyName: "Allianz", FundCode: "AVI-3-TIPF", NumberOfParticipants: "-", UnitValueChangeYTDPct: "-1.5", BarPct: "-"},
			{CompanyName: "Naujas", FundCode: "NEW-1-40/46", NumberOfParticipants: "1000.0", UnitValueChangeYTDPct: "2", BarPct: ""},
			{CompanyName: "Brūkšnys", FundCode: "-", UnitValueChangeYTDPct: "3"},
		},
	}

	records, err := Normalize(snapshot)
	require.NoError(t, err)
	require.Len(t, records, 3)

	swd := records[0]
	assert.Equal(t, "SWD-1-89/95", swd.FundCode)
	assert.Equal(t, domain.CompanyShort("Swedbank"), swd.CompanyShort)
	assert.Equal(t, domain.FundType("1989-1995"), swd.FundType)
	assert.Equal(t, date, swd.ReportDate)
	assert.Equal(t, domain.SomeInt(1200), swd.NumberOfParticipants)
	assert.InDelta(t, 5.25, swd.UnitValueChangeYTDPct.Float64, 1e-6)
	assert.InDelta(t, 0.65, swd.BarPct.Float64, 1e-6)
	assert.False(t, swd.RelativeChange.Valid)

	avi := records[1]
	assert.Equal(t, domain.FundType("TIPF"), avi.FundType)
	assert.False(t, avi.NumberOfParticipants.Valid)
	assert.False(t, avi.BarPct.Valid)
	assert.InDelta(t, -1.5, avi.UnitValueChangeYTDPct.Float64, 1e-6)

	unknown := records[2]
	assert.Empty(t, unknown.CompanyShort)
	assert.Empty(t, unknown.FundType)
	assert.False(t, unknown.Classified())
	assert.Equal(t, domain.SomeInt(1000), unknown.NumberOfParticipants)
}

func TestNormalize_CoercionFailureAbortsFile(t *testing.T) {
	tests := []struct {
		name string
		row  domain.RawReportRow
	}{
		{
			name: "YTD text",
			row:  domain.RawReportRow{FundCode: "SWD-1-89/95", UnitValueChangeYTDPct: "penki"},
		},
		{
			name: "YTD with decimal comma",
			row:  domain.RawReportRow{FundCode: "SWD-1-89/95", UnitValueChangeYTDPct: "5,2"},
		},
		{
			name: "fractional participants",
			row:  domain.RawReportRow{FundCode: "SWD-1-89/95", NumberOfParticipants: "12.5", UnitValueChangeYTDPct: "1"},
		},
		{
			name: "participants overflow",
			row:  domain.RawReportRow{FundCode: "SWD-1-89/95", NumberOfParticipants: "9999999999", UnitValueChangeYTDPct: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := &domain.RawReportSnapshot{
				Source: "broken.xlsx",
				Rows: []domain.RawReportRow{
					{FundCode: "SBN-1-89/95", NumberOfParticipants: "10", UnitValueChangeYTDPct: "1"},
					tt.row,
				},
			}
			records, err := Normalize(snapshot)
			assert.ErrorIs(t, err, ErrCoercion)
			assert.Contains(t, err.Error(), "broken.xlsx row 5")
			assert.Nil(t, records)
		})
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		code     string
		owner    domain.CompanyShort
		fundType domain.FundType
	}{
		{code: "SWD-1-89/95", owner: "Swedbank", fundType: "1989-1995"},
		{code: "LMN-03/09", owner: "Luminor", fundType: "2003-2009"},
		{code: "INV-x-54/60", owner: "Artea", fundType: "1954-1960"},
		{code: "GOX-TIPF", owner: "Goindex", fundType: "TIPF"},
		{code: "SBN-1-96/02", owner: "SEB", fundType: "1996-2002"},
		{code: "AVI-2-61/67", owner: "Allianz", fundType: "1961-1967"},
		{code: "XXX-1-89/95", owner: "", fundType: "1989-1995"},
		{code: "SWD-1-99/99", owner: "Swedbank", fundType: ""},
		{code: "TIPF", owner: "", fundType: "TIPF"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.owner, OwnerFromCode(tt.code))
			assert.Equal(t, tt.fundType, FundTypeFromCode(tt.code))
		})
	}
}
