package dataset

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zygimantas124/pension-fund-lt/internal/exporter"
	"github.com/zygimantas124/pension-fund-lt/internal/shared/testutil"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

const snapshotCSV = `fund_code,report_date,company_short,fund_type,number_of_participants,unit_value_change_ytd_pct,bar_pct,relative_change
SWD-1-89/95,2024-03-31,Swedbank,1989-1995,1200,5.25,0.65,5.25
SWD-1-89/95,2024-06-30,Swedbank,1989-1995,1250.0,8,,2.857143
NEW-1-40/46,2024-03-31,,,,1.5,,1.5
SBN-1-TIPF,2024-03-31,SEB,TIPF,,2,0.4,nan
BAD-1-89/95,31/03/2024,,1989-1995,,1,,1
`

func TestRead(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	records, err := Read(strings.NewReader(snapshotCSV), logger)
	require.NoError(t, err)
	require.Len(t, records, 4)

	first := records[0]
	assert.Equal(t, "SWD-1-89/95", first.FundCode)
	assert.Equal(t, testutil.MustDate("2024-03-31"), first.ReportDate)
	assert.Equal(t, domain.CompanyShort("Swedbank"), first.CompanyShort)
	assert.Equal(t, domain.FundType("1989-1995"), first.FundType)
	assert.Equal(t, domain.SomeInt(1200), first.NumberOfParticipants)
	assert.Equal(t, domain.SomeFloat(5.25), first.UnitValueChangeYTDPct)
	assert.Equal(t, domain.SomeFloat(0.65), first.BarPct)

	assert.Equal(t, domain.SomeInt(1250), records[1].NumberOfParticipants)
	assert.False(t, records[1].BarPct.Valid)
	assert.Empty(t, records[2].CompanyShort)
	assert.False(t, records[3].RelativeChange.Valid)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "failed to parse snapshot record")
	testutil.AssertLogAttr(t, handler, "line", int64(6))
}

func TestRead_HeaderByNameWithBOM(t *testing.T) {
	input := "\ufeffrelative_change,bar_pct,unit_value_change_ytd_pct,number_of_participants,fund_type,company_short,report_date,fund_code,extra\n" +
		"1.5,0.5,1.5,10,TIPF,SEB,2024-03-31,SBN-1-TIPF,ignored\n"

	logger, _ := testutil.NewTestLogger(t)
	records, err := Read(strings.NewReader(input), logger)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "SBN-1-TIPF", records[0].FundCode)
	assert.Equal(t, domain.FundType("TIPF"), records[0].FundType)
	assert.Equal(t, domain.SomeFloat(0.5), records[0].BarPct)
}

func TestRead_Errors(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	_, err := Read(strings.NewReader(""), logger)
	assert.Error(t, err)

	_, err = Read(strings.NewReader("fund_code,report_date\nX,2024-03-31\n"), logger)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoad_RoundTripsExporterOutput(t *testing.T) {
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	written := testutil.Histories(
		testutil.FundHistory{Code: "SWD-1-89/95", Owner: "Swedbank", FundType: "1989-1995", FirstQuarter: "2023-12-31",
			Changes: []float64{4, 1.5}, Participants: []*int32{testutil.Count(10), nil}, Bar: []float64{0.5, 0.25}},
		testutil.FundHistory{Code: "LMN-1-TIPF", Owner: "Luminor", FundType: "TIPF", FirstQuarter: "2024-03-31",
			Changes: []float64{-0.5}},
	)
	require.NoError(t, exporter.NewSnapshotExporter(dir, logger).Export(written, "combined_results.csv"))

	d, err := Load(filepath.Join(dir, "combined_results.csv"), logger)
	require.NoError(t, err)
	require.Equal(t, 3, d.Len())

	for i, r := range d.Records() {
		assert.Equal(t, exporter.SnapshotRow(r), exporter.SnapshotRow(sortedByCode(written)[i]))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), logger)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func sortedByCode(records []domain.NormalizedRecord) []domain.NormalizedRecord {
	return New(records, "").Records()
}
