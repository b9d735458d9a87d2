package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zygimantas124/pension-fund-lt/internal/shared/testutil"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

func TestSnapshotExporter_Export(t *testing.T) {
	q1 := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	q2 := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	records := []domain.NormalizedRecord{
		{
			FundCode: "SWD-1-89/95", CompanyShort: "Swedbank", FundType: "1989-1995", ReportDate: q2,
			NumberOfParticipants: domain.SomeInt(1250), UnitValueChangeYTDPct: domain.SomeFloat(8),
			BarPct: domain.SomeFloat(float64(float32(0.65))), RelativeChange: domain.SomeFloat(2.5),
		},
		{
			FundCode: "SWD-1-89/95", CompanyShort: "Swedbank", FundType: "1989-1995", ReportDate: q1,
			NumberOfParticipants: domain.SomeInt(1200), UnitValueChangeYTDPct: domain.SomeFloat(5.25),
			RelativeChange: domain.SomeFloat(5.25),
		},
		{
			FundCode: "NEW-1-40/46", ReportDate: q1,
			UnitValueChangeYTDPct: domain.SomeFloat(-1.5), RelativeChange: domain.SomeFloat(-1.5),
		},
	}

	dir := t.TempDir()
	logger, handler := testutil.NewTestLogger(t)
	exporter := NewSnapshotExporter(dir, logger)

	require.NoError(t, exporter.Export(records, "combined_results.csv"))

	rows := readCSV(t, filepath.Join(dir, "combined_results.csv"))
	require.Len(t, rows, 4)
	assert.Equal(t, domain.SnapshotColumns, rows[0])
	assert.Equal(t, []string{"NEW-1-40/46", "2024-03-31", "", "", "", "-1.5", "", "-1.5"}, rows[1])
	assert.Equal(t, []string{"SWD-1-89/95", "2024-03-31", "Swedbank", "1989-1995", "1200", "5.25", "", "5.25"}, rows[2])
	assert.Equal(t, []string{"SWD-1-89/95", "2024-06-30", "Swedbank", "1989-1995", "1250", "8", "0.65", "2.5"}, rows[3])

	// caller's slice keeps its order
	assert.Equal(t, q2, records[0].ReportDate)
	testutil.AssertLogAttr(t, handler, "records", int64(3))
}

func TestSnapshotRow_Width(t *testing.T) {
	assert.Len(t, SnapshotRow(domain.NormalizedRecord{}), len(domain.SnapshotColumns))
}
