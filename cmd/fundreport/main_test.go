package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zygimantas124/pension-fund-lt/internal/analytics"
	"github.com/zygimantas124/pension-fund-lt/internal/exporter"
	"github.com/zygimantas124/pension-fund-lt/internal/services"
	"github.com/zygimantas124/pension-fund-lt/internal/shared/testutil"
	"github.com/zygimantas124/pension-fund-lt/internal/validation"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// setup writes a two-fund TIPF snapshot under a temporary base directory and
// returns the base directory and snapshot path.
func setup(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	t.Setenv("PFUND_PATHS_BASE_DIR", base)
	t.Setenv("PFUND_LOGGING_LEVEL", "error")

	logger, _ := testutil.NewTestLogger(t)
	records := testutil.Histories(
		testutil.FundHistory{
			Code: "SWD-TIPF", Owner: "Swedbank", FundType: "TIPF",
			FirstQuarter: "2023-03-31",
			Changes:      []float64{0.2, 0.3, 0.5, 1.1},
		},
		testutil.FundHistory{
			Code: "SBN-TIPF", Owner: "SEB", FundType: "TIPF",
			FirstQuarter: "2023-03-31",
			Changes:      []float64{0.1, 0.4, 0.6, 0.9},
		},
	)
	path := filepath.Join(base, "snapshot.csv")
	require.NoError(t, exporter.NewSnapshotExporter(base, logger).Export(records, path))
	return base, path
}

func TestRun_ListsFundTypes(t *testing.T) {
	_, snapshot := setup(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-dataset", snapshot}, &out))
	assert.Equal(t, "Fund types:\n  TIPF\n", out.String())
}

func TestRun_PrintsTables(t *testing.T) {
	_, snapshot := setup(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-dataset", snapshot, "-fund-type", "TIPF", "-period", "YTD", "-company", "SEB"}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Cumulative growth")
	assert.Contains(t, text, "Expense ratio")
	assert.Contains(t, text, "Swedbank")
	assert.Contains(t, text, "SEB")
}

func TestRun_ExportWorkbook(t *testing.T) {
	base, snapshot := setup(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-dataset", snapshot, "-fund-type", "TIPF", "-out", "tipf.xlsx"}, &out)
	require.NoError(t, err)

	path := filepath.Join(base, "reports", "tipf.xlsx")
	assert.Contains(t, out.String(), "exported "+path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 5)
}

func TestRun_ExportCSV(t *testing.T) {
	base, snapshot := setup(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-dataset", snapshot, "-fund-type", "TIPF", "-lang", "lt", "-out", "tipf"}, &out)
	require.NoError(t, err)

	for _, id := range []analytics.TableID{
		analytics.TableGrowth, analytics.TableAvgReturn, analytics.TableExtremes,
		analytics.TableParticipants, analytics.TableExpenses,
	} {
		assert.FileExists(t, filepath.Join(base, "reports", "tipf_"+string(id)+".csv"))
	}
}

func TestRun_Errors(t *testing.T) {
	_, snapshot := setup(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unknown fund type", args: []string{"-dataset", snapshot, "-fund-type", "XYZ"}, wantErr: services.ErrUnknownFundType},
		{name: "invalid period", args: []string{"-dataset", snapshot, "-fund-type", "TIPF", "-period", "9"}, wantErr: domain.ErrInvalidPeriod},
		{name: "missing dataset", args: []string{"-dataset", filepath.Join(t.TempDir(), "none.csv")}, wantErr: validation.ErrNotExist},
		{name: "unknown flag", args: []string{"-bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, &bytes.Buffer{})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestTableSheets(t *testing.T) {
	resp := &services.TablesResponse{
		Tables: []services.TableSection{{
			ID:    analytics.TableGrowth,
			Title: "Cumulative growth",
			Columns: []services.ColumnHeader{
				{ID: analytics.ColCompany, Name: "Company"},
				{ID: "growth", Name: "Growth, %"},
			},
			Rows: []analytics.Row{
				{CompanyShort: "SEB", Cells: map[string]string{"growth": "1.50"}},
			},
		}},
	}

	sheets := tableSheets(resp)
	require.Len(t, sheets, 1)
	assert.Equal(t, "growth", sheets[0].ID)
	assert.Equal(t, []string{"Company", "Growth, %"}, sheets[0].Headers)
	assert.Equal(t, [][]string{{"SEB", "1.50"}}, sheets[0].Rows)
}
