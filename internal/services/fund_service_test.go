package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zygimantas124/pension-fund-lt/internal/analytics"
	"github.com/zygimantas124/pension-fund-lt/internal/dataset"
	"github.com/zygimantas124/pension-fund-lt/internal/i18n"
	"github.com/zygimantas124/pension-fund-lt/internal/infrastructure"
	"github.com/zygimantas124/pension-fund-lt/internal/shared/testutil"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// testDataset: a 1989-1995 cohort where SEB has five years of history, Allianz half
// a year and Luminor stops a year before the latest report, plus one TIPF fund.
func testDataset() *dataset.Dataset {
	return dataset.New(testutil.Histories(
		testutil.FundHistory{
			Code: "SBN-1-89/95", Owner: "SEB", FundType: "1989-1995",
			FirstQuarter: "2019-06-30",
			Changes:      append(repeat(0.5, 17), 2, -1, 3, 1),
		},
		testutil.FundHistory{
			Code: "AVI-1-89/95", Owner: "Allianz", FundType: "1989-1995",
			FirstQuarter: "2023-12-31",
			Changes:      []float64{1, 1, 1},
		},
		testutil.FundHistory{
			Code: "LMN-1-89/95", Owner: "Luminor", FundType: "1989-1995",
			FirstQuarter: "2018-06-30",
			Changes:      repeat(1, 21),
		},
		testutil.FundHistory{
			Code: "SWD-TIPF", Owner: "Swedbank", FundType: "TIPF",
			FirstQuarter: "2023-03-31",
			Changes:      []float64{0.2, 0.3},
		},
	), "test.csv")
}

func newTestFundService(t *testing.T, opts ...FundServiceOption) (*FundService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	return NewFundService(testDataset(), i18n.MustLoad(), logger, opts...), handler
}

func sectionByID(t *testing.T, resp *TablesResponse, id analytics.TableID) TableSection {
	t.Helper()
	for _, s := range resp.Tables {
		if s.ID == id {
			return s
		}
	}
	require.Failf(t, "section not found", "%s", id)
	return TableSection{}
}

func optionValues(options []Option) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Value
	}
	return out
}

func TestFundService_FundTypes(t *testing.T) {
	svc, handler := newTestFundService(t)
	assert.Equal(t, []domain.FundType{"1989-1995", "TIPF"}, svc.FundTypes(context.Background()))
	testutil.AssertLogAttr(t, handler, "service", "fund")
}

func TestFundService_Tables(t *testing.T) {
	svc, _ := newTestFundService(t)

	resp, err := svc.Tables(context.Background(), FundQuery{FundType: "1989-1995", Period: "YTD", Lang: "en"})
	require.NoError(t, err)

	require.Len(t, resp.Tables, len(analytics.TableIDs))
	for i, id := range analytics.TableIDs {
		assert.Equal(t, id, resp.Tables[i].ID)
	}
	require.NotNil(t, resp.DateRange)
	assert.Equal(t, "From 2024-01-01 to 2024-06-30", resp.DateRange.Label)

	growth := sectionByID(t, resp, analytics.TableGrowth)
	assert.Equal(t, "Cumulative growth", growth.Title)
	assert.NotEmpty(t, growth.Help)
	assert.Equal(t, []ColumnHeader{
		{ID: analytics.ColCompany, Name: "Fund"},
		{ID: analytics.ColCumulativeGrowth, Name: "Cumulative growth, %"},
	}, growth.Columns)

	require.Len(t, growth.Rows, 3)
	assert.Equal(t, domain.CompanyShort("SEB"), growth.Rows[0].CompanyShort)
	assert.Equal(t, "+4.03", growth.Rows[0].Cells[analytics.ColCumulativeGrowth])
	assert.Equal(t, "+2.01", growth.Rows[1].Cells[analytics.ColCumulativeGrowth])
	assert.Equal(t, "Fund did not exist", growth.Rows[2].Cells[analytics.ColCumulativeGrowth])

	// no ratio disclosed by the funds with data; Luminor has no records this year
	expenses := sectionByID(t, resp, analytics.TableExpenses)
	require.Len(t, expenses.Rows, 3)
	assert.Equal(t, "No data reported", expenses.Rows[0].Cells[analytics.ColExpenseRatio])
	assert.Equal(t, "No data reported", expenses.Rows[1].Cells[analytics.ColExpenseRatio])
	assert.Equal(t, domain.CompanyShort("Luminor"), expenses.Rows[2].CompanyShort)
	assert.Equal(t, "Fund did not exist", expenses.Rows[2].Cells[analytics.ColExpenseRatio])
}

func TestFundService_TablesTranslated(t *testing.T) {
	svc, _ := newTestFundService(t)

	resp, err := svc.Tables(context.Background(), FundQuery{FundType: "1989-1995", Period: "1", Lang: "lt"})
	require.NoError(t, err)

	assert.Equal(t, "lt", resp.Language)
	assert.Equal(t, "Nuo 2023-09-30 iki 2024-06-30", resp.DateRange.Label)

	growth := sectionByID(t, resp, analytics.TableGrowth)
	assert.Equal(t, "Bendras augimas", growth.Title)
	assert.Equal(t, "Fondas", growth.Columns[0].Name)
	assert.Equal(t, "Fondas neegzistavo", growth.Rows[1].Cells[analytics.ColCumulativeGrowth])
}

func TestFundService_TablesUnknownLanguageFallsBack(t *testing.T) {
	svc, _ := newTestFundService(t)

	resp, err := svc.Tables(context.Background(), FundQuery{FundType: "1989-1995", Period: "YTD", Lang: "de"})
	require.NoError(t, err)
	assert.Equal(t, i18n.DefaultLanguage, resp.Language)
	assert.Equal(t, "Cumulative growth", resp.Tables[0].Title)
}

func TestFundService_TablesDegenerateAndInvalid(t *testing.T) {
	svc, _ := newTestFundService(t)

	tests := []struct {
		name    string
		query   FundQuery
		wantErr error
	}{
		{name: "no fund type", query: FundQuery{Period: "YTD"}},
		{name: "no period", query: FundQuery{FundType: "1989-1995"}},
		{name: "nothing selected", query: FundQuery{}},
		{name: "unknown fund type", query: FundQuery{FundType: "2050-2056", Period: "YTD"}, wantErr: ErrUnknownFundType},
		{name: "invalid period", query: FundQuery{FundType: "1989-1995", Period: "7"}, wantErr: domain.ErrInvalidPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Tables(context.Background(), tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, resp.DateRange)
			require.Len(t, resp.Tables, len(analytics.TableIDs))
			for _, section := range resp.Tables {
				assert.Empty(t, section.Rows)
				assert.NotEmpty(t, section.Columns)
				assert.NotEmpty(t, section.Title)
			}
		})
	}
}

func TestFundService_TablesCache(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := infrastructure.CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	svc, _ := newTestFundService(t, WithCache(time.Minute, time.Minute), WithMetrics(metrics))
	ctx := context.Background()
	q := FundQuery{FundType: "1989-1995", Period: "ALL", Company: "SEB", Lang: "en"}

	first, err := svc.Tables(ctx, q)
	require.NoError(t, err)
	second, err := svc.Tables(ctx, q)
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := svc.Tables(ctx, FundQuery{FundType: "1989-1995", Period: "ALL", Company: "SEB", Lang: "lt"})
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	_, err = svc.Tables(ctx, FundQuery{FundType: "unknown", Period: "ALL"})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(4), sums["fund_queries_total"])
	assert.Equal(t, int64(1), sums["fund_query_cache_hits_total"])
	assert.Equal(t, int64(2), sums["fund_query_cache_misses_total"])
	assert.Equal(t, int64(1), sums["fund_query_errors_total"])
}

func TestFundService_CacheDisabled(t *testing.T) {
	svc, _ := newTestFundService(t, WithCache(0, time.Minute))
	q := FundQuery{FundType: "TIPF", Period: "YTD"}

	first, err := svc.Tables(context.Background(), q)
	require.NoError(t, err)
	second, err := svc.Tables(context.Background(), q)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
}

func TestFundService_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	svc, handler := newTestFundService(t, WithTracer(tp.Tracer("test")))

	_, err := svc.Tables(context.Background(), FundQuery{FundType: "TIPF", Period: "YTD"})
	require.NoError(t, err)
	_, err = svc.DateRange(context.Background(), FundQuery{FundType: "TIPF", Period: "9"})
	require.Error(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "FundService.Tables", ended[0].Name())
	assert.NotEqual(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "FundService.DateRange", ended[1].Name())
	assert.Equal(t, codes.Error, ended[1].Status().Code)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Fund query failed")
}

func TestFundService_Controls(t *testing.T) {
	svc, _ := newTestFundService(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		query       FundQuery
		wantManager string
		wantPeriods []string
		wantPeriod  string
		wantOwners  []string
	}{
		{
			name:        "no fund type offers everything",
			query:       FundQuery{Company: "Swedbank", Period: "3"},
			wantOwners:  []string{"Allianz", "Luminor", "SEB", "Swedbank"},
			wantManager: "Swedbank",
			wantPeriods: []string{"YTD", "1", "2", "3", "4", "5", "ALL"},
			wantPeriod:  "3",
		},
		{
			name:        "long history",
			query:       FundQuery{FundType: "1989-1995", Company: "SEB", Period: "5"},
			wantOwners:  []string{"Allianz", "Luminor", "SEB"},
			wantManager: "SEB",
			wantPeriods: []string{"YTD", "1", "2", "3", "4", "5", "ALL"},
			wantPeriod:  "5",
		},
		{
			name:        "short history resets the period",
			query:       FundQuery{FundType: "1989-1995", Company: "Allianz", Period: "5"},
			wantOwners:  []string{"Allianz", "Luminor", "SEB"},
			wantManager: "Allianz",
			wantPeriods: []string{"YTD", "ALL"},
			wantPeriod:  "YTD",
		},
		{
			name:        "unknown manager falls back to the first",
			query:       FundQuery{FundType: "1989-1995", Company: "Swedbank", Period: "ALL"},
			wantOwners:  []string{"Allianz", "Luminor", "SEB"},
			wantManager: "Allianz",
			wantPeriods: []string{"YTD", "ALL"},
			wantPeriod:  "ALL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Controls(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwners, optionValues(resp.Managers))
			assert.Equal(t, tt.wantManager, resp.Manager)
			assert.Equal(t, tt.wantPeriods, optionValues(resp.Periods))
			assert.Equal(t, tt.wantPeriod, resp.Period)
		})
	}

	_, err := svc.Controls(ctx, FundQuery{FundType: "2050-2056"})
	assert.ErrorIs(t, err, ErrUnknownFundType)
}

func TestFundService_ControlsLabels(t *testing.T) {
	svc, _ := newTestFundService(t)

	resp, err := svc.Controls(context.Background(), FundQuery{Lang: "lt"})
	require.NoError(t, err)
	require.Len(t, resp.Periods, 7)
	assert.Equal(t, Option{Label: "1 metai", Value: "1"}, resp.Periods[1])

	resp, err = svc.Controls(context.Background(), FundQuery{})
	require.NoError(t, err)
	assert.Equal(t, Option{Label: "Since inception", Value: "ALL"}, resp.Periods[6])
	assert.Equal(t, "YTD", resp.Period)
}

func TestFundService_DateRange(t *testing.T) {
	svc, _ := newTestFundService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		query   FundQuery
		want    DateRangeResponse
		wantErr error
	}{
		{
			name:  "degenerate input",
			query: FundQuery{FundType: "1989-1995"},
			want:  DateRangeResponse{},
		},
		{
			name:  "ytd",
			query: FundQuery{FundType: "1989-1995", Period: "YTD"},
			want:  DateRangeResponse{Label: "From 2024-01-01 to 2024-06-30", Start: "2024-01-01", End: "2024-06-30"},
		},
		{
			name:  "all anchored to the selected owner",
			query: FundQuery{FundType: "1989-1995", Period: "ALL", Company: "Allianz"},
			want:  DateRangeResponse{Label: "From 2023-12-31 to 2024-06-30", Start: "2023-12-31", End: "2024-06-30"},
		},
		{
			name:  "all over the cohort",
			query: FundQuery{FundType: "1989-1995", Period: "ALL"},
			want:  DateRangeResponse{Label: "From 2018-06-30 to 2024-06-30", Start: "2018-06-30", End: "2024-06-30"},
		},
		{
			name:  "trailing years in lithuanian",
			query: FundQuery{FundType: "1989-1995", Period: "1", Lang: "lt"},
			want:  DateRangeResponse{Label: "Nuo 2023-09-30 iki 2024-06-30", Start: "2023-09-30", End: "2024-06-30"},
		},
		{
			name:    "unknown fund type",
			query:   FundQuery{FundType: "X", Period: "YTD"},
			wantErr: ErrUnknownFundType,
		},
		{
			name:    "invalid period",
			query:   FundQuery{FundType: "TIPF", Period: "ytd"},
			wantErr: domain.ErrInvalidPeriod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.DateRange(ctx, tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *resp)
		})
	}
}

func TestFundService_WithoutDataset(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := NewFundService(nil, i18n.MustLoad(), logger)
	ctx := context.Background()
	q := FundQuery{FundType: "TIPF", Period: "YTD"}

	assert.Empty(t, svc.FundTypes(ctx))

	_, err := svc.Controls(ctx, q)
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)

	_, err = svc.DateRange(ctx, q)
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)

	_, err = svc.Tables(ctx, q)
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
}

func BenchmarkFundService_Tables(b *testing.B) {
	q := FundQuery{FundType: "1989-1995", Period: "5", Company: "SEB", Lang: "lt"}
	cases := []struct {
		name string
		opts []FundServiceOption
	}{
		{name: "uncached"},
		{name: "cached", opts: []FundServiceOption{WithCache(time.Minute, time.Minute)}},
	}

	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			svc := NewFundService(testDataset(), i18n.MustLoad(), slog.New(slog.NewTextHandler(io.Discard, nil)), tc.opts...)
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := svc.Tables(ctx, q); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
