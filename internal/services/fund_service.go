package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zygimantas124/pension-fund-lt/internal/analytics"
	"github.com/zygimantas124/pension-fund-lt/internal/dataset"
	"github.com/zygimantas124/pension-fund-lt/internal/i18n"
	"github.com/zygimantas124/pension-fund-lt/internal/infrastructure"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

const tracerName = "github.com/zygimantas124/pension-fund-lt/internal/services"

// FundQuery selects a comparison. Empty FundType or Period means the user has not
// chosen yet.
type FundQuery struct {
	FundType string
	Period   string
	Company  string
	Lang     string
}

// Option is a selectable control value with its display label.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ControlsResponse lists the owner and period choices for a fund type.
type ControlsResponse struct {
	Language string   `json:"language"`
	Managers []Option `json:"managers"`
	Manager  string   `json:"manager"`
	Periods  []Option `json:"periods"`
	Period   string   `json:"period"`
}

// DateRangeResponse is the resolved comparison window. All fields are empty when no
// window can be resolved.
type DateRangeResponse struct {
	Label string `json:"label"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ColumnHeader names a table column in the requested language.
type ColumnHeader struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TableSection is one comparison table with its translated headings.
type TableSection struct {
	ID      analytics.TableID     `json:"id"`
	Title   string                `json:"title"`
	Help    string                `json:"help"`
	Columns []ColumnHeader        `json:"columns"`
	Rows    []analytics.Row       `json:"rows"`
	Styles  []analytics.StyleRule `json:"styles"`
}

// TablesResponse holds the five comparison tables of a query. Responses may be
// served from the cache and must not be modified.
type TablesResponse struct {
	FundType  string             `json:"fund_type"`
	Period    string             `json:"period"`
	Company   string             `json:"company"`
	Language  string             `json:"language"`
	DateRange *DateRangeResponse `json:"date_range,omitempty"`
	Tables    []TableSection     `json:"tables"`
}

// FundService answers comparison queries over the loaded dataset.
type FundService struct {
	data    *dataset.Dataset
	catalog *i18n.Catalog
	cache   *cache.Cache
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// FundServiceOption configures a FundService.
type FundServiceOption func(*FundService)

// WithCache memoizes query results for ttl. A zero ttl disables caching.
func WithCache(ttl, cleanupInterval time.Duration) FundServiceOption {
	return func(s *FundService) {
		if ttl <= 0 {
			s.cache = nil
			return
		}
		s.cache = cache.New(ttl, cleanupInterval)
	}
}

// WithTracer sets the tracer used for query spans.
func WithTracer(tracer trace.Tracer) FundServiceOption {
	return func(s *FundService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics records query metrics.
func WithMetrics(metrics *infrastructure.BusinessMetrics) FundServiceOption {
	return func(s *FundService) {
		s.metrics = metrics
	}
}

// NewFundService creates a fund service over an immutable dataset.
func NewFundService(data *dataset.Dataset, catalog *i18n.Catalog, logger *slog.Logger, opts ...FundServiceOption) *FundService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FundService{
		data:    data,
		catalog: catalog,
		tracer:  otel.Tracer(tracerName),
		logger:  logger.With(slog.String("service", "fund")),
	}
	for _, opt := range opts {
		opt(s)
	}

	if data == nil {
		s.logger.Warn("FundService initialized without dataset")
		return s
	}
	s.logger.Info("FundService initialized",
		slog.Int("records", data.Len()),
		slog.Int("fund_types", len(data.FundTypes())),
		slog.Bool("cache_enabled", s.cache != nil))

	return s
}

// FundTypes returns the distinct fund types of the dataset, sorted.
func (s *FundService) FundTypes(ctx context.Context) []domain.FundType {
	if s.data == nil {
		return nil
	}
	return s.data.FundTypes()
}

// Controls returns the owner and period options for a fund type. Without a fund
// type every owner and every period is offered. A requested manager or period that
// is not offered is replaced by the default selection.
func (s *FundService) Controls(ctx context.Context, q FundQuery) (*ControlsResponse, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "FundService.Controls", q)
	defer span.End()

	resp, err := s.controls(q)
	s.finish(ctx, "controls", q, start, false, err)
	return resp, err
}

func (s *FundService) controls(q FundQuery) (*ControlsResponse, error) {
	if s.data == nil {
		return nil, ErrDatasetNotLoaded
	}
	lang := s.language(q.Lang)
	manager := domain.CompanyShort(q.Company)
	current := domain.Period(strings.TrimSpace(q.Period))

	var c analytics.Controls
	if q.FundType == "" {
		c = analytics.DefaultControls(s.data.Owners(), manager, current)
	} else {
		ft := domain.FundType(q.FundType)
		if !s.data.HasFundType(ft) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFundType, q.FundType)
		}
		c = analytics.ResolveControls(s.data.Cohort(ft), manager, current)
	}

	resp := &ControlsResponse{
		Language: lang,
		Managers: make([]Option, 0, len(c.Managers)),
		Manager:  string(c.Manager),
		Periods:  make([]Option, 0, len(c.Periods)),
		Period:   string(c.Period),
	}
	for _, m := range c.Managers {
		resp.Managers = append(resp.Managers, Option{Label: string(m), Value: string(m)})
	}
	for _, p := range c.Periods {
		resp.Periods = append(resp.Periods, Option{Label: s.catalog.T(lang, i18n.PeriodKey(p), nil), Value: string(p)})
	}
	return resp, nil
}

// DateRange resolves the comparison window of a query and formats its label.
// Missing selections and an empty cohort give an empty response.
func (s *FundService) DateRange(ctx context.Context, q FundQuery) (*DateRangeResponse, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "FundService.DateRange", q)
	defer span.End()

	resp, err := s.dateRange(q)
	s.finish(ctx, "date_range", q, start, false, err)
	return resp, err
}

func (s *FundService) dateRange(q FundQuery) (*DateRangeResponse, error) {
	if s.data == nil {
		return nil, ErrDatasetNotLoaded
	}
	if q.FundType == "" || q.Period == "" {
		return &DateRangeResponse{}, nil
	}
	cohort, period, err := s.resolve(q)
	if err != nil {
		return nil, err
	}

	window, err := analytics.ResolveRange(analytics.AnchorRecords(cohort, period, domain.CompanyShort(q.Company)), period)
	if errors.Is(err, analytics.ErrEmptyCohort) {
		return &DateRangeResponse{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.formatRange(s.language(q.Lang), window), nil
}

// Tables computes, ranks and formats the five comparison tables. Missing
// selections give five empty tables; an unknown fund type or period is an error.
func (s *FundService) Tables(ctx context.Context, q FundQuery) (*TablesResponse, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "FundService.Tables", q)
	defer span.End()

	lang := s.language(q.Lang)
	key := strings.Join([]string{"tables", q.FundType, q.Period, q.Company, lang}, "|")

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			s.finish(ctx, "tables", q, start, true, nil)
			return cached.(*TablesResponse), nil
		}
	}

	resp, err := s.tables(q, lang)
	if err == nil && s.cache != nil {
		s.cache.Set(key, resp, cache.DefaultExpiration)
	}
	s.finish(ctx, "tables", q, start, false, err)
	return resp, err
}

func (s *FundService) tables(q FundQuery, lang string) (*TablesResponse, error) {
	if s.data == nil {
		return nil, ErrDatasetNotLoaded
	}
	resp := &TablesResponse{
		FundType: q.FundType,
		Period:   q.Period,
		Company:  q.Company,
		Language: lang,
	}
	if q.FundType == "" || q.Period == "" {
		resp.Tables = s.sections(lang, analytics.EmptyTables())
		return resp, nil
	}

	cohort, period, err := s.resolve(q)
	if err != nil {
		return nil, err
	}

	result, err := analytics.Compute(cohort, analytics.Query{
		FundType: domain.FundType(q.FundType),
		Period:   period,
		Company:  domain.CompanyShort(q.Company),
	})
	if errors.Is(err, analytics.ErrEmptyCohort) {
		resp.Tables = s.sections(lang, analytics.EmptyTables())
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}

	msg := analytics.Messages{
		FundNotExist:   s.catalog.T(lang, i18n.KeyFundNotExist, nil),
		NoDataReported: s.catalog.T(lang, i18n.KeyNoDataReported, nil),
	}
	resp.DateRange = s.formatRange(lang, result.Range)
	resp.Tables = s.sections(lang, analytics.BuildTables(result, domain.CompanyShort(q.Company), msg))

	s.logger.Debug("Tables computed",
		slog.String("fund_type", q.FundType),
		slog.String("period", q.Period),
		slog.Int("funds", len(result.Funds)))

	return resp, nil
}

// resolve validates the fund type and period of a query.
func (s *FundService) resolve(q FundQuery) ([]domain.NormalizedRecord, domain.Period, error) {
	ft := domain.FundType(q.FundType)
	if !s.data.HasFundType(ft) {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownFundType, q.FundType)
	}
	period, err := domain.ParsePeriod(q.Period)
	if err != nil {
		return nil, "", err
	}
	return s.data.Cohort(ft), period, nil
}

func (s *FundService) sections(lang string, tables []analytics.Table) []TableSection {
	out := make([]TableSection, 0, len(tables))
	for _, t := range tables {
		columns := make([]ColumnHeader, 0, len(t.Columns))
		for _, c := range t.Columns {
			columns = append(columns, ColumnHeader{ID: c, Name: s.catalog.T(lang, i18n.ColumnKey(c), nil)})
		}
		out = append(out, TableSection{
			ID:      t.ID,
			Title:   s.catalog.T(lang, i18n.SectionTitleKey(string(t.ID)), nil),
			Help:    s.catalog.T(lang, i18n.SectionHelpKey(string(t.ID)), nil),
			Columns: columns,
			Rows:    t.Rows,
			Styles:  t.Styles,
		})
	}
	return out
}

func (s *FundService) formatRange(lang string, r analytics.DateRange) *DateRangeResponse {
	start := r.Start.Format(domain.DateLayout)
	end := r.End.Format(domain.DateLayout)
	return &DateRangeResponse{
		Label: s.catalog.T(lang, i18n.KeyLabelDateRange, map[string]string{"start": start, "end": end}),
		Start: start,
		End:   end,
	}
}

// language maps an unsupported language to the default one.
func (s *FundService) language(lang string) string {
	if s.catalog.Supports(lang) {
		return lang
	}
	return i18n.DefaultLanguage
}

func (s *FundService) startSpan(ctx context.Context, name string, q FundQuery) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("fund.type", q.FundType),
		attribute.String("fund.period", q.Period),
		attribute.String("fund.company", q.Company),
		attribute.String("lang", q.Lang),
	))
}

func (s *FundService) finish(ctx context.Context, query string, q FundQuery, start time.Time, cacheHit bool, err error) {
	duration := time.Since(start)
	infrastructure.RecordQueryMetrics(ctx, s.metrics, query, q.FundType, duration, cacheHit, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Fund query failed",
			slog.String("query", query),
			slog.String("fund_type", q.FundType),
			slog.String("period", q.Period),
			slog.String("error", err.Error()))
		return
	}

	s.logger.DebugContext(ctx, "Fund query served",
		slog.String("query", query),
		slog.String("fund_type", q.FundType),
		slog.Bool("cache_hit", cacheHit),
		slog.Duration("duration", duration))
}
