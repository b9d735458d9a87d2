package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/zygimantas124/pension-fund-lt/internal/errors"
	"github.com/zygimantas124/pension-fund-lt/internal/middleware"
	"github.com/zygimantas124/pension-fund-lt/internal/services"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// fundQueryParams is the query string shared by the fund endpoints. Controls
// reads the selected owner from manager and falls back to company.
type fundQueryParams struct {
	FundType string `query:"fund_type" validate:"max=64,printable"`
	Period   string `query:"period" validate:"max=8,printable"`
	Company  string `query:"company" validate:"max=64,printable"`
	Manager  string `query:"manager" validate:"max=64,printable"`
	Lang     string `query:"lang" validate:"omitempty,len=2,alpha"`
}

func (p fundQueryParams) query() services.FundQuery {
	return services.FundQuery{
		FundType: p.FundType,
		Period:   p.Period,
		Company:  p.Company,
		Lang:     p.Lang,
	}
}

// FundTypesResponse lists the fund types present in the dataset.
type FundTypesResponse struct {
	FundTypes []domain.FundType `json:"fund_types"`
}

// FundHandler handles fund comparison HTTP requests
type FundHandler struct {
	service      FundServiceInterface
	validator    *middleware.QueryValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewFundHandler creates a new fund handler
func NewFundHandler(service FundServiceInterface, logger *slog.Logger) *FundHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FundHandler{
		service:      service,
		validator:    middleware.NewQueryValidator(logger),
		logger:       logger.With(slog.String("handler", "fund")),
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the fund routes
func (h *FundHandler) RegisterRoutes(r chi.Router) {
	r.Get("/fund-types", h.GetFundTypes)
	r.Get("/controls", h.GetControls)
	r.Get("/date-range", h.GetDateRange)
	r.Get("/tables", h.GetTables)
}

// GetFundTypes handles GET /api/v1/fund-types
func (h *FundHandler) GetFundTypes(w http.ResponseWriter, r *http.Request) {
	fundTypes := h.service.FundTypes(r.Context())
	if fundTypes == nil {
		fundTypes = []domain.FundType{}
	}
	render.JSON(w, r, FundTypesResponse{FundTypes: fundTypes})
}

// GetControls handles GET /api/v1/controls
func (h *FundHandler) GetControls(w http.ResponseWriter, r *http.Request) {
	params, ok := h.bind(w, r)
	if !ok {
		return
	}

	q := params.query()
	if params.Manager != "" {
		q.Company = params.Manager
	}

	resp, err := h.service.Controls(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapFundError(err, q))
		return
	}
	render.JSON(w, r, resp)
}

// GetDateRange handles GET /api/v1/date-range
func (h *FundHandler) GetDateRange(w http.ResponseWriter, r *http.Request) {
	params, ok := h.bind(w, r)
	if !ok {
		return
	}

	q := params.query()
	resp, err := h.service.DateRange(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapFundError(err, q))
		return
	}
	render.JSON(w, r, resp)
}

// GetTables handles GET /api/v1/tables
func (h *FundHandler) GetTables(w http.ResponseWriter, r *http.Request) {
	params, ok := h.bind(w, r)
	if !ok {
		return
	}

	q := params.query()
	resp, err := h.service.Tables(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapFundError(err, q))
		return
	}

	h.logger.DebugContext(r.Context(), "Tables served",
		slog.String("fund_type", q.FundType),
		slog.String("period", q.Period),
		slog.Int("tables", len(resp.Tables)))

	render.JSON(w, r, resp)
}

func (h *FundHandler) bind(w http.ResponseWriter, r *http.Request) (fundQueryParams, bool) {
	var params fundQueryParams
	if err := h.validator.Bind(r, &params); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return params, false
	}
	return params, true
}

// mapFundError turns service sentinels into 400 responses; anything else passes
// through as an internal error.
func mapFundError(err error, q services.FundQuery) error {
	switch {
	case errors.Is(err, services.ErrUnknownFundType):
		return apierrors.UnknownFundType(q.FundType)
	case errors.Is(err, domain.ErrInvalidPeriod):
		return apierrors.InvalidPeriod(q.Period)
	case errors.Is(err, services.ErrDatasetNotLoaded):
		return apierrors.DatasetUnavailable(err)
	default:
		return err
	}
}
