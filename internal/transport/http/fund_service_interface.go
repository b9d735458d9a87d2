package http

import (
	"context"

	"github.com/zygimantas124/pension-fund-lt/internal/services"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// FundServiceInterface defines the fund comparison queries served over HTTP
type FundServiceInterface interface {
	FundTypes(ctx context.Context) []domain.FundType
	Controls(ctx context.Context, q services.FundQuery) (*services.ControlsResponse, error)
	DateRange(ctx context.Context, q services.FundQuery) (*services.DateRangeResponse, error)
	Tables(ctx context.Context, q services.FundQuery) (*services.TablesResponse, error)
}
