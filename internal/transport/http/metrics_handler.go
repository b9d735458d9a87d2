package http

import (
	"net/http"

	apierrors "github.com/zygimantas124/pension-fund-lt/internal/errors"
)

// MetricsHandler serves the Prometheus exposition of the OpenTelemetry meter.
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler wraps the exporter's handler. A nil handler means metrics are
// disabled and the endpoint answers 404.
func NewMetricsHandler(exposition http.Handler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition}
}

// Enabled reports whether metrics are exported.
func (h *MetricsHandler) Enabled() bool {
	return h.exposition != nil
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		apierrors.NewErrorHandler(nil, false).HandleError(w, r, apierrors.NotFoundError("metrics"))
		return
	}
	h.exposition.ServeHTTP(w, r)
}
