package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/zygimantas124/pension-fund-lt/internal/dataset"
	"github.com/zygimantas124/pension-fund-lt/internal/infrastructure"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	gitCommit string
	data      *dataset.Dataset
	system    *infrastructure.SystemMetricsCollector
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Dataset   *DatasetStatus         `json:"dataset,omitempty"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// DatasetStatus describes the loaded dataset.
type DatasetStatus struct {
	Records      int       `json:"records"`
	FundTypes    int       `json:"fund_types"`
	Owners       int       `json:"owners"`
	Source       string    `json:"source"`
	LoadedAt     time.Time `json:"loaded_at"`
	LatestReport string    `json:"latest_report,omitempty"`
}

// NewHealthService creates a new health service. system may be nil.
func NewHealthService(version, buildTime, gitCommit string, data *dataset.Dataset, system *infrastructure.SystemMetricsCollector, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("git_commit", gitCommit))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		data:      data,
		system:    system,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status with the dataset summary.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Dataset:   hs.DatasetStatus(),
	}
	if status.Dataset == nil {
		status.Status = "degraded"
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status))

	return status
}

// ReadinessCheck reports ready once a non-empty dataset is loaded.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"dataset": hs.checkDatasetHealth(),
		},
	}

	for _, service := range status.Services {
		if service.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status with runtime statistics.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	runtimeInfo := map[string]interface{}{
		"uptime":     time.Since(hs.startTime).Seconds(),
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}
	if hs.system != nil {
		stats := hs.system.GetCurrentStats(ctx)
		runtimeInfo["memory_usage_bytes"] = stats.MemoryUsage
		runtimeInfo["gc_count"] = stats.GCCount
	}

	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   runtimeInfo,
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "" {
		result["git_commit"] = hs.gitCommit
	}

	return result
}

// DatasetStatus summarizes the loaded dataset, or returns nil when none is loaded.
func (hs *HealthService) DatasetStatus() *DatasetStatus {
	if hs.data == nil {
		return nil
	}
	status := &DatasetStatus{
		Records:   hs.data.Len(),
		FundTypes: len(hs.data.FundTypes()),
		Owners:    len(hs.data.Owners()),
		Source:    hs.data.Source(),
		LoadedAt:  hs.data.LoadedAt(),
	}
	if latest := hs.data.LatestReport(); !latest.IsZero() {
		status.LatestReport = latest.Format(domain.DateLayout)
	}
	return status
}

// checkDatasetHealth checks that the dataset is loaded and has records
func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.data == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: ErrDatasetNotLoaded.Error(),
		}
	}
	if hs.data.Len() == 0 {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "dataset has no records",
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: "Dataset is loaded",
	}
}
