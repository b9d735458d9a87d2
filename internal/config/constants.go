package config

import "time"

// Application constants
const (
	AppName    = "Pension Fund LT"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. PFUND_SERVER_PORT.
	EnvPrefix = "PFUND"
	// ConfigFileEnv names an explicit YAML config file.
	ConfigFileEnv = "PFUND_CONFIG_FILE"

	// File Paths (relative to the base directory)
	DefaultRawDataDir  = "raw_data"
	DefaultDatasetFile = "combined_results.csv"
	DefaultExportDir   = "reports"
	DefaultLogsDir     = "logs"

	// Report workbooks
	ReportExtension = ".xlsx"
	LockFilePrefix  = "~$"

	// Cache Settings
	DefaultCacheTTL             = 10 * time.Minute
	DefaultCacheCleanupInterval = 20 * time.Minute

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// API Endpoints
	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/healthz"
	MetricsEndpoint = "/metrics"
)
