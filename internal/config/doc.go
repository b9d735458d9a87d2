// Package config provides centralized configuration management for the pension fund
// dashboard. It loads configuration from multiple sources, validates it, and resolves
// the file system paths used by the processor, the web server and the report CLI.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PFUND_* for namespacing:
//
//	PFUND_SERVER_PORT=8080
//	PFUND_LOGGING_LEVEL=debug
//	PFUND_PATHS_DATASET_FILE=/srv/data/combined_results.csv
//	PFUND_CACHE_TTL=5m
//	PFUND_OBSERVABILITY_TRACING_EXPORTER=stdout
//
// The YAML file is taken from PFUND_CONFIG_FILE, or the first of config.yaml and
// configs/config.yaml found in the working directory.
//
// # Path Management
//
// Relative paths are resolved against Paths.BaseDir (the working directory when
// unset):
//
//	paths, err := cfg.ResolvePaths()
//	datasetFile := paths.DatasetFile
//	exportPath := paths.ExportPath("growth.csv")
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, Default() returns a configuration that needs no environment.
package config
