package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved, absolute application paths.
type Paths struct {
	BaseDir     string
	RawDataDir  string
	DatasetFile string
	ExportDir   string
	LogsDir     string
}

// ResolvePaths resolves the configured paths against BaseDir, or against the
// working directory when BaseDir is empty.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:     base,
		RawDataDir:  resolve(c.Paths.RawDataDir),
		DatasetFile: resolve(c.Paths.DatasetFile),
		ExportDir:   resolve(c.Paths.ExportDir),
		LogsDir:     resolve(c.Paths.LogsDir),
	}, nil
}

// EnsureDirectories creates the output directories if they don't exist.
// The raw data directory is input only and is never created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		filepath.Dir(p.DatasetFile),
		p.ExportDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// ExportPath returns the path for an exported table file
func (p *Paths) ExportPath(filename string) string {
	return filepath.Join(p.ExportDir, filename)
}

// LogPath returns the path for a log file
func (p *Paths) LogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved paths.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("raw_data", p.RawDataDir),
			slog.String("export", p.ExportDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("dataset", p.DatasetFile),
			slog.Bool("dataset_exists", FileExists(p.DatasetFile)),
		))
}
