package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zygimantas124/pension-fund-lt/internal/files"
	"github.com/zygimantas124/pension-fund-lt/internal/infrastructure"
)

// File validation errors
var (
	ErrNotExist     = errors.New("path does not exist")
	ErrNotDirectory = errors.New("not a directory")
	ErrIsDirectory  = errors.New("is a directory")
	ErrExtension    = errors.New("unexpected file extension")
	ErrNotWritable  = errors.New("directory is not writable")
)

// FileValidator checks the inputs and outputs of the command-line tools before
// any work starts.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: infrastructure.WithComponent(logger, "file_validator"),
	}
}

// ValidateReportDirectory checks that dir is a directory and returns how many
// report workbooks it holds, searching subdirectories. Zero workbooks is not an
// error.
func (v *FileValidator) ValidateReportDirectory(dir string) (int, error) {
	if err := v.requireDirectory(dir); err != nil {
		return 0, err
	}

	count := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && files.IsReportWorkbook(entry.Name()) {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	if count == 0 {
		v.logger.Warn("No report workbooks found", slog.String("directory", dir))
	} else {
		v.logger.Info("Report directory validated",
			slog.String("directory", dir),
			slog.Int("workbooks", count))
	}
	return count, nil
}

// ValidateOutputPath ensures the parent directory of path exists and is
// writable. path itself may not be a directory.
func (v *FileValidator) ValidateOutputPath(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output %s: %w", path, ErrIsDirectory)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output path validated", slog.String("path", path))
	return nil
}

// ValidateSnapshotFile checks that path is a readable .csv file.
func (v *FileValidator) ValidateSnapshotFile(path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return fmt.Errorf("snapshot %s: %w %q", path, ErrExtension, ext)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("Snapshot does not exist", slog.String("file", path))
		return fmt.Errorf("snapshot %s: %w", path, ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("failed to stat snapshot %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("snapshot %s: %w", path, ErrIsDirectory)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("snapshot %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Snapshot validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

func (v *FileValidator) requireDirectory(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("Input directory does not exist", slog.String("directory", dir))
		return fmt.Errorf("input directory %s: %w", dir, ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory", slog.String("path", dir))
		return fmt.Errorf("input %s: %w", dir, ErrNotDirectory)
	}
	return nil
}
