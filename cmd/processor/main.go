// Command processor ingests quarterly pension fund report workbooks and writes
// the combined dataset snapshot read by the web server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/zygimantas124/pension-fund-lt/internal/config"
	"github.com/zygimantas124/pension-fund-lt/internal/dataprocessing"
	"github.com/zygimantas124/pension-fund-lt/internal/exporter"
	"github.com/zygimantas124/pension-fund-lt/internal/files"
	"github.com/zygimantas124/pension-fund-lt/internal/infrastructure"
	"github.com/zygimantas124/pension-fund-lt/internal/validation"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts"
)

const binaryName = "pension-processor"

// errNoRecords keeps an empty run from replacing an existing snapshot.
var errNoRecords = errors.New("no records ingested")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("Processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(binaryName, flag.ContinueOnError)
	inDir := fs.String("in", "", "input directory of .xlsx reports (defaults to the configured raw data directory)")
	outFile := fs.String("out", "", "snapshot CSV to write (defaults to the configured dataset file)")
	configFile := fs.String("config", "", "optional YAML config file")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString(binaryName))
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}

	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
	}
	defer infrastructure.CloseLogFile()

	// one trace ID per run ties the per-file log lines together
	ctx = infrastructure.EnsureTraceID(ctx)
	logger := infrastructure.LoggerFromContext(ctx).With(slog.String("cmd", binaryName))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if *inDir == "" {
		*inDir = paths.RawDataDir
	}
	if *outFile == "" {
		*outFile = paths.DatasetFile
	}
	if !filepath.IsAbs(*inDir) {
		*inDir = filepath.Join(paths.BaseDir, *inDir)
	}
	if !filepath.IsAbs(*outFile) {
		*outFile = filepath.Join(paths.BaseDir, *outFile)
	}

	validator := validation.NewFileValidator(logger)
	workbooks, err := validator.ValidateReportDirectory(*inDir)
	if err != nil {
		return err
	}
	if workbooks == 0 {
		return fmt.Errorf("%w: no report workbooks in %s", errNoRecords, *inDir)
	}
	if err := validator.ValidateOutputPath(*outFile); err != nil {
		return err
	}

	logger.Info("Starting report processing",
		slog.String("version", contracts.Version),
		slog.String("input_dir", *inDir),
		slog.Int("workbooks", workbooks),
		slog.String("output", *outFile))

	start := time.Now()
	processor := dataprocessing.NewBatchProcessor(files.NewDiscovery(paths.BaseDir), logger)
	result, err := processor.Run(ctx, *inDir)
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return fmt.Errorf("%w from %s (%d files, %d failed)",
			errNoRecords, *inDir, len(result.Files), len(result.FailedFiles()))
	}

	snapshot := exporter.NewSnapshotExporter(paths.BaseDir, logger)
	if err := snapshot.Export(result.Records, *outFile); err != nil {
		return err
	}

	failed := result.FailedFiles()
	for _, f := range failed {
		fmt.Fprintf(stdout, "skipped %s: %v\n", f.Path, f.Err)
	}
	fmt.Fprintf(stdout, "%d records from %d of %d files written to %s\n",
		len(result.Records), len(result.Files)-len(failed), len(result.Files), *outFile)

	logger.Info("Report processing complete",
		slog.Int("records", len(result.Records)),
		slog.Int("files", len(result.Files)),
		slog.Int("failed_files", len(failed)),
		slog.Int("duplicates", result.Duplicates),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
