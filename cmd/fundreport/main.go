// Command fundreport prints the comparison tables for one fund type and period
// and optionally exports them as CSV files or an Excel workbook.
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
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/zygimantas124/pension-fund-lt/internal/config"
	"github.com/zygimantas124/pension-fund-lt/internal/dataset"
	"github.com/zygimantas124/pension-fund-lt/internal/exporter"
	"github.com/zygimantas124/pension-fund-lt/internal/i18n"
	"github.com/zygimantas124/pension-fund-lt/internal/infrastructure"
	"github.com/zygimantas124/pension-fund-lt/internal/services"
	"github.com/zygimantas124/pension-fund-lt/internal/validation"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts"
)

const binaryName = "pension-fundreport"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("Report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(binaryName, flag.ContinueOnError)
	fundType := fs.String("fund-type", "", "fund type to compare, e.g. 1989-1995 or TIPF (empty lists the fund types)")
	period := fs.String("period", "YTD", "comparison period: YTD, ALL or 1-5 trailing years")
	company := fs.String("company", "", "fund manager to highlight")
	lang := fs.String("lang", i18n.DefaultLanguage, "output language: en or lt")
	datasetFile := fs.String("dataset", "", "snapshot CSV to read (defaults to the configured dataset file)")
	output := fs.String("out", "", "export path: .xlsx writes a workbook, anything else a CSV prefix")
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

	ctx = infrastructure.EnsureTraceID(ctx)
	logger := infrastructure.LoggerFromContext(ctx).With(slog.String("cmd", binaryName))
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if *datasetFile == "" {
		*datasetFile = paths.DatasetFile
	}

	if err := validation.NewFileValidator(logger).ValidateSnapshotFile(*datasetFile); err != nil {
		return err
	}
	data, err := dataset.Load(*datasetFile, logger)
	if err != nil {
		return err
	}
	catalog, err := i18n.Load()
	if err != nil {
		return err
	}
	svc := services.NewFundService(data, catalog, logger)

	if *fundType == "" {
		fmt.Fprintln(stdout, "Fund types:")
		for _, ft := range svc.FundTypes(ctx) {
			fmt.Fprintf(stdout, "  %s\n", ft)
		}
		return nil
	}

	resp, err := svc.Tables(ctx, services.FundQuery{
		FundType: *fundType,
		Period:   *period,
		Company:  *company,
		Lang:     *lang,
	})
	if err != nil {
		return err
	}

	if err := printTables(stdout, resp); err != nil {
		return err
	}

	if *output == "" {
		return nil
	}
	written, err := exporter.NewTableExporter(paths.ExportDir, logger).Export(tableSheets(resp), *output)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintf(stdout, "exported %s\n", path)
	}
	return nil
}

// printTables writes each table as aligned, tab-separated text.
func printTables(w io.Writer, resp *services.TablesResponse) error {
	if resp.DateRange != nil && resp.DateRange.Label != "" {
		fmt.Fprintln(w, resp.DateRange.Label)
	}

	for _, section := range resp.Tables {
		fmt.Fprintf(w, "\n%s\n", section.Title)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		headers := make([]string, len(section.Columns))
		for i, c := range section.Columns {
			headers[i] = c.Name
		}
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
		for _, row := range section.Rows {
			cells := make([]string, len(section.Columns))
			for i, c := range section.Columns {
				cells[i] = row.Value(c.ID)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// tableSheets converts the translated tables into exportable sheets.
func tableSheets(resp *services.TablesResponse) []exporter.TableSheet {
	sheets := make([]exporter.TableSheet, 0, len(resp.Tables))
	for _, section := range resp.Tables {
		sheet := exporter.TableSheet{
			ID:      string(section.ID),
			Title:   section.Title,
			Headers: make([]string, len(section.Columns)),
			Rows:    make([][]string, 0, len(section.Rows)),
		}
		for i, c := range section.Columns {
			sheet.Headers[i] = c.Name
		}
		for _, row := range section.Rows {
			cells := make([]string, len(section.Columns))
			for i, c := range section.Columns {
				cells[i] = row.Value(c.ID)
			}
			sheet.Rows = append(sheet.Rows, cells)
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
