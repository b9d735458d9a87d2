package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TableSheet is one formatted comparison table ready for export.
type TableSheet struct {
	ID      string
	Title   string
	Headers []string
	Rows    [][]string
}

// TableExporter writes comparison tables either as one CSV per table or as a
// workbook with one sheet per table.
type TableExporter struct {
	csvWriter *CSVWriter
	baseDir   string
	logger    *slog.Logger
}

// NewTableExporter creates a table exporter resolving relative paths against baseDir.
func NewTableExporter(baseDir string, logger *slog.Logger) *TableExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableExporter{
		csvWriter: NewCSVWriter(baseDir),
		baseDir:   baseDir,
		logger:    logger,
	}
}

// Export picks the format from the output extension: ".xlsx" writes a workbook,
// anything else is treated as a CSV path prefix. It returns the written paths.
func (e *TableExporter) Export(sheets []TableSheet, output string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(output), ".xlsx") {
		path, err := e.ExportWorkbook(sheets, output)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return e.ExportCSV(sheets, strings.TrimSuffix(output, filepath.Ext(output)))
}

// ExportCSV writes <prefix>_<id>.csv for each sheet with a UTF-8 BOM so
// spreadsheet applications pick up Lithuanian characters.
func (e *TableExporter) ExportCSV(sheets []TableSheet, prefix string) ([]string, error) {
	paths := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		name := fmt.Sprintf("%s_%s.csv", prefix, sheet.ID)
		if err := e.csvWriter.WriteCSV(name, WriteOptions{
			Headers:   sheet.Headers,
			Records:   sheet.Rows,
			BOMPrefix: true,
		}); err != nil {
			return paths, fmt.Errorf("failed to export table %s: %w", sheet.ID, err)
		}
		paths = append(paths, e.csvWriter.resolvePath(name))
	}

	e.logger.Info("comparison tables exported",
		slog.String("format", "csv"),
		slog.Int("tables", len(paths)))
	return paths, nil
}

// ExportWorkbook writes every sheet into one workbook. Sheet names are the
// table titles, trimmed to the 31 characters a worksheet name allows.
func (e *TableExporter) ExportWorkbook(sheets []TableSheet, path string) (string, error) {
	fullPath := e.csvWriter.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		name := uniqueSheetName(sheet, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return "", fmt.Errorf("failed to name sheet %s: %w", sheet.ID, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to add sheet %s: %w", sheet.ID, err)
		}

		if err := writeSheetRow(f, name, 1, sheet.Headers); err != nil {
			return "", err
		}
		for r, row := range sheet.Rows {
			if err := writeSheetRow(f, name, r+2, row); err != nil {
				return "", err
			}
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("comparison tables exported",
		slog.String("format", "xlsx"),
		slog.String("path", fullPath),
		slog.Int("tables", len(sheets)))
	return fullPath, nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

var invalidSheetChars = regexp.MustCompile(`[\[\]:*?/\\]`)

func uniqueSheetName(sheet TableSheet, used map[string]bool) string {
	base := sheet.Title
	if base == "" {
		base = sheet.ID
	}
	base = invalidSheetChars.ReplaceAllString(base, " ")
	if r := []rune(base); len(r) > 31 {
		base = string(r[:31])
	}

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
