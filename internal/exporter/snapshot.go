package exporter

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// SnapshotExporter writes the flat dataset snapshot consumed by the query side.
type SnapshotExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewSnapshotExporter creates a snapshot exporter.
func NewSnapshotExporter(baseDir string, logger *slog.Logger) *SnapshotExporter {
	return &SnapshotExporter{
		csvWriter: NewCSVWriter(baseDir),
		logger:    logger,
	}
}

// Export writes records to outputPath ordered by (fund_code, report_date). Missing
// values are written as empty cells. The input slice is not reordered.
func (e *SnapshotExporter) Export(records []domain.NormalizedRecord, outputPath string) error {
	ordered := make([]domain.NormalizedRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].FundCode != ordered[j].FundCode {
			return ordered[i].FundCode < ordered[j].FundCode
		}
		return ordered[i].ReportDate.Before(ordered[j].ReportDate)
	})

	// no BOM: the snapshot is machine-read
	stream, err := e.csvWriter.CreateStreamWriter(outputPath, WriteOptions{
		Headers: domain.SnapshotColumns,
	})
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	for _, record := range ordered {
		if err := stream.WriteRecord(SnapshotRow(record)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write snapshot record %s %s: %w",
				record.FundCode, record.ReportDate.Format(domain.DateLayout), err)
		}
	}
	if err := stream.Close(); err != nil {
		return err
	}

	e.logger.Info("dataset snapshot written",
		slog.String("path", stream.Path()),
		slog.Int("records", len(ordered)))
	return nil
}

// SnapshotRow converts a record to its snapshot cells, in domain.SnapshotColumns order.
func SnapshotRow(record domain.NormalizedRecord) []string {
	return []string{
		record.FundCode,
		record.ReportDate.Format(domain.DateLayout),
		string(record.CompanyShort),
		string(record.FundType),
		record.NumberOfParticipants.String(),
		record.UnitValueChangeYTDPct.String(),
		record.BarPct.String(),
		record.RelativeChange.String(),
	}
}
