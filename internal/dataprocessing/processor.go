package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zygimantas124/pension-fund-lt/internal/files"
	"github.com/zygimantas124/pension-fund-lt/internal/infrastructure"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// SnapshotReader loads one report workbook.
type SnapshotReader func(path string) (*domain.RawReportSnapshot, error)

// BatchProcessor runs the ingestion pipeline: discover workbooks, normalize each,
// concatenate, then derive relative changes over the complete history.
type BatchProcessor struct {
	discovery *files.Discovery
	read      SnapshotReader
	logger    *slog.Logger
}

// NewBatchProcessor creates a processor that reads workbooks with excelize.
func NewBatchProcessor(discovery *files.Discovery, logger *slog.Logger) *BatchProcessor {
	return &BatchProcessor{
		discovery: discovery,
		read:      ReadSnapshot,
		logger:    infrastructure.WithComponent(logger, "batch_processor"),
	}
}

// Run ingests every workbook under inDir. A file that fails to open or to coerce is
// logged and skipped as a whole; the run itself only fails on discovery errors or
// cancellation.
func (p *BatchProcessor) Run(ctx context.Context, inDir string) (*BatchResult, error) {
	reports, err := p.discovery.FindReportFiles(inDir)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "report files discovered",
		slog.String("input_dir", inDir),
		slog.Int("count", len(reports)))

	result := &BatchResult{}
	var combined []domain.NormalizedRecord

	for i, report := range reports {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ingestion cancelled: %w", err)
		}

		records, fileResult := p.ingestFile(report.Path)
		result.Files = append(result.Files, fileResult)
		if fileResult.Err != nil {
			p.logger.ErrorContext(ctx, "skipping report file",
				slog.String("file", report.Path),
				slog.String("error", fileResult.Err.Error()))
			continue
		}

		p.logger.InfoContext(ctx, "report file processed",
			slog.Int("current", i+1),
			slog.Int("total", len(reports)),
			slog.String("file", report.Path),
			slog.String("report_date", fileResult.ReportDate),
			slog.Int("records", fileResult.Records))

		combined = append(combined, records...)
	}

	combined, result.Duplicates = dedupe(combined)
	if result.Duplicates > 0 {
		p.logger.WarnContext(ctx, "duplicate fund/date records replaced by later files",
			slog.Int("count", result.Duplicates))
	}

	result.Records = EstimateRelativeChange(combined)

	p.logger.InfoContext(ctx, "ingestion complete",
		slog.Int("records", len(result.Records)),
		slog.Int("files", len(result.Files)),
		slog.Int("failed_files", len(result.FailedFiles())))

	return result, nil
}

func (p *BatchProcessor) ingestFile(path string) ([]domain.NormalizedRecord, FileResult) {
	fr := FileResult{Path: path}

	snapshot, err := p.read(path)
	if err != nil {
		fr.Err = err
		return nil, fr
	}
	fr.ReportDate = snapshot.ReportDate.Format(domain.DateLayout)

	records, err := Normalize(snapshot)
	if err != nil {
		fr.Err = err
		return nil, fr
	}
	fr.Records = len(records)
	return records, fr
}

// dedupe keeps the last record seen for each (fund_code, report_date) pair, in
// first-seen position, and returns how many records were dropped.
func dedupe(records []domain.NormalizedRecord) ([]domain.NormalizedRecord, int) {
	type key struct {
		code string
		date string
	}
	index := make(map[key]int, len(records))
	out := make([]domain.NormalizedRecord, 0, len(records))
	dropped := 0

	for _, r := range records {
		k := key{code: r.FundCode, date: r.ReportDate.Format(domain.DateLayout)}
		if pos, seen := index[k]; seen {
			out[pos] = r
			dropped++
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out, dropped
}
