package dataprocessing

import (
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// FileResult describes the outcome of ingesting one workbook.
type FileResult struct {
	Path       string
	ReportDate string
	Records    int
	Err        error
}

// BatchResult is the output of a full ingestion run.
type BatchResult struct {
	Records    []domain.NormalizedRecord
	Files      []FileResult
	Duplicates int
}

// FailedFiles returns the results of files that were skipped.
func (b *BatchResult) FailedFiles() []FileResult {
	var failed []FileResult
	for _, f := range b.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}
