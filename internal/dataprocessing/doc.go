// Package dataprocessing turns quarterly pension fund report workbooks into the
// normalized long-format dataset.
//
// The pipeline has three stages:
//
//   - ReadSnapshot and Normalize select the report columns by position, clear the
//     "not applicable" markers, coerce types and classify each fund code into its
//     owner and fund type.
//   - EstimateRelativeChange converts the cumulative year-to-date change of each fund
//     into a per-period change.
//   - BatchProcessor runs both over every workbook of a directory, skipping files
//     that fail to parse and resolving duplicate (fund, date) records.
package dataprocessing
