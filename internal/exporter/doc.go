// Package exporter writes CSV files and workbooks.
//
// CSVWriter is the low-level writer with optional UTF-8 BOM for spreadsheet
// applications and a streaming mode. SnapshotExporter writes the flat dataset
// snapshot produced by the batch processor, and TableExporter writes the
// formatted comparison tables of a query as CSV files or an .xlsx workbook.
package exporter
