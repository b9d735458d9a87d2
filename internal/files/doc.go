// Package files discovers report workbooks on disk.
//
// Report spreadsheets are dropped into a data directory, possibly nested by year.
// Discovery walks the tree and returns every workbook in a stable order so that a
// batch run over the same directory always sees the same input sequence.
//
//	discovery := files.NewDiscovery("/srv/pension")
//	reports, err := discovery.FindReportFiles("raw_data")
package files
