// Package analytics computes the fund comparison tables.
//
// A query selects a fund-type cohort, a period and optionally one owner. ResolveRange
// turns the period into a date window, Compute evaluates the metrics of every owner
// over that window, and BuildTables ranks and formats them. All functions are pure
// and safe for concurrent use over a shared, read-only record slice.
package analytics
