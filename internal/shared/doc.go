// Package shared holds code used across packages that belongs to no single
// layer. Today that is the testutil subpackage: record fixtures built from
// quarterly change series and a buffered slog handler for asserting on log
// output.
package shared
