// Package dataset loads the flat fund snapshot into an immutable in-memory index
// shared by all queries.
package dataset
