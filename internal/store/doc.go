// Package store records compilation provenance in SQLite.
//
// Each CLI compile run is one row in runs, identified by a UUIDv7, with
// the final schedule fingerprint. The transformations applied during the
// run are logged in transform_steps in application order, each with the
// fingerprint the tree had after that step. The history command reads
// the log back to show how a schedule reached its final shape.
package store
