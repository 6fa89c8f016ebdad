// Package logging assembles structured slog loggers and formatting helpers used
// across chaptersplit.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, stamps every record with the run identifier, and exposes
// context-aware helpers so stage code can tag log lines with the current
// stage and chapter ordinal. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
