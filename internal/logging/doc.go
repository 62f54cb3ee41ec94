// Package logging assembles structured slog loggers and formatting helpers
// used across stlcat commands and pipeline stages.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes attribute helpers so pipeline code tags log
// lines with components, run IDs, and record IDs in a uniform shape. The
// package also provides a no-op logger for tests and wiring code that
// cannot fail.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape as the rest of the system.
package logging
