// Package catalog persists Variant records and residual tokens in SQLite.
// The engine treats records as value objects: it reads current state and
// writes per-record field diffs; record lifecycle beyond that belongs to
// the scan and apply layers.
package catalog
