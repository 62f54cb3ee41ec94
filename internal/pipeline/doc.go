// Package pipeline runs the batch passes over the catalog: classification
// with a bounded worker pool, matcher runs, and deterministic changeset
// assembly with results merged in input order.
package pipeline
