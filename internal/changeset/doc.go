// Package changeset models the immutable dry-run artifact: ordered
// per-record field diffs, run summary counts, and a content digest that is
// stable across runs over identical inputs. A changeset is the only
// hand-off between dry run and apply.
package changeset
