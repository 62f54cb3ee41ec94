// Package apply commits reviewed changesets to the catalog store with
// per-entry optimistic re-validation and manual-override protection.
package apply
