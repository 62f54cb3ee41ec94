// Package vocab loads the curated alias tables and exposes them as an
// immutable, versioned index.
//
// Each domain (designer, system, faction, lineage, unit, franchise,
// character, collection) is declared in a TOML file mapping canonical keys
// to alias phrases. Loading validates that no alias resolves to two
// canonical keys within one domain; a collision is a fatal load error, never
// a silent merge. The resulting Snapshot is read-only and safe for
// concurrent use, so one snapshot can back an entire batch run.
package vocab
