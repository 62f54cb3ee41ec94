// Package field defines the catalog field keys and the typed value union
// used throughout the normalization pipeline.
//
// Every derived attribute of a variant record is addressed by a Key and
// carries a Value. Value is a closed tagged union (string, enum, int, bool,
// ordered string set, unknown) so conflict and unknown states are
// representable without sentinel strings.
package field
