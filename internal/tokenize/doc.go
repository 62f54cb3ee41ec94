// Package tokenize splits raw path strings into normalized tokens and
// extracts structural patterns (scale ratio, millimeter height, version,
// pose) before any alias lookup sees them.
//
// Tokenization is a pure function of the input string and the tokenizer
// configuration: identical inputs always yield identical token sequences,
// which is what makes pipeline re-runs reproducible.
package tokenize
