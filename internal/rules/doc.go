// Package rules implements the ordered classification passes that turn a
// token stream into typed field values, confidence deltas, and warnings.
// Passes run in a fixed precedence and never reconsider a field an earlier
// pass already set; ambiguous tokens are recorded, never guessed.
package rules
