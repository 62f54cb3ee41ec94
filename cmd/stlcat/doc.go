// Command stlcat is the catalog CLI: it scans model libraries, runs
// normalization and matcher passes as reviewable change sets, applies them,
// and inspects catalog state, residual tokens, and vocabulary.
package main
