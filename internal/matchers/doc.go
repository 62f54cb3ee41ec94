// Package matchers implements the context-level passes that run after base
// normalization: unit/faction scoring, franchise/character resolution, and
// designer-scoped collection consolidation. Matchers only propose; nothing
// here writes to the store.
package matchers
