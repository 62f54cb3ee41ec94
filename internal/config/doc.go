// Package config loads, normalizes, and validates stlcat configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and computes the ruleset digest that ties
// every change set to the exact tokenizer, scoring, and matcher settings it
// was produced under. The Config type centralizes every knob the pipeline
// and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical token separators, and clear validation errors.
package config
