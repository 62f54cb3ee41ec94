package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// rulesetSnapshot is the canonical serialization used for digest computation.
// Path and logging settings are excluded: they change where output lands,
// never what the pipeline derives.
type rulesetSnapshot struct {
	Tokenizer Tokenizer `json:"tokenizer"`
	Scale     Scale     `json:"scale"`
	Scoring   Scoring   `json:"scoring"`
	Matcher   Matcher   `json:"matcher"`
	Residual  Residual  `json:"residual"`
}

// RulesetDigest returns a stable hex digest of every setting that influences
// pipeline output. Two configs with equal digests produce byte-identical
// change sets for the same input and vocabulary snapshot.
func (c *Config) RulesetDigest() (string, error) {
	snapshot := rulesetSnapshot{
		Tokenizer: c.Tokenizer,
		Scale:     c.Scale,
		Scoring:   c.Scoring,
		Matcher:   c.Matcher,
		Residual:  c.Residual,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal ruleset snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
