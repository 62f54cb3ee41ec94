package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTokenizer(); err != nil {
		return err
	}
	if err := c.validateScale(); err != nil {
		return err
	}
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.CatalogDir) == "" {
		return errors.New("paths.catalog_dir must be set")
	}
	if strings.TrimSpace(c.Paths.VocabDir) == "" {
		return errors.New("paths.vocab_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ChangeSetDir) == "" {
		return errors.New("paths.changeset_dir must be set")
	}
	return nil
}

func (c *Config) validateTokenizer() error {
	for _, sep := range c.Tokenizer.Separators {
		if sep == "" {
			return errors.New("tokenizer.separators must not contain empty strings")
		}
	}
	if c.Tokenizer.MinTokenLength < 1 {
		return errors.New("tokenizer.min_token_length must be >= 1")
	}
	return nil
}

func (c *Config) validateScale() error {
	for _, den := range c.Scale.AllowedDenominators {
		if den <= 0 {
			return fmt.Errorf("scale.allowed_denominators: %d is not positive", den)
		}
	}
	for _, den := range c.Scale.SuspectDenominators {
		if den <= 0 {
			return fmt.Errorf("scale.suspect_denominators: %d is not positive", den)
		}
	}
	if c.Scale.TolerancePct >= 100 {
		return errors.New("scale.tolerance_pct must be below 100")
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.MinDelta > c.Matcher.MinScore {
		return errors.New("matcher.min_delta must not exceed matcher.min_score")
	}
	if c.Matcher.WeakWeight > c.Matcher.StrongWeight {
		return errors.New("matcher.weak_weight must not exceed matcher.strong_weight")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if err := ensurePositiveMap(map[string]int{
		"pipeline.workers":           c.Pipeline.Workers,
		"pipeline.batch_size":        c.Pipeline.BatchSize,
		"residual.promote_min_count": c.Residual.PromoteMinCount,
	}); err != nil {
		return err
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
