package config

import (
	"fmt"
	"sort"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTokenizer()
	c.normalizeScale()
	c.normalizeScoring()
	c.normalizeMatcher()
	c.normalizeResidual()
	c.normalizePipeline()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.CatalogDir, err = expandPath(c.Paths.CatalogDir); err != nil {
		return fmt.Errorf("paths.catalog_dir: %w", err)
	}
	if c.Paths.VocabDir, err = expandPath(c.Paths.VocabDir); err != nil {
		return fmt.Errorf("paths.vocab_dir: %w", err)
	}
	if c.Paths.ChangeSetDir, err = expandPath(c.Paths.ChangeSetDir); err != nil {
		return fmt.Errorf("paths.changeset_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTokenizer() {
	if len(c.Tokenizer.Separators) == 0 {
		c.Tokenizer.Separators = defaultSeparators()
	}
	c.Tokenizer.Stopwords = dedupeLower(c.Tokenizer.Stopwords)
	if c.Tokenizer.MinTokenLength <= 0 {
		c.Tokenizer.MinTokenLength = defaultMinTokenLength
	}
}

func (c *Config) normalizeScale() {
	if len(c.Scale.AllowedDenominators) == 0 {
		c.Scale.AllowedDenominators = defaultAllowedDenominators()
	}
	sort.Ints(c.Scale.AllowedDenominators)
	sort.Ints(c.Scale.SuspectDenominators)
	if c.Scale.ReferenceHeightMM <= 0 {
		c.Scale.ReferenceHeightMM = defaultReferenceMM
	}
	if c.Scale.TolerancePct <= 0 {
		c.Scale.TolerancePct = defaultScaleTolerance
	}
}

func (c *Config) normalizeScoring() {
	if c.Scoring.Baseline == 0 {
		c.Scoring.Baseline = defaultScoreBaseline
	}
	if c.Scoring.MatchIncrement <= 0 {
		c.Scoring.MatchIncrement = defaultScoreIncrement
	}
	if c.Scoring.WarningPenalty <= 0 {
		c.Scoring.WarningPenalty = defaultWarningPenalty
	}
}

func (c *Config) normalizeMatcher() {
	if c.Matcher.MinScore <= 0 {
		c.Matcher.MinScore = defaultMatchMinScore
	}
	if c.Matcher.MinDelta < 0 {
		c.Matcher.MinDelta = defaultMatchMinDelta
	}
	if c.Matcher.StrongWeight <= 0 {
		c.Matcher.StrongWeight = defaultStrongWeight
	}
	if c.Matcher.WeakWeight <= 0 {
		c.Matcher.WeakWeight = defaultWeakWeight
	}
}

func (c *Config) normalizeResidual() {
	if c.Residual.PromoteMinCount <= 0 {
		c.Residual.PromoteMinCount = defaultPromoteMinCount
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = defaultWorkers
	}
	if c.Pipeline.BatchSize <= 0 {
		c.Pipeline.BatchSize = defaultBatchSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func dedupeLower(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
