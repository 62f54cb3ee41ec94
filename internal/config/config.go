package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CatalogDir   string `toml:"catalog_dir"`
	VocabDir     string `toml:"vocab_dir"`
	ChangeSetDir string `toml:"changeset_dir"`
	LogDir       string `toml:"log_dir"`
}

// Tokenizer contains the separator, stopword, and length settings that make
// tokenization reproducible across runs.
type Tokenizer struct {
	Separators     []string `toml:"separators"`
	Stopwords      []string `toml:"stopwords"`
	MinTokenLength int      `toml:"min_token_length"`
}

// Scale contains the allowed and suspect scale denominators plus the
// parameters of the ratio-versus-millimeter consistency check.
type Scale struct {
	AllowedDenominators []int `toml:"allowed_denominators"`
	SuspectDenominators []int `toml:"suspect_denominators"`
	// ReferenceHeightMM is the assumed full-size subject height used to
	// derive the millimeter height implied by a scale ratio.
	ReferenceHeightMM int `toml:"reference_height_mm"`
	// TolerancePct is the allowed deviation between an explicit millimeter
	// height and the height implied by the scale ratio before the
	// scale_mm_ratio_conflict warning fires.
	TolerancePct int `toml:"tolerance_pct"`
}

// Scoring contains the confidence accumulator parameters.
type Scoring struct {
	Baseline       float64 `toml:"baseline"`
	MatchIncrement float64 `toml:"match_increment"`
	WarningPenalty float64 `toml:"warning_penalty"`
}

// Matcher contains thresholds for the context matchers.
type Matcher struct {
	MinScore     float64 `toml:"min_score"`
	MinDelta     float64 `toml:"min_delta"`
	StrongWeight float64 `toml:"strong_weight"`
	WeakWeight   float64 `toml:"weak_weight"`
	KitRollup    bool    `toml:"kit_rollup"`
}

// Residual contains tunables for residual token curation.
type Residual struct {
	// PromoteMinCount is the aggregated frequency at which a residual token
	// is surfaced as a vocabulary promotion candidate.
	PromoteMinCount int `toml:"promote_min_count"`
}

// Pipeline contains batch processing settings.
type Pipeline struct {
	Workers   int `toml:"workers"`
	BatchSize int `toml:"batch_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for stlcat.
//
// Configuration sections by subsystem:
//   - Paths: catalog store, vocabulary, change set, and log directories
//   - Tokenizer: separators, stopwords, and minimum token length
//   - Scale: allowed/suspect scale denominators and the mm consistency check
//   - Scoring: confidence baseline, increment, and warning penalty
//   - Matcher: context matcher score thresholds and kit roll-up
//   - Residual: residual token promotion threshold
//   - Pipeline: worker pool sizing
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Tokenizer Tokenizer `toml:"tokenizer"`
	Scale     Scale     `toml:"scale"`
	Scoring   Scoring   `toml:"scoring"`
	Matcher   Matcher   `toml:"matcher"`
	Residual  Residual  `toml:"residual"`
	Pipeline  Pipeline  `toml:"pipeline"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/stlcat/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/stlcat/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stlcat.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline needs to run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CatalogDir, c.Paths.ChangeSetDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
