package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stlcat/internal/catalog"
	"stlcat/internal/config"
	"stlcat/internal/logging"
	"stlcat/internal/vocab"
)

// commandContext shares lazily constructed dependencies between commands.
// Config, logger, and vocabulary snapshot are each built at most once per
// invocation; the catalog store is opened per command because most commands
// never touch it.
type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	vocabOnce sync.Once
	snapshot  *vocab.Snapshot
	vocabErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// ensureLogger builds the CLI logger. Output goes to stderr only so tables
// and JSON on stdout stay parseable.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:            cfg.Logging.Level,
			Format:           cfg.Logging.Format,
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
		})
	})
	return c.logger, c.loggerErr
}

// ensureVocab loads the vocabulary snapshot from the configured directory.
func (c *commandContext) ensureVocab() (*vocab.Snapshot, error) {
	c.vocabOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.vocabErr = err
			return
		}
		cache, err := vocab.NewCache()
		if err != nil {
			c.vocabErr = err
			return
		}
		snap, err := cache.Load(cfg.Paths.VocabDir)
		if err != nil {
			c.vocabErr = fmt.Errorf("load vocabulary from %s: %w", cfg.Paths.VocabDir, err)
			return
		}
		c.snapshot = snap
	})
	return c.snapshot, c.vocabErr
}

// withStore opens the catalog store, runs fn, and closes the store.
func (c *commandContext) withStore(fn func(*catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
