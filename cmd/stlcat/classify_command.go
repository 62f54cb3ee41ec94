package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stlcat/internal/rules"
	"stlcat/internal/textutil"
	"stlcat/internal/tokenize"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <relative-path>",
		Short: "Classify a single path without touching the catalog",
		Long: "Classify runs the tokenizer and rule engine over one relative path and " +
			"prints the derived fields, warnings, residual tokens, and confidence. " +
			"Nothing is stored; use it to preview how a name will normalize.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snap, err := ctx.ensureVocab()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			engine := rules.NewEngine(cfg, snap, logger)
			result := engine.Classify(tokenize.Tokenize(args[0], cfg.Tokenizer))

			if ctx.jsonOutput() {
				payload := struct {
					Path       string   `json:"path"`
					Fields     any      `json:"fields"`
					Warnings   []string `json:"warnings"`
					Residual   []string `json:"residual"`
					Confidence float64  `json:"confidence"`
					Version    int      `json:"vocab_version"`
				}{
					Path:       args[0],
					Fields:     result.Values(),
					Warnings:   warningStrings(result.AllWarnings()),
					Residual:   result.Residual,
					Confidence: result.Confidence,
					Version:    result.VocabVersion,
				}
				return writeJSON(cmd, payload)
			}

			w := cmd.OutOrStdout()
			values := result.Values()
			rows := make([][]string, 0, len(values))
			for _, key := range values.SortedKeys() {
				finding := result.Fields[key]
				rows = append(rows, []string{
					textutil.DisplayTitle(string(key)),
					values[key].Display(),
					strings.Join(finding.Rules, ", "),
				})
			}
			fmt.Fprintln(w, renderTable([]string{"Field", "Value", "Rules"}, rows))

			if warnings := result.AllWarnings(); len(warnings) > 0 {
				fmt.Fprintf(w, "Warnings: %s\n", strings.Join(warningStrings(warnings), ", "))
			}
			if len(result.Residual) > 0 {
				fmt.Fprintf(w, "Residual tokens: %s\n", strings.Join(result.Residual, ", "))
			}
			fmt.Fprintf(w, "Confidence: %.2f (vocabulary v%d)\n", result.Confidence, result.VocabVersion)
			return nil
		},
	}
	return cmd
}

func warningStrings(warnings []rules.Warning) []string {
	out := make([]string, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, string(warning))
	}
	return out
}
