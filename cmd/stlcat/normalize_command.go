package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stlcat/internal/catalog"
	"stlcat/internal/changeset"
	"stlcat/internal/config"
	"stlcat/internal/pipeline"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Classify every record and write a dry-run change set",
		Long: "Normalize runs the rule engine over the whole catalog without modifying any " +
			"record. The proposed diffs are written to a change set file for review; " +
			"residual tokens are folded into the store's aggregate counts. Apply the " +
			"change set with `stlcat apply`.",
		Args: cobra.NoArgs,
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

			dir := cfg.Paths.ChangeSetDir
			if outDir != "" {
				if dir, err = config.ExpandPath(outDir); err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
			}

			return ctx.withStore(func(store *catalog.Store) error {
				runner := pipeline.New(cfg, snap, store, logger)
				out, err := runner.Normalize(cmd.Context())
				if err != nil {
					return err
				}

				path, err := changeset.Write(out.ChangeSet, dir)
				if err != nil {
					return fmt.Errorf("write change set: %w", err)
				}
				if err := store.AddResiduals(cmd.Context(), out.Residuals); err != nil {
					return fmt.Errorf("record residual tokens: %w", err)
				}

				if ctx.jsonOutput() {
					payload := struct {
						Path           string            `json:"path"`
						ChangeSet      string            `json:"changeset"`
						Summary        changeset.Summary `json:"summary"`
						ResidualTokens int               `json:"residual_tokens"`
					}{path, out.ChangeSet.ID, out.ChangeSet.Summary, len(out.Residuals)}
					return writeJSON(cmd, payload)
				}

				w := cmd.OutOrStdout()
				summary := out.ChangeSet.Summary
				rows := [][]string{
					{"Change set", out.ChangeSet.ID},
					{"File", path},
					{"Vocabulary version", strconv.Itoa(out.ChangeSet.VocabVersion)},
					{"Would create", strconv.Itoa(summary.WouldCreate)},
					{"Would update", strconv.Itoa(summary.WouldUpdate)},
					{"Skipped", strconv.Itoa(summary.Skipped)},
					{"Residual tokens", strconv.Itoa(len(out.Residuals))},
				}
				fmt.Fprintln(w, fieldTable(rows))
				fmt.Fprintf(w, "Review with `stlcat changeset show %s`, then `stlcat apply %s`\n", path, path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outDir, "changeset", "", "Directory for the change set file (defaults to changeset_dir)")
	return cmd
}
