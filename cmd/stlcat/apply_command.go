package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"stlcat/internal/apply"
	"stlcat/internal/catalog"
	"stlcat/internal/changeset"
	"stlcat/internal/config"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <changeset-file>",
		Short: "Apply a reviewed change set to the catalog",
		Long: "Apply replays a change set built by `stlcat normalize` or `stlcat match`. " +
			"Entries whose old value no longer matches the store are skipped as stale, " +
			"and manually overridden fields keep their pinned value.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve change set path: %w", err)
			}
			cs, err := changeset.Load(path)
			if err != nil {
				return fmt.Errorf("load change set: %w", err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *catalog.Store) error {
				outcome, err := apply.New(store, logger).Apply(cmd.Context(), cs)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, outcome)
				}
				return renderOutcome(cmd, cs, outcome)
			})
		},
	}
	return cmd
}

func renderOutcome(cmd *cobra.Command, cs *changeset.ChangeSet, outcome *apply.Outcome) error {
	w := cmd.OutOrStdout()
	rows := [][]string{
		{"Change set", cs.ID},
		{"Applied", fmt.Sprintf("%d", outcome.Applied)},
		{"No-ops", fmt.Sprintf("%d", outcome.NoOps)},
		{"Overridden", fmt.Sprintf("%d", outcome.Overridden)},
		{"Stale", fmt.Sprintf("%d", outcome.Stale)},
	}
	fmt.Fprintln(w, fieldTable(rows))

	if len(outcome.StaleRecords) > 0 {
		ids := make([]string, 0, len(outcome.StaleRecords))
		for id := range outcome.StaleRecords {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Fprintln(w, "Stale records (re-run `stlcat normalize` to rebuild their diffs):")
		for _, id := range ids {
			fmt.Fprintf(w, "  %s: %s\n", id, outcome.StaleRecords[id])
		}
	}
	return nil
}
