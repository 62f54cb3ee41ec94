package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stlcat/internal/changeset"
	"stlcat/internal/config"
)

func newChangeSetCommand(ctx *commandContext) *cobra.Command {
	changesetCmd := &cobra.Command{
		Use:   "changeset",
		Short: "Inspect change set files",
	}
	changesetCmd.AddCommand(newChangeSetShowCommand(ctx))
	return changesetCmd
}

func newChangeSetShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <changeset-file>",
		Short: "Show a change set's proposed diffs",
		Long: "Show loads a change set file, verifies its content digest, and prints every " +
			"proposed field diff. A digest failure means the file was edited after it " +
			"was written and the change set must be regenerated.",
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

			if ctx.jsonOutput() {
				return writeJSON(cmd, cs)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Change set %s (vocabulary v%d, created %s)\n",
				cs.ID, cs.VocabVersion, cs.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Ruleset digest %s\n\n", shortDigest(cs.RulesetDigest))

			rows := make([][]string, 0, len(cs.Entries))
			for _, entry := range cs.Entries {
				rows = append(rows, []string{
					entry.RecordID,
					string(entry.Field),
					entry.OldValue.Display(),
					entry.NewValue.Display(),
					string(entry.Source),
					fmt.Sprintf("%.2f", entry.Confidence),
					strings.Join(entry.Rules, ", "),
				})
			}
			fmt.Fprintln(w, renderTable(
				[]string{"Record", "Field", "Old", "New", "Source", "Conf", "Rules"},
				rows, 5))
			fmt.Fprintf(w, "Would create %d, would update %d, skipped %d\n",
				cs.Summary.WouldCreate, cs.Summary.WouldUpdate, cs.Summary.Skipped)
			return nil
		},
	}
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
