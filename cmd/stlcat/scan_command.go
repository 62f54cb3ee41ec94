package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stlcat/internal/catalog"
	"stlcat/internal/config"
	"stlcat/internal/scan"
	"stlcat/internal/textutil"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var commit bool

	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "Enumerate model directories under a library root",
		Long: "Scan walks the library root and lists every directory that directly contains " +
			"model files. Without --commit the result is a preview; with --commit new " +
			"records are inserted into the catalog and kit children are linked to their parents.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve scan root: %w", err)
			}

			candidates, err := scan.Walk(root)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() && !commit {
				payload := struct {
					Root       string           `json:"root"`
					Candidates []scan.Candidate `json:"candidates"`
				}{Root: root, Candidates: candidates}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if !ctx.jsonOutput() {
				rows := make([][]string, 0, len(candidates))
				for _, candidate := range candidates {
					rows = append(rows, []string{
						candidate.RelPath,
						textutil.Ternary(candidate.KitParent != "", candidate.KitParent, "-"),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Path", "Kit Parent"}, rows))
				fmt.Fprintf(out, "%d candidate(s) under %s\n", len(candidates), root)
			}

			if !commit {
				if !ctx.jsonOutput() {
					fmt.Fprintln(out, "Preview only; re-run with --commit to insert new records")
				}
				return nil
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				result, err := scan.Commit(cmd.Context(), store, candidates, logger)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				fmt.Fprintf(out, "Inserted %d new record(s), %d already cataloged\n", result.Inserted, result.Existing)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&commit, "commit", false, "Insert new records into the catalog")
	return cmd
}
