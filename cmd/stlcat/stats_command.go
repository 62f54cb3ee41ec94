package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stlcat/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog store utilities",
	}
	catalogCmd.AddCommand(newStatsCommand(ctx))
	return catalogCmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				rows := [][]string{
					{"Records", strconv.Itoa(stats.Variants)},
					{"Kit children", strconv.Itoa(stats.KitChildren)},
					{"With overrides", strconv.Itoa(stats.Overridden)},
					{"Residual tokens", strconv.Itoa(stats.ResidualTokens)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Counter", "Value"}, rows, 1))
				return nil
			})
		},
	}
	return cmd
}
