package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"stlcat/internal/catalog"
)

func newResidualsCommand(ctx *commandContext) *cobra.Command {
	var minCount int
	var forget string

	cmd := &cobra.Command{
		Use:   "residuals",
		Short: "List aggregated residual tokens",
		Long: "Residuals lists tokens that matched no vocabulary entry across normalization " +
			"runs, ordered by frequency. Tokens at or above the promotion threshold are " +
			"flagged as vocabulary candidates. --forget drops a token that was handled " +
			"by a vocabulary addition.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *catalog.Store) error {
				if forget != "" {
					if err := store.RemoveResidual(cmd.Context(), forget); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Dropped residual token %q\n", forget)
					return nil
				}

				tokens, err := store.ListResiduals(cmd.Context(), minCount)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, tokens)
				}

				threshold := cfg.Residual.PromoteMinCount
				rows := make([][]string, 0, len(tokens))
				for _, token := range tokens {
					rows = append(rows, []string{
						token.Token,
						strconv.Itoa(token.Count),
						token.LastSeen.Format(time.RFC3339),
						yesNo(token.Count >= threshold),
					})
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, renderTable([]string{"Token", "Count", "Last Seen", "Promote"}, rows, 1))
				fmt.Fprintf(w, "%d token(s); promotion threshold is %d\n", len(tokens), threshold)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&minCount, "min-count", 0, "Only list tokens seen at least this many times")
	cmd.Flags().StringVar(&forget, "forget", "", "Remove a residual token from the aggregate")
	return cmd
}
