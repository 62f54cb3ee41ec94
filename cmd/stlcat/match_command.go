package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stlcat/internal/apply"
	"stlcat/internal/catalog"
	"stlcat/internal/changeset"
	"stlcat/internal/pipeline"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var applyNow bool

	cmd := &cobra.Command{
		Use:   "match <unit|franchise|collection>",
		Short: "Run one context matcher over the catalog",
		Long: "Match scores a single context matcher against the tokens the rule engine " +
			"left unconsumed. Unit matching needs resolved system and faction fields, " +
			"franchise matching revalidates character proposals against the current " +
			"vocabulary, and collection matching is scoped to each record's designer. " +
			"The result is a change set; pass --apply to apply it immediately.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(pipeline.MatchUnit), string(pipeline.MatchFranchise), string(pipeline.MatchCollection)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := pipeline.MatcherKind(args[0])
			switch kind {
			case pipeline.MatchUnit, pipeline.MatchFranchise, pipeline.MatchCollection:
			default:
				return fmt.Errorf("unknown matcher %q (expected unit, franchise, or collection)", args[0])
			}

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

			return ctx.withStore(func(store *catalog.Store) error {
				runner := pipeline.New(cfg, snap, store, logger)
				cs, err := runner.RunMatcher(cmd.Context(), kind)
				if err != nil {
					return err
				}

				path, err := changeset.Write(cs, cfg.Paths.ChangeSetDir)
				if err != nil {
					return fmt.Errorf("write change set: %w", err)
				}

				if applyNow {
					outcome, err := apply.New(store, logger).Apply(cmd.Context(), cs)
					if err != nil {
						return err
					}
					if ctx.jsonOutput() {
						return writeJSON(cmd, outcome)
					}
					return renderOutcome(cmd, cs, outcome)
				}

				if ctx.jsonOutput() {
					payload := struct {
						Path      string            `json:"path"`
						ChangeSet string            `json:"changeset"`
						Matcher   string            `json:"matcher"`
						Summary   changeset.Summary `json:"summary"`
					}{path, cs.ID, string(kind), cs.Summary}
					return writeJSON(cmd, payload)
				}

				w := cmd.OutOrStdout()
				rows := [][]string{
					{"Matcher", string(kind)},
					{"Change set", cs.ID},
					{"File", path},
					{"Proposals", strconv.Itoa(len(cs.Entries))},
				}
				fmt.Fprintln(w, fieldTable(rows))
				fmt.Fprintf(w, "Apply with `stlcat apply %s`\n", path)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&applyNow, "apply", false, "Apply the resulting change set immediately")
	return cmd
}
