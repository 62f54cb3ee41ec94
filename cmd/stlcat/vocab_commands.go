package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stlcat/internal/config"
	"stlcat/internal/vocab"
)

func newVocabCommand(ctx *commandContext) *cobra.Command {
	vocabCmd := &cobra.Command{
		Use:   "vocab",
		Short: "Vocabulary utilities",
	}
	vocabCmd.AddCommand(newVocabValidateCommand(ctx))
	vocabCmd.AddCommand(newVocabLoadCommand(ctx))
	vocabCmd.AddCommand(newVocabShowCommand(ctx))
	return vocabCmd
}

func newVocabLoadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load [dir]",
		Short: "Load a vocabulary directory and report its contents",
		Long: "Load builds a full snapshot from a vocabulary directory, failing on any " +
			"alias collision, and reports the snapshot version and per-domain entry " +
			"counts. With no argument the configured vocabulary directory is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var snap *vocab.Snapshot
			if len(args) == 1 {
				dir, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				if snap, err = vocab.Load(dir); err != nil {
					return fmt.Errorf("load vocabulary from %s: %w", dir, err)
				}
			} else {
				var err error
				if snap, err = ctx.ensureVocab(); err != nil {
					return err
				}
			}

			counts := make(map[vocab.Domain]int)
			total := 0
			for _, domain := range vocab.AllDomains() {
				n := len(snap.Entries(domain))
				counts[domain] = n
				total += n
			}

			if ctx.jsonOutput() {
				payload := struct {
					Version int                  `json:"version"`
					Total   int                  `json:"total"`
					Domains map[vocab.Domain]int `json:"domains"`
				}{snap.Version(), total, counts}
				return writeJSON(cmd, payload)
			}

			w := cmd.OutOrStdout()
			rows := make([][]string, 0, len(counts))
			for _, domain := range vocab.AllDomains() {
				rows = append(rows, []string{string(domain), strconv.Itoa(counts[domain])})
			}
			fmt.Fprintln(w, renderTable([]string{"Domain", "Entries"}, rows, 1))
			fmt.Fprintf(w, "Snapshot version %d, %d entrie(s) loaded\n", snap.Version(), total)
			return nil
		},
	}
}

func newVocabValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate vocabulary files",
		Long: "Validate parses vocabulary files and reports alias collisions and malformed " +
			"entries without loading them into a snapshot. With no arguments every .toml " +
			"file in the configured vocabulary directory is checked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				matches, err := filepath.Glob(filepath.Join(cfg.Paths.VocabDir, "*.toml"))
				if err != nil {
					return err
				}
				sort.Strings(matches)
				paths = matches
			}
			if len(paths) == 0 {
				return fmt.Errorf("no vocabulary files to validate")
			}

			w := cmd.OutOrStdout()
			var failed int
			for _, raw := range paths {
				path, err := config.ExpandPath(raw)
				if err != nil {
					return err
				}
				domain, entries, err := vocab.ValidateFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(w, "ok   %s: %d %s entrie(s)\n", path, entries, domain)
			}
			if failed > 0 {
				return fmt.Errorf("%d file(s) failed validation", failed)
			}
			return nil
		},
	}
}

func newVocabShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show [domain]",
		Short: "Show loaded vocabulary entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := ctx.ensureVocab()
			if err != nil {
				return err
			}

			domains := vocab.AllDomains()
			if len(args) == 1 {
				domain, ok := vocab.ParseDomain(args[0])
				if !ok {
					return fmt.Errorf("unknown domain %q", args[0])
				}
				domains = []vocab.Domain{domain}
			}

			if ctx.jsonOutput() {
				payload := make(map[vocab.Domain][]*vocab.Entry, len(domains))
				for _, domain := range domains {
					payload[domain] = snap.Entries(domain)
				}
				return writeJSON(cmd, payload)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Vocabulary version %d\n\n", snap.Version())
			for _, domain := range domains {
				entries := snap.Entries(domain)
				if len(entries) == 0 {
					continue
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.Key,
						strconv.Itoa(len(entry.Aliases)),
						entryScope(entry),
					})
				}
				fmt.Fprintf(w, "%s (%d)\n", domain, len(entries))
				fmt.Fprintln(w, renderTable([]string{"Key", "Aliases", "Scope"}, rows))
			}
			return nil
		},
	}
}

// entryScope summarizes the metadata that scopes an entry, for the listing.
func entryScope(entry *vocab.Entry) string {
	var parts []string
	if entry.Meta.System != "" {
		parts = append(parts, "system="+entry.Meta.System)
	}
	if entry.Meta.Faction != "" {
		parts = append(parts, "faction="+entry.Meta.Faction)
	}
	if entry.Meta.Lineage != "" {
		parts = append(parts, "lineage="+entry.Meta.Lineage)
	}
	if entry.Meta.Family != "" {
		parts = append(parts, "family="+entry.Meta.Family)
	}
	if entry.Meta.Designer != "" {
		parts = append(parts, "designer="+entry.Meta.Designer)
	}
	if entry.Meta.Franchise != "" {
		parts = append(parts, "franchise="+entry.Meta.Franchise)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
