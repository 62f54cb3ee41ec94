package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"stlcat/internal/catalog"
	"stlcat/internal/field"
	"stlcat/internal/textutil"
)

const (
	ansiBlue  = "\x1b[34m"
	ansiReset = "\x1b[0m"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id-or-path>",
		Short: "Show one catalog record",
		Long: "Show prints a record's live fields, rule-derived values, manual override " +
			"flags, confidence, and kit children. The argument is a record id or a " +
			"cataloged relative path.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				v, err := lookupVariant(cmd, store, args[0])
				if err != nil {
					return err
				}
				children, err := store.ListKitChildren(cmd.Context(), v.ID)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					payload := struct {
						Variant  *catalog.Variant   `json:"variant"`
						Children []*catalog.Variant `json:"kit_children"`
					}{v, children}
					return writeJSON(cmd, payload)
				}

				w := cmd.OutOrStdout()
				printHeader(w, v.RelPath)
				fmt.Fprintf(w, "ID: %s\n", v.ID)
				if v.KitParent != "" {
					fmt.Fprintf(w, "Kit parent: %s\n", v.KitParent)
				}
				fmt.Fprintf(w, "Confidence: %.2f\n", v.Confidence)
				fmt.Fprintf(w, "Updated: %s\n\n", v.UpdatedAt.Format(time.RFC3339))

				rows := make([][]string, 0, len(v.Fields))
				for _, key := range allStoredKeys(v) {
					live, ok := v.Fields[key]
					if !ok {
						continue
					}
					auto := "-"
					if autoValue, ok := v.AutoFields[key]; ok {
						auto = autoValue.Display()
					}
					rows = append(rows, []string{
						textutil.DisplayTitle(string(key)),
						live.Display(),
						auto,
						yesNo(v.Overrides[key]),
					})
				}
				fmt.Fprintln(w, renderTable([]string{"Field", "Value", "Derived", "Override"}, rows))

				if len(children) > 0 {
					fmt.Fprintf(w, "Kit children (%d):\n", len(children))
					for _, child := range children {
						fmt.Fprintf(w, "  %s\n", child.RelPath)
					}
				}
				return nil
			})
		},
	}
	return cmd
}

// lookupVariant resolves the argument as a record id first, then as a
// cataloged relative path.
func lookupVariant(cmd *cobra.Command, store *catalog.Store, arg string) (*catalog.Variant, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, errors.New("record id or path is required")
	}
	v, err := store.GetVariant(cmd.Context(), arg)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return nil, err
	}
	v, err = store.GetVariantByRelPath(cmd.Context(), arg)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("no record with id or path %q", arg)
	}
	return v, err
}

// allStoredKeys returns field keys in canonical order, restricted to keys
// present on the record.
func allStoredKeys(v *catalog.Variant) []field.Key {
	keys := make([]field.Key, 0, len(v.Fields))
	for _, key := range field.AllKeys() {
		if _, ok := v.Fields[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func printHeader(w io.Writer, title string) {
	rule := strings.Repeat("-", len(title))
	if shouldColorize(w) {
		title = ansiBlue + title + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
