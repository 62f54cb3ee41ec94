package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stlcat/internal/catalog"
	"stlcat/internal/field"
)

func newSetCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <id-or-path> <field> <value>",
		Short: "Pin a field to a manual value",
		Long: "Set marks a field as manually overridden. The previous rule-derived value " +
			"is retained alongside the pinned value, and later apply runs leave the " +
			"field untouched until the override is lifted.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := field.ParseKey(args[1])
			if !ok {
				return fmt.Errorf("unknown field %q", args[1])
			}
			value, err := parseFieldValue(key, args[2])
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *catalog.Store) error {
				v, err := lookupVariant(cmd, store, args[0])
				if err != nil {
					return err
				}
				if err := store.SetOverride(cmd.Context(), v.ID, key, value); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					payload := struct {
						RecordID string      `json:"record_id"`
						Field    field.Key   `json:"field"`
						Value    field.Value `json:"value"`
					}{v.ID, key, value}
					return writeJSON(cmd, payload)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pinned %s = %s on %s\n", key, value.Display(), v.RelPath)
				return nil
			})
		},
	}
	return cmd
}

// parseFieldValue converts CLI text into the value kind the field carries.
func parseFieldValue(key field.Key, raw string) (field.Value, error) {
	raw = strings.TrimSpace(raw)
	switch key {
	case field.KeyScaleRatio, field.KeyHeightMM, field.KeyVersion:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return field.Unknown(), fmt.Errorf("field %s expects an integer: %w", key, err)
		}
		return field.Int(n), nil
	case field.KeyPCCandidate:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return field.Unknown(), fmt.Errorf("field %s expects true or false: %w", key, err)
		}
		return field.Bool(b), nil
	case field.KeyPose:
		return field.String(raw), nil
	default:
		return field.Enum(strings.ToLower(raw)), nil
	}
}
