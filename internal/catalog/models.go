package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"stlcat/internal/field"
)

// Variant is one cataloged record: a model folder or file group with its
// current field values, the auto-derived values retained for audit, and
// per-field manual override flags.
type Variant struct {
	ID      string
	RelPath string
	// Fields are the live values shown to consumers.
	Fields field.Values
	// AutoFields are the last automatically derived values. For a field
	// under manual override the live value and the auto value diverge.
	AutoFields field.Values
	// Overrides marks fields a human pinned; automatic passes never
	// overwrite them.
	Overrides map[field.Key]bool
	// KitParent is the parent variant id when this record is a kit child.
	KitParent  string
	Confidence float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ResidualToken is one unmatched token with its accumulated frequency.
type ResidualToken struct {
	Token    string
	Count    int
	LastSeen time.Time
}

// Stats summarizes the catalog for review.
type Stats struct {
	Variants       int
	KitChildren    int
	Overridden     int
	ResidualTokens int
}

func marshalValues(values field.Values) (string, error) {
	if values == nil {
		return "{}", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal field values: %w", err)
	}
	return string(data), nil
}

func unmarshalValues(raw string) (field.Values, error) {
	values := make(field.Values)
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("parse field values: %w", err)
	}
	return values, nil
}

func marshalOverrides(overrides map[field.Key]bool) (string, error) {
	if overrides == nil {
		return "{}", nil
	}
	data, err := json.Marshal(overrides)
	if err != nil {
		return "", fmt.Errorf("marshal overrides: %w", err)
	}
	return string(data), nil
}

func unmarshalOverrides(raw string) (map[field.Key]bool, error) {
	overrides := make(map[field.Key]bool)
	if raw == "" {
		return overrides, nil
	}
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}
	return overrides, nil
}
