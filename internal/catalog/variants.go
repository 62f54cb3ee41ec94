package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stlcat/internal/field"
)

const variantColumns = "id, rel_path, fields, auto_fields, overrides, kit_parent, confidence, created_at, updated_at"

// InsertVariant stores a new record. The caller supplies the id.
func (s *Store) InsertVariant(ctx context.Context, v *Variant) error {
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	fields, err := marshalValues(v.Fields)
	if err != nil {
		return err
	}
	autoFields, err := marshalValues(v.AutoFields)
	if err != nil {
		return err
	}
	overrides, err := marshalOverrides(v.Overrides)
	if err != nil {
		return err
	}

	_, err = s.execWithRetry(ctx,
		`INSERT INTO variants (id, rel_path, fields, auto_fields, overrides, kit_parent, confidence, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.RelPath, fields, autoFields, overrides, nullable(v.KitParent), v.Confidence,
		v.CreatedAt.Format(time.RFC3339Nano), v.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert variant %s: %w", v.ID, err)
	}
	return nil
}

// UpdateVariant persists the record's current fields, auto values,
// overrides, and confidence as one atomic write.
func (s *Store) UpdateVariant(ctx context.Context, v *Variant) error {
	v.UpdatedAt = time.Now().UTC()

	fields, err := marshalValues(v.Fields)
	if err != nil {
		return err
	}
	autoFields, err := marshalValues(v.AutoFields)
	if err != nil {
		return err
	}
	overrides, err := marshalOverrides(v.Overrides)
	if err != nil {
		return err
	}

	res, err := s.execWithRetry(ctx,
		`UPDATE variants SET fields = ?, auto_fields = ?, overrides = ?, confidence = ?, updated_at = ? WHERE id = ?`,
		fields, autoFields, overrides, v.Confidence, v.UpdatedAt.Format(time.RFC3339Nano), v.ID)
	if err != nil {
		return fmt.Errorf("update variant %s: %w", v.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update variant %s: %w", v.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update variant %s: %w", v.ID, ErrNotFound)
	}
	return nil
}

// GetVariant fetches one record by id.
func (s *Store) GetVariant(ctx context.Context, id string) (*Variant, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+variantColumns+" FROM variants WHERE id = ?", id)
	return scanVariant(row)
}

// GetVariantByRelPath fetches one record by its relative path.
func (s *Store) GetVariantByRelPath(ctx context.Context, relPath string) (*Variant, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+variantColumns+" FROM variants WHERE rel_path = ?", relPath)
	return scanVariant(row)
}

// ListVariants returns every record ordered by relative path, so batch
// runs enumerate records in a stable input order.
func (s *Store) ListVariants(ctx context.Context) ([]*Variant, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+variantColumns+" FROM variants ORDER BY rel_path")
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	return collectVariants(rows)
}

// ListKitChildren returns the children linked to a kit parent.
func (s *Store) ListKitChildren(ctx context.Context, parentID string) ([]*Variant, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+variantColumns+" FROM variants WHERE kit_parent = ? ORDER BY rel_path", parentID)
	if err != nil {
		return nil, fmt.Errorf("list kit children of %s: %w", parentID, err)
	}
	defer rows.Close()
	return collectVariants(rows)
}

// SetOverride pins a field to a manual value. The previous auto value
// stays in auto_fields for audit.
func (s *Store) SetOverride(ctx context.Context, id string, key field.Key, value field.Value) error {
	v, err := s.GetVariant(ctx, id)
	if err != nil {
		return err
	}
	if current, ok := v.Fields[key]; ok {
		if v.AutoFields == nil {
			v.AutoFields = make(field.Values)
		}
		if _, has := v.AutoFields[key]; !has {
			v.AutoFields[key] = current
		}
	}
	if v.Fields == nil {
		v.Fields = make(field.Values)
	}
	if v.Overrides == nil {
		v.Overrides = make(map[field.Key]bool)
	}
	v.Fields[key] = value
	v.Overrides[key] = true
	return s.UpdateVariant(ctx, v)
}

// Stats summarizes the catalog.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM variants").Scan(&stats.Variants); err != nil {
		return Stats{}, fmt.Errorf("count variants: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM variants WHERE kit_parent IS NOT NULL").Scan(&stats.KitChildren); err != nil {
		return Stats{}, fmt.Errorf("count kit children: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM variants WHERE overrides != '{}'`).Scan(&stats.Overridden); err != nil {
		return Stats{}, fmt.Errorf("count overrides: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM residual_tokens").Scan(&stats.ResidualTokens); err != nil {
		return Stats{}, fmt.Errorf("count residual tokens: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVariant(row rowScanner) (*Variant, error) {
	var (
		v          Variant
		fields     string
		autoFields string
		overrides  string
		kitParent  sql.NullString
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&v.ID, &v.RelPath, &fields, &autoFields, &overrides, &kitParent, &v.Confidence, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan variant: %w", err)
	}

	if v.Fields, err = unmarshalValues(fields); err != nil {
		return nil, err
	}
	if v.AutoFields, err = unmarshalValues(autoFields); err != nil {
		return nil, err
	}
	if v.Overrides, err = unmarshalOverrides(overrides); err != nil {
		return nil, err
	}
	if kitParent.Valid {
		v.KitParent = kitParent.String
	}
	if v.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if v.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &v, nil
}

func collectVariants(rows *sql.Rows) ([]*Variant, error) {
	var out []*Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return out, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
