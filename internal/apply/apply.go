package apply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"

	"stlcat/internal/catalog"
	"stlcat/internal/changeset"
	"stlcat/internal/field"
	"stlcat/internal/logging"
)

// ErrStaleEntry indicates the store value changed since the changeset was
// proposed; the optimistic old_value check failed.
var ErrStaleEntry = errors.New("stale changeset entry")

// EntryStatus classifies what apply did with one changeset entry.
type EntryStatus string

const (
	StatusApplied    EntryStatus = "applied"
	StatusNoop       EntryStatus = "noop"
	StatusOverridden EntryStatus = "overridden"
	StatusStale      EntryStatus = "stale"
)

// Outcome summarizes one apply run.
type Outcome struct {
	Applied    int
	NoOps      int
	Overridden int
	Stale      int
	// StaleRecords lists record ids that had at least one rejected entry,
	// with the reason.
	StaleRecords map[string]string
}

// Engine commits a previously produced changeset to the store. Every entry
// is re-validated against current store state immediately before writing;
// manual overrides are never overwritten; re-applying an already-applied
// changeset is a no-op.
type Engine struct {
	store  *catalog.Store
	logger *slog.Logger
}

func New(store *catalog.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logging.NewComponentLogger(logger, "apply"),
	}
}

// Apply commits one changeset. A store-level file lock enforces the single
// writer discipline across processes; stale entries are isolated per
// record and never block the rest of the batch. Cancellation is
// cooperative: the in-flight record finishes, no new records start.
func (e *Engine) Apply(ctx context.Context, cs *changeset.ChangeSet) (*Outcome, error) {
	lock := flock.New(e.store.Path() + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("release store lock", logging.Error(err))
		}
	}()

	outcome := &Outcome{StaleRecords: make(map[string]string)}
	for _, recordID := range cs.RecordIDs() {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		if err := e.applyRecord(ctx, recordID, cs.EntriesFor(recordID), outcome); err != nil {
			return outcome, err
		}
	}

	e.logger.Info("changeset applied",
		logging.String(logging.FieldChangeSet, cs.ID),
		logging.Int("applied", outcome.Applied),
		logging.Int("noops", outcome.NoOps),
		logging.Int("overridden", outcome.Overridden),
		logging.Int("stale", outcome.Stale))
	return outcome, nil
}

// applyRecord re-validates and commits every entry of one record as a
// single atomic upsert. Stale entries are counted and skipped; the rest of
// the record's entries still apply.
func (e *Engine) applyRecord(ctx context.Context, recordID string, entries []changeset.Entry, outcome *Outcome) error {
	v, err := e.store.GetVariant(ctx, recordID)
	if errors.Is(err, catalog.ErrNotFound) {
		outcome.Stale += len(entries)
		outcome.StaleRecords[recordID] = "record no longer exists"
		return nil
	}
	if err != nil {
		return fmt.Errorf("read record %s: %w", recordID, err)
	}

	dirty := false
	for _, entry := range entries {
		switch e.applyEntry(v, entry) {
		case StatusApplied:
			outcome.Applied++
			v.Confidence = entry.Confidence
			dirty = true
		case StatusNoop:
			outcome.NoOps++
		case StatusOverridden:
			outcome.Overridden++
			dirty = true
		case StatusStale:
			outcome.Stale++
			outcome.StaleRecords[recordID] = fmt.Sprintf("field %s: %v", entry.Field, ErrStaleEntry)
			e.logger.Warn("stale entry rejected",
				logging.String(logging.FieldRecordID, recordID),
				logging.String("field", string(entry.Field)))
		}
	}

	if !dirty {
		return nil
	}
	if err := e.store.UpdateVariant(ctx, v); err != nil {
		return fmt.Errorf("write record %s: %w", recordID, err)
	}
	return nil
}

// applyEntry decides one entry's fate against current record state.
func (e *Engine) applyEntry(v *catalog.Variant, entry changeset.Entry) EntryStatus {
	if v.Overrides[entry.Field] {
		// The live value is pinned; retain the derived value for audit
		// only.
		if v.AutoFields == nil {
			v.AutoFields = make(field.Values)
		}
		if existing, ok := v.AutoFields[entry.Field]; ok && existing.Equal(entry.NewValue) {
			return StatusNoop
		}
		v.AutoFields[entry.Field] = entry.NewValue
		return StatusOverridden
	}

	current, ok := v.Fields[entry.Field]
	if !ok {
		current = field.Unknown()
	}
	if current.Equal(entry.NewValue) {
		return StatusNoop
	}
	if !current.Equal(entry.OldValue) {
		return StatusStale
	}

	if v.Fields == nil {
		v.Fields = make(field.Values)
	}
	if v.AutoFields == nil {
		v.AutoFields = make(field.Values)
	}
	v.Fields[entry.Field] = entry.NewValue
	v.AutoFields[entry.Field] = entry.NewValue
	return StatusApplied
}
