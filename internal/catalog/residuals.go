package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// AddResiduals merges one run's residual token counts into the aggregate.
// Counts accumulate across runs; a token only leaves the table when it is
// promoted into the vocabulary.
func (s *Store) AddResiduals(ctx context.Context, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(counts))
	for token := range counts {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, token := range tokens {
		_, err := s.execWithRetry(ctx,
			`INSERT INTO residual_tokens (token, count, last_seen) VALUES (?, ?, ?)
			 ON CONFLICT(token) DO UPDATE SET count = count + excluded.count, last_seen = excluded.last_seen`,
			token, counts[token], now)
		if err != nil {
			return fmt.Errorf("upsert residual token %q: %w", token, err)
		}
	}
	return nil
}

// ListResiduals returns residual tokens at or above minCount, highest
// frequency first.
func (s *Store) ListResiduals(ctx context.Context, minCount int) ([]ResidualToken, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT token, count, last_seen FROM residual_tokens WHERE count >= ? ORDER BY count DESC, token",
		minCount)
	if err != nil {
		return nil, fmt.Errorf("list residual tokens: %w", err)
	}
	defer rows.Close()

	var out []ResidualToken
	for rows.Next() {
		var (
			rt       ResidualToken
			lastSeen string
		)
		if err := rows.Scan(&rt.Token, &rt.Count, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan residual token: %w", err)
		}
		if rt.LastSeen, err = time.Parse(time.RFC3339Nano, lastSeen); err != nil {
			return nil, fmt.Errorf("parse residual last_seen: %w", err)
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate residual tokens: %w", err)
	}
	return out, nil
}

// RemoveResidual clears a token after it was promoted into a VocabEntry.
func (s *Store) RemoveResidual(ctx context.Context, token string) error {
	_, err := s.execWithRetry(ctx, "DELETE FROM residual_tokens WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("remove residual token %q: %w", token, err)
	}
	return nil
}
