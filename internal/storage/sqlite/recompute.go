package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/models"
)

// recomputeParents refreshes the cached net amount and has-refunds flag of
// each given parent. Every parent is an independent read-modify-write with
// no lock: two near-simultaneous child writes can race, and the last one
// wins with a value reflecting the child set at that moment. That is fine:
// the cache is a best-effort summary; debt resolution always recomputes from
// raw data.
func (s *SQLiteStore) recomputeParents(ctx context.Context, parentIDs []string) {
	for _, id := range parentIDs {
		if err := s.recomputeParent(ctx, id); err != nil {
			slog.Warn("parent summary recompute failed", "parent_id", id, "error", err)
		}
	}
}

func (s *SQLiteStore) recomputeParent(ctx context.Context, parentID string) error {
	var amount int64
	err := s.db.QueryRowContext(ctx,
		"SELECT amount FROM transactions WHERE id = ?", parentID,
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		// Dangling reference; the health scanner reports these.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load parent: %w", err)
	}

	// One row per child transaction: a child linking the same parent twice
	// counts once, taking its first link in insertion order.
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.transaction_id, l.allocated, t.kind
		 FROM links l JOIN transactions t ON t.id = l.transaction_id
		 WHERE l.parent_id = ? AND t.is_deleted = 0
		 ORDER BY l.transaction_id, l.position`,
		parentID,
	)
	if err != nil {
		return fmt.Errorf("failed to load child links: %w", err)
	}
	defer rows.Close()

	net := amount
	hasRefunds := false
	lastChild := ""
	for rows.Next() {
		var childID, kind string
		var allocated int64
		if err := rows.Scan(&childID, &allocated, &kind); err != nil {
			return fmt.Errorf("failed to scan child link: %w", err)
		}
		if childID == lastChild {
			continue
		}
		lastChild = childID
		net += allocated
		if models.Kind(kind) == models.KindProductRefund {
			hasRefunds = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate child links: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET cached_net_amount = ?, cached_has_refunds = ? WHERE id = ?",
		net, boolToInt(hasRefunds), parentID,
	); err != nil {
		return fmt.Errorf("failed to store parent summary: %w", err)
	}
	return nil
}

// RecomputeParentSummary forces a fresh cache for one parent. The service
// layer calls this when a read detects divergence between the cached value
// and a live recompute.
func (s *SQLiteStore) RecomputeParentSummary(ctx context.Context, parentID string) error {
	return s.recomputeParent(ctx, parentID)
}
