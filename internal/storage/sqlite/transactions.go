package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateTransaction persists a new transaction and recomputes the cached
// summaries of every parent it links.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Timestamp == 0 {
		t.Timestamp = time.Now().Unix()
	}
	if t.SpaceID == "" {
		t.SpaceID = models.DefaultSpaceID
	}
	t.SyncParentIDs()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, space_id, kind, amount, payer_id, method, category, note, cached_net_amount, cached_has_refunds, timestamp, is_deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, 0)`,
		t.ID, t.SpaceID, string(t.Kind), t.Amount, t.PayerID, string(t.Method),
		t.Category, nullable(t.Note), t.Amount, t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	if err := insertChildren(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	t.CachedNetAmount = t.Amount

	// Follow-up, non-transactional by design: each parent summary is an
	// independent best-effort write.
	s.recomputeParents(ctx, t.ParentIDs)
	return nil
}

// GetTransaction retrieves a transaction by ID, soft-deleted or not.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, selectTransactions+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	txns, err := s.collectTransactions(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	return &txns[0], nil
}

// UpdateTransaction replaces a transaction in place. Parents the record used
// to reference are recomputed alongside the current ones, so allocations
// moved from one parent to another leave both caches correct.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	t.SyncParentIDs()

	previous, err := s.parentIDsOf(ctx, t.ID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE transactions
		 SET space_id = ?, kind = ?, amount = ?, payer_id = ?, method = ?, category = ?, note = ?, timestamp = ?, is_deleted = ?
		 WHERE id = ?`,
		t.SpaceID, string(t.Kind), t.Amount, t.PayerID, string(t.Method),
		t.Category, nullable(t.Note), t.Timestamp, boolToInt(t.IsDeleted), t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transaction %s: %w", t.ID, storage.ErrNotFound)
	}
	for _, table := range []string{"splits", "transaction_participants", "links"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE transaction_id = ?", t.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertChildren(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// The record's own cache depends on its amount, so refresh it together
	// with every parent it referenced before or after the edit.
	s.recomputeParents(ctx, union(previous, append(t.ParentIDs, t.ID)))
	return nil
}

// DeleteTransaction soft-deletes a transaction and recomputes the parents it
// linked; the record itself is never physically removed.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	parents, err := s.parentIDsOf(ctx, id)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "UPDATE transactions SET is_deleted = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}

	s.recomputeParents(ctx, parents)
	return nil
}

// ListTransactions returns every transaction in a space, soft-deleted ones
// included.
func (s *SQLiteStore) ListTransactions(ctx context.Context, spaceID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, selectTransactions+" WHERE space_id = ? ORDER BY timestamp, id", spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return s.collectTransactions(ctx, rows)
}

// QueryByParent returns the non-deleted transactions referencing parentID.
func (s *SQLiteStore) QueryByParent(ctx context.Context, parentID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		selectTransactions+` WHERE is_deleted = 0 AND id IN
		 (SELECT DISTINCT transaction_id FROM links WHERE parent_id = ?)
		 ORDER BY timestamp, id`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query by parent: %w", err)
	}
	return s.collectTransactions(ctx, rows)
}

const selectTransactions = `SELECT id, space_id, kind, amount, payer_id, method, category, note,
	cached_net_amount, cached_has_refunds, timestamp, is_deleted FROM transactions`

// collectTransactions scans the base rows then hydrates splits,
// participants and links per record.
func (s *SQLiteStore) collectTransactions(ctx context.Context, rows *sql.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var kind, method string
		var note sql.NullString
		var hasRefunds, deleted int
		if err := rows.Scan(&t.ID, &t.SpaceID, &kind, &t.Amount, &t.PayerID, &method,
			&t.Category, &note, &t.CachedNetAmount, &hasRefunds, &t.Timestamp, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Kind = models.Kind(kind)
		t.Method = models.SplitMethod(method)
		t.Note = note.String
		t.CachedHasRefunds = hasRefunds != 0
		t.IsDeleted = deleted != 0
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	for i := range txns {
		if err := s.hydrate(ctx, &txns[i]); err != nil {
			return nil, err
		}
	}
	return txns, nil
}

func (s *SQLiteStore) hydrate(ctx context.Context, t *models.Transaction) error {
	splitRows, err := s.db.QueryContext(ctx,
		"SELECT participant_id, share FROM splits WHERE transaction_id = ?", t.ID)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	t.Splits = map[string]int64{}
	for splitRows.Next() {
		var pid string
		var share int64
		if err := splitRows.Scan(&pid, &share); err != nil {
			splitRows.Close()
			return fmt.Errorf("failed to scan split: %w", err)
		}
		t.Splits[pid] = share
	}
	splitRows.Close()
	if err := splitRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}

	partRows, err := s.db.QueryContext(ctx,
		"SELECT participant_id FROM transaction_participants WHERE transaction_id = ? ORDER BY position", t.ID)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	t.Participants = nil
	for partRows.Next() {
		var pid string
		if err := partRows.Scan(&pid); err != nil {
			partRows.Close()
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		t.Participants = append(t.Participants, pid)
	}
	partRows.Close()
	if err := partRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}

	linkRows, err := s.db.QueryContext(ctx,
		"SELECT parent_id, allocated FROM links WHERE transaction_id = ? ORDER BY position", t.ID)
	if err != nil {
		return fmt.Errorf("failed to get links: %w", err)
	}
	t.Links = nil
	for linkRows.Next() {
		var l models.Link
		if err := linkRows.Scan(&l.ParentID, &l.Allocated); err != nil {
			linkRows.Close()
			return fmt.Errorf("failed to scan link: %w", err)
		}
		t.Links = append(t.Links, l)
	}
	linkRows.Close()
	if err := linkRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate links: %w", err)
	}

	t.SyncParentIDs()
	return nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	for pid, share := range t.Splits {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO splits (transaction_id, participant_id, share) VALUES (?, ?, ?)",
			t.ID, pid, share); err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	for i, pid := range t.Participants {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO transaction_participants (transaction_id, participant_id, position) VALUES (?, ?, ?)",
			t.ID, pid, i); err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	for i, l := range t.Links {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO links (transaction_id, parent_id, position, allocated) VALUES (?, ?, ?, ?)",
			t.ID, l.ParentID, i, l.Allocated); err != nil {
			return fmt.Errorf("failed to insert link: %w", err)
		}
	}
	return nil
}

// parentIDsOf returns the distinct parent IDs currently stored for a
// transaction.
func (s *SQLiteStore) parentIDsOf(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT parent_id FROM links WHERE transaction_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("failed to scan parent id: %w", err)
		}
		ids = append(ids, pid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parent ids: %w", err)
	}
	return ids, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, id := range append(append([]string(nil), a...), b...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
