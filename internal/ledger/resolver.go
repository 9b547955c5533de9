package ledger

import (
	"github.com/mmynk/splitledger/internal/models"
)

// Outstanding computes the signed remaining debt debtorID carries on parent,
// given the full transaction snapshot. Positive means still owed, negative
// means a credit (over-payment), a valid state that is never clamped.
//
// excludeID names a transaction to ignore, used while an edit of that record
// is in progress so it does not count against its own parents. Pass "" when
// not editing.
//
// Calling this twice over an unchanged snapshot returns the same value: the
// walk is driven entirely by the snapshot, deduplicated by child ID so a
// record referencing the parent through several link entries counts once.
func Outstanding(parent *models.Transaction, debtorID string, all []models.Transaction, excludeID string) int64 {
	debt := parent.Splits[debtorID]
	children := linkedChildren(parent.ID, all, excludeID)

	for _, c := range children {
		applyChild(&debt, parent, c, debtorID)
	}

	// An over-allocated settlement child leaves a credit on this parent.
	// Records that link to that settlement as their own parent spend the
	// credit back toward zero, capped at the remaining credit so an
	// over-sized allocation can never swing the result past it. Credits can
	// only be consumed by the settlement's direct children, never
	// transitively, so one extra pass suffices.
	if debt < 0 {
		for _, c := range children {
			if !c.Kind.IsSettlementLike() || !c.Involves(debtorID) {
				continue
			}
			for _, g := range linkedChildren(c.ID, all, excludeID) {
				if !g.Involves(debtorID) {
					continue
				}
				if l, ok := g.LinkTo(c.ID); ok {
					debt += min(abs(l.Allocated), -debt)
				}
			}
		}
	}

	return debt
}

// applyChild folds one linked child into the running debt.
func applyChild(debt *int64, parent *models.Transaction, c *models.Transaction, debtorID string) {
	switch {
	case c.Kind.IsSettlementLike():
		if c.PayerID != debtorID && c.Counterpart() != debtorID {
			return
		}
		if link, ok := c.LinkTo(parent.ID); ok {
			if parent.Kind.IsSettlementLike() {
				// Reducing a credit moves it toward zero from the other
				// side, so the sign inverts.
				*debt += abs(link.Allocated)
			} else {
				*debt -= abs(link.Allocated)
			}
			return
		}
		// Legacy settlements reference a parent without link entries; the
		// whole amount counts when the debtor paid it.
		if len(c.Links) == 0 && c.PayerID == debtorID {
			*debt -= abs(c.Amount)
		}

	case c.Kind == models.KindProductRefund:
		*debt += c.Splits[debtorID]
	}
}

// linkedChildren returns the non-deleted transactions whose parent set
// contains parentID, excluding excludeID, deduplicated by transaction ID.
// Dedup is mandatory: a record that references the parent through multiple
// link entries must only be counted once.
func linkedChildren(parentID string, all []models.Transaction, excludeID string) []*models.Transaction {
	seen := make(map[string]bool)
	var children []*models.Transaction
	for i := range all {
		t := &all[i]
		if t.IsDeleted || t.ID == excludeID || seen[t.ID] {
			continue
		}
		if !t.HasParent(parentID) {
			continue
		}
		seen[t.ID] = true
		children = append(children, t)
	}
	return children
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
