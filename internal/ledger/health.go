package ledger

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

// IssueKind classifies a data-health finding.
type IssueKind string

const (
	// IssueOrphanedLink flags a link whose parent ID resolves to nothing.
	IssueOrphanedLink IssueKind = "orphaned_link"

	// IssueSelfLink flags a transaction linking itself as a parent.
	IssueSelfLink IssueKind = "self_link"

	// IssueMissingCategory flags an expense with no category.
	IssueMissingCategory IssueKind = "missing_category"

	// IssueNegativeCachedNet flags an expense whose cached net amount went
	// negative, which means refunds exceeded the original amount.
	IssueNegativeCachedNet IssueKind = "negative_cached_net"

	// IssueCacheDivergence flags a cached net amount that no longer
	// matches a fresh recompute. Recoverable: the caller forces a
	// recompute.
	IssueCacheDivergence IssueKind = "cache_divergence"
)

// Issue is one read-only data-health finding.
type Issue struct {
	Kind          IssueKind `json:"kind"`
	TransactionID string    `json:"transaction_id"`
	Message       string    `json:"message"`
}

// ScanHealth walks the transaction snapshot and flags structural problems.
// It mutates nothing; fixing anything it reports is the caller's business.
func ScanHealth(transactions []models.Transaction) []Issue {
	byID := make(map[string]*models.Transaction, len(transactions))
	for i := range transactions {
		byID[transactions[i].ID] = &transactions[i]
	}

	var issues []Issue
	for i := range transactions {
		t := &transactions[i]
		if t.IsDeleted {
			continue
		}

		for _, parentID := range t.ParentIDs {
			if parentID == t.ID {
				issues = append(issues, Issue{
					Kind:          IssueSelfLink,
					TransactionID: t.ID,
					Message:       "transaction links itself as a parent",
				})
				continue
			}
			if _, ok := byID[parentID]; !ok {
				issues = append(issues, Issue{
					Kind:          IssueOrphanedLink,
					TransactionID: t.ID,
					Message:       fmt.Sprintf("link references missing parent %s", parentID),
				})
			}
		}

		if t.Kind == models.KindExpense {
			if t.Category == "" {
				issues = append(issues, Issue{
					Kind:          IssueMissingCategory,
					TransactionID: t.ID,
					Message:       "expense has no category",
				})
			}
			if t.CachedNetAmount < 0 {
				issues = append(issues, Issue{
					Kind:          IssueNegativeCachedNet,
					TransactionID: t.ID,
					Message:       fmt.Sprintf("cached net amount is negative (%d)", t.CachedNetAmount),
				})
			}
		}

		if t.Kind == models.KindExpense || t.Kind == models.KindProductRefund {
			if fresh := RecomputeNetAmount(t, transactions); fresh != t.CachedNetAmount {
				issues = append(issues, Issue{
					Kind:          IssueCacheDivergence,
					TransactionID: t.ID,
					Message:       fmt.Sprintf("cached net amount %d diverges from recomputed %d", t.CachedNetAmount, fresh),
				})
			}
		}
	}
	return issues
}

// RecomputeNetAmount returns the parent's amount plus the sum of every
// non-deleted child allocation referencing it, deduplicated by child ID.
// This is the authoritative value the cached field must match.
func RecomputeNetAmount(parent *models.Transaction, all []models.Transaction) int64 {
	net := parent.Amount
	for _, c := range linkedChildren(parent.ID, all, "") {
		if l, ok := c.LinkTo(parent.ID); ok {
			net += l.Allocated
		}
	}
	return net
}

// HasRefundChildren reports whether any non-deleted product refund links the
// parent, feeding the cached has-refunds flag.
func HasRefundChildren(parent *models.Transaction, all []models.Transaction) bool {
	for _, c := range linkedChildren(parent.ID, all, "") {
		if c.Kind == models.KindProductRefund {
			return true
		}
	}
	return false
}
