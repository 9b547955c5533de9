package models

// Kind identifies what a transaction represents. The persisted value is the
// string form, so new kinds can be added without renumbering.
type Kind string

const (
	// KindExpense is a shared cost paid by one participant and split among
	// several. Amount is positive.
	KindExpense Kind = "expense"

	// KindIncome is money the primary user received. It never affects
	// balances, only the monthly income aggregate.
	KindIncome Kind = "income"

	// KindSettlement is a direct payment between the primary user and one
	// counterpart that resolves outstanding debt. Amount is positive.
	KindSettlement Kind = "settlement"

	// KindForgiveness writes off debt without money changing hands. It has
	// the same shape as a settlement: one counterpart, no splits.
	KindForgiveness Kind = "forgiveness"

	// KindProductRefund is a partial or full refund of an earlier expense.
	// Amount is stored negative.
	KindProductRefund Kind = "product_refund"
)

// Valid reports whether k is a known transaction kind.
func (k Kind) Valid() bool {
	switch k {
	case KindExpense, KindIncome, KindSettlement, KindForgiveness, KindProductRefund:
		return true
	}
	return false
}

// IsSettlementLike reports whether k is a settlement or forgiveness record:
// exactly one counterpart, no splits, resolves debt through links.
func (k Kind) IsSettlementLike() bool {
	return k == KindSettlement || k == KindForgiveness
}

// SplitMethod describes how an expense amount was divided.
type SplitMethod string

const (
	// SplitEqual divides the amount evenly; the first participant absorbs
	// the integer remainder.
	SplitEqual SplitMethod = "equal"

	// SplitPercentage divides by per-participant percentages that must
	// total 100.
	SplitPercentage SplitMethod = "percentage"

	// SplitDynamic lets the user type arbitrary shares. Shares are
	// unconstrained while editing and validated against the amount only at
	// commit time.
	SplitDynamic SplitMethod = "dynamic"
)

// Link references a parent transaction together with the signed amount (in
// minor units) this record contributes toward resolving the parent's
// outstanding debt.
type Link struct {
	ParentID  string
	Allocated int64
}

// Transaction is the central entity of the ledger.
type Transaction struct {
	// ID is the opaque, store-assigned identifier (UUID format).
	ID string

	// SpaceID partitions transactions, e.g. "personal" vs. a shared group.
	SpaceID string

	// Kind tells expenses, income, settlements, forgiveness and refunds
	// apart.
	Kind Kind

	// Amount in minor currency units. Expenses, income and settlements are
	// positive; product refunds are stored negative.
	Amount int64

	// PayerID is the participant who paid. For income it is always the
	// primary user.
	PayerID string

	// Method records how Splits were derived for expenses.
	Method SplitMethod

	// Splits maps participant ID to that participant's signed share in
	// minor units. For equal and percentage expenses the shares must sum
	// to Amount before the record may be persisted.
	Splits map[string]int64

	// Participants is the ordered list of non-payer participant IDs
	// involved. Settlement and forgiveness records carry exactly one
	// counterpart here and no splits.
	Participants []string

	// Links lists the parent debts this record resolves. A record may link
	// zero, one or many parents.
	Links []Link

	// ParentIDs is the denormalized set of Links[].ParentID, kept for
	// query convenience. Legacy records may carry parent IDs without link
	// entries.
	ParentIDs []string

	// Category buckets expense spending for reporting.
	Category string

	// Note is an optional free-form description.
	Note string

	// CachedNetAmount is Amount plus the sum of all child allocations that
	// reference this record. It is recomputed by the store adapter after
	// every child write; decision logic never trusts it.
	CachedNetAmount int64

	// CachedHasRefunds records whether any linked child is a product
	// refund.
	CachedHasRefunds bool

	// Timestamp is the Unix timestamp of the transaction.
	Timestamp int64

	// IsDeleted marks a soft-deleted record. Deleted records are excluded
	// from all aggregation but never physically removed.
	IsDeleted bool
}

// Counterpart returns the single counterpart of a settlement or forgiveness
// record, or "" when the record carries none.
func (t *Transaction) Counterpart() string {
	if !t.Kind.IsSettlementLike() || len(t.Participants) == 0 {
		return ""
	}
	return t.Participants[0]
}

// LinkTo returns the link entry pointing at parentID, if any.
func (t *Transaction) LinkTo(parentID string) (Link, bool) {
	for _, l := range t.Links {
		if l.ParentID == parentID {
			return l, true
		}
	}
	return Link{}, false
}

// HasParent reports whether parentID appears in the denormalized parent set.
func (t *Transaction) HasParent(parentID string) bool {
	for _, id := range t.ParentIDs {
		if id == parentID {
			return true
		}
	}
	return false
}

// Involves reports whether the participant takes part in this record as the
// payer, the counterpart, or one of the split holders.
func (t *Transaction) Involves(participantID string) bool {
	if t.PayerID == participantID {
		return true
	}
	for _, p := range t.Participants {
		if p == participantID {
			return true
		}
	}
	_, ok := t.Splits[participantID]
	return ok
}

// SyncParentIDs rebuilds the denormalized parent set from Links, preserving
// insertion order and dropping duplicates.
func (t *Transaction) SyncParentIDs() {
	seen := make(map[string]bool, len(t.Links))
	ids := make([]string, 0, len(t.Links))
	for _, l := range t.Links {
		if l.ParentID == "" || seen[l.ParentID] {
			continue
		}
		seen[l.ParentID] = true
		ids = append(ids, l.ParentID)
	}
	t.ParentIDs = ids
}
