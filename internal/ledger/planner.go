package ledger

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

// AttachLink attaches parent as a debt resolved by a settlement or
// forgiveness draft. The link's allocation is seeded with the full
// outstanding debt between the primary user and the draft's counterpart on
// that parent, signed positive when the draft's payer is the one who owes.
//
// After appending the link the running total of all allocations is checked:
// if it went negative the draft's direction no longer matches the netted
// debt, and the roles flip: payer and counterpart swap, every allocation is
// negated and the amount becomes the absolute value of the new total. The
// flip is atomic: the draft is only mutated once the full new link set has
// been built.
//
// The draft's amount is re-derived as the sum of allocations, so
// sum(allocations) == amount always holds for planner-built drafts.
func AttachLink(draft *models.TransactionDraft, parent *models.Transaction, all []models.Transaction) error {
	if !draft.Kind.IsSettlementLike() {
		return ValidationErrors{{Field: "kind", Message: "only settlement or forgiveness drafts can attach debts"}}
	}
	cp := draft.CounterpartID()
	if cp == "" {
		return ValidationErrors{{Field: "participants", Message: "a counterpart is required before attaching debts"}}
	}
	if _, ok := draft.LinkTo(parent.ID); ok {
		return ValidationErrors{{Field: "links", Message: fmt.Sprintf("parent %s is already attached", parent.ID)}}
	}

	debtorID, debt, err := parentDebt(parent, cp, all, draft.ID)
	if err != nil {
		return err
	}

	alloc := debt
	if draft.PayerID != debtorID {
		alloc = -debt
	}

	links := append(append([]models.Link(nil), draft.Links...), models.Link{ParentID: parent.ID, Allocated: alloc})
	total := sumAllocations(links)
	if total < 0 {
		// Direction flip. The counterpart slot always holds the non-primary
		// party, so flipping only toggles the payer.
		for i := range links {
			links[i].Allocated = -links[i].Allocated
		}
		if draft.PayerID == models.PrimaryUserID {
			draft.PayerID = cp
		} else {
			draft.PayerID = models.PrimaryUserID
		}
		total = -total
	}
	draft.Links = links
	draft.Amount = total
	return nil
}

// DetachLink removes the link to parentID and re-derives the draft's amount
// from the remaining allocations.
func DetachLink(draft *models.TransactionDraft, parentID string) {
	links := draft.Links[:0:0]
	for _, l := range draft.Links {
		if l.ParentID != parentID {
			links = append(links, l)
		}
	}
	draft.Links = links
	draft.Amount = sumAllocations(links)
}

// ReallocateTotal redistributes the draft's allocations after the user
// manually edits the total. Every allocation is scaled by
// newTotal/oldLinkedTotal and truncated, except the last link in insertion
// order, which absorbs the rounding remainder so the allocations sum exactly
// to newTotal. Deterministic by link order.
func ReallocateTotal(draft *models.TransactionDraft, newTotal int64) error {
	if newTotal < 0 {
		return ValidationErrors{{Field: "amount", Message: "amount cannot be negative"}}
	}
	if len(draft.Links) == 0 {
		draft.Amount = newTotal
		return nil
	}
	oldTotal := sumAllocations(draft.Links)
	if oldTotal == 0 {
		return ValidationErrors{{Field: "amount", Message: "cannot redistribute when linked allocations sum to zero"}}
	}

	links := make([]models.Link, len(draft.Links))
	copy(links, draft.Links)
	var assigned int64
	for i := range links[:len(links)-1] {
		links[i].Allocated = links[i].Allocated * newTotal / oldTotal
		assigned += links[i].Allocated
	}
	links[len(links)-1].Allocated = newTotal - assigned

	draft.Links = links
	draft.Amount = newTotal
	return nil
}

// AttachRefund shapes a draft into a product refund of parent, defaulting to
// the parent's full remaining refundable amount. The payer is forced to the
// parent's original payer and the splits are copied proportionally from the
// parent so a later partial resize scales every participant's share.
func AttachRefund(draft *models.TransactionDraft, parent *models.Transaction, all []models.Transaction) error {
	if parent.Kind != models.KindExpense {
		return ValidationErrors{{Field: "links", Message: "refunds can only be linked to expenses"}}
	}
	remaining := RefundableAmount(parent, all, draft.ID)
	if remaining <= 0 {
		return ValidationErrors{{Field: "links", Message: fmt.Sprintf("parent %s has nothing left to refund", parent.ID)}}
	}
	resizeRefund(draft, parent, remaining)
	return nil
}

// ResizeRefund re-derives a refund draft for a new refunded value, keeping
// the proportional splits and the single link consistent. The value is the
// positive refunded amount; the stored record carries it negated.
func ResizeRefund(draft *models.TransactionDraft, parent *models.Transaction, all []models.Transaction, value int64) error {
	if value <= 0 {
		return ValidationErrors{{Field: "amount", Message: "refund value must be positive"}}
	}
	if max := RefundableAmount(parent, all, draft.ID); value > max {
		return ValidationErrors{{
			Field:   "amount",
			Message: fmt.Sprintf("refund exceeds remaining refundable amount on parent %s", parent.ID),
		}}
	}
	resizeRefund(draft, parent, value)
	return nil
}

func resizeRefund(draft *models.TransactionDraft, parent *models.Transaction, value int64) {
	draft.Kind = models.KindProductRefund
	draft.PayerID = parent.PayerID
	draft.Participants = append([]string(nil), parent.Participants...)
	draft.Amount = -value
	draft.Splits = ProportionalShares(parent, -value)
	draft.Links = []models.Link{{ParentID: parent.ID, Allocated: -value}}
	if draft.Category == "" {
		draft.Category = parent.Category
	}
}

// RefundableAmount returns how much of parent's original amount is still
// refundable given the refunds already linked to it, excluding excludeID.
func RefundableAmount(parent *models.Transaction, all []models.Transaction, excludeID string) int64 {
	remaining := parent.Amount
	for _, c := range linkedChildren(parent.ID, all, excludeID) {
		if c.Kind != models.KindProductRefund {
			continue
		}
		if l, ok := c.LinkTo(parent.ID); ok {
			remaining -= abs(l.Allocated)
		}
	}
	return remaining
}

// ValidateDraft runs every pre-write check: kind sanity, split sums,
// settlement shape, and refund allocation caps against the parents resolved
// from the snapshot. It returns all problems at once and must pass before
// the store is touched; no error kind may leave a record half-applied.
func ValidateDraft(draft *models.TransactionDraft, all []models.Transaction) ValidationErrors {
	var errs ValidationErrors
	if !draft.Kind.Valid() {
		errs = append(errs, ValidationError{Field: "kind", Message: fmt.Sprintf("unknown kind %q", draft.Kind)})
		return errs
	}
	if draft.PayerID == "" {
		errs = append(errs, ValidationError{Field: "payer", Message: "a payer is required"})
	}

	switch draft.Kind {
	case models.KindExpense:
		if draft.Amount <= 0 {
			errs = append(errs, ValidationError{Field: "amount", Message: "expense amount must be positive"})
		}
		errs = append(errs, ValidateSplits(draft.Kind, draft.Method, draft.Amount, draft.Splits)...)

	case models.KindProductRefund:
		if draft.Amount >= 0 {
			errs = append(errs, ValidationError{Field: "amount", Message: "refund amount must be negative"})
		}
		errs = append(errs, ValidateSplits(draft.Kind, draft.Method, draft.Amount, draft.Splits)...)
		errs = append(errs, validateRefundCaps(draft, all)...)

	case models.KindSettlement, models.KindForgiveness:
		if draft.Amount < 0 {
			errs = append(errs, ValidationError{Field: "amount", Message: "settlement amount cannot be negative"})
		}
		if draft.CounterpartID() == "" {
			errs = append(errs, ValidationError{Field: "participants", Message: "exactly one counterpart is required"})
		}
		if len(draft.Splits) != 0 {
			errs = append(errs, ValidationError{Field: "splits", Message: "settlements carry no splits"})
		}

	case models.KindIncome:
		if draft.Amount <= 0 {
			errs = append(errs, ValidationError{Field: "amount", Message: "income amount must be positive"})
		}
		if draft.PayerID != models.PrimaryUserID {
			errs = append(errs, ValidationError{Field: "payer", Message: "income always belongs to the primary user"})
		}
	}
	return errs
}

// validateRefundCaps rejects any refund link whose allocation exceeds the
// parent's remaining refundable amount, naming the offending parent.
func validateRefundCaps(draft *models.TransactionDraft, all []models.Transaction) ValidationErrors {
	var errs ValidationErrors
	for _, l := range draft.Links {
		parent := findTransaction(all, l.ParentID)
		if parent == nil {
			// Unresolvable parents are recoverable: the record saves and
			// the health scanner flags them.
			continue
		}
		if abs(l.Allocated) > RefundableAmount(parent, all, draft.ID) {
			errs = append(errs, ValidationError{
				Field:   "links",
				Message: fmt.Sprintf("allocation exceeds refundable amount on parent %s", l.ParentID),
			})
		}
	}
	return errs
}

// parentDebt determines which side of the parent owes between the primary
// user and the counterpart, and how much remains outstanding.
func parentDebt(parent *models.Transaction, counterpartID string, all []models.Transaction, excludeID string) (debtorID string, debt int64, err error) {
	switch parent.PayerID {
	case models.PrimaryUserID:
		return counterpartID, Outstanding(parent, counterpartID, all, excludeID), nil
	case counterpartID:
		return models.PrimaryUserID, Outstanding(parent, models.PrimaryUserID, all, excludeID), nil
	default:
		return "", 0, ValidationErrors{{
			Field:   "links",
			Message: fmt.Sprintf("parent %s involves neither the primary user nor the counterpart as payer", parent.ID),
		}}
	}
}

func sumAllocations(links []models.Link) int64 {
	var total int64
	for _, l := range links {
		total += l.Allocated
	}
	return total
}

func findTransaction(all []models.Transaction, id string) *models.Transaction {
	for i := range all {
		if all[i].ID == id && !all[i].IsDeleted {
			return &all[i]
		}
	}
	return nil
}
