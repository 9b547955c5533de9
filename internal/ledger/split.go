package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// PercentShare is one participant's percentage of an expense, in the order
// the user entered them.
type PercentShare struct {
	ParticipantID string
	Percent       decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// EqualSplit divides amount evenly across the given participants. The first
// participant absorbs the integer remainder so the shares always sum exactly
// to amount.
func EqualSplit(amount int64, participantIDs []string) map[string]int64 {
	if len(participantIDs) == 0 {
		return map[string]int64{}
	}
	n := int64(len(participantIDs))
	base := amount / n
	splits := make(map[string]int64, n)
	var assigned int64
	for _, id := range participantIDs[1:] {
		splits[id] = base
		assigned += base
	}
	splits[participantIDs[0]] = amount - assigned
	return splits
}

// PercentageSplit converts percentage shares into minor-unit shares of
// amount. Percentages must total exactly 100. Every share after the first is
// rounded half-up; the first participant absorbs whatever remains, so the
// shares always sum exactly to amount.
func PercentageSplit(amount int64, shares []PercentShare) (map[string]int64, error) {
	if len(shares) == 0 {
		return nil, ValidationErrors{{Field: "splits", Message: "at least one percentage share is required"}}
	}
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Percent)
	}
	if !total.Equal(hundred) {
		return nil, ValidationErrors{{Field: "splits", Message: "percentages must total 100, got " + total.String()}}
	}

	amt := decimal.NewFromInt(amount)
	splits := make(map[string]int64, len(shares))
	var assigned int64
	for _, s := range shares[1:] {
		share := s.Percent.Div(hundred).Mul(amt).Round(0).IntPart()
		splits[s.ParticipantID] = share
		assigned += share
	}
	splits[shares[0].ParticipantID] = amount - assigned
	return splits, nil
}

// ProportionalShares scales the parent's splits down to value, keeping each
// participant's percentage of the original. Used when a partial refund is
// linked to an expense: a refund of 30% hands every participant 30% of their
// share back. The first key in the parent's deterministic split order absorbs
// the rounding remainder.
func ProportionalShares(parent *models.Transaction, value int64) map[string]int64 {
	keys := splitOrder(parent)
	if len(keys) == 0 || parent.Amount == 0 {
		return map[string]int64{}
	}
	parentAmt := decimal.NewFromInt(parent.Amount)
	val := decimal.NewFromInt(value)
	splits := make(map[string]int64, len(keys))
	var assigned int64
	for _, id := range keys[1:] {
		share := decimal.NewFromInt(parent.Splits[id]).Div(parentAmt).Mul(val).Round(0).IntPart()
		splits[id] = share
		assigned += share
	}
	splits[keys[0]] = value - assigned
	return splits
}

// splitOrder returns the parent's split keys in a deterministic order: the
// payer first, then the participant list, then anything left over in the map.
func splitOrder(t *models.Transaction) []string {
	seen := make(map[string]bool, len(t.Splits))
	keys := make([]string, 0, len(t.Splits))
	appendKey := func(id string) {
		if _, ok := t.Splits[id]; ok && !seen[id] {
			seen[id] = true
			keys = append(keys, id)
		}
	}
	appendKey(t.PayerID)
	for _, id := range t.Participants {
		appendKey(id)
	}
	if len(keys) < len(t.Splits) {
		// Remaining keys come map-ordered; sort for determinism.
		rest := make([]string, 0, len(t.Splits)-len(keys))
		for id := range t.Splits {
			if !seen[id] {
				rest = append(rest, id)
			}
		}
		sort.Strings(rest)
		keys = append(keys, rest...)
	}
	return keys
}

// ValidateSplits enforces the split-sum invariant: for expenses with the
// equal or percentage method, and for product refunds, the shares must sum
// exactly to the amount. Dynamic splits are only checked when validate is
// called at commit time, which is exactly what this function is for.
func ValidateSplits(kind models.Kind, method models.SplitMethod, amount int64, splits map[string]int64) ValidationErrors {
	var errs ValidationErrors
	switch kind {
	case models.KindExpense, models.KindProductRefund:
		var sum int64
		for _, share := range splits {
			sum += share
		}
		if sum != amount {
			errs = append(errs, ValidationError{
				Field:   "splits",
				Message: "shares must sum to the amount",
			})
		}
	}
	return errs
}
