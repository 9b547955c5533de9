package ledger

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// MaterialityThreshold is the default balance magnitude, in minor units,
// below which a participant is left out of netting suggestions.
const MaterialityThreshold = 100

// Transfer is one suggested payment. Suggestions are never applied
// automatically; the caller must explicitly turn one into a real settlement.
type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// SuggestSettlements turns a balance aggregation into netting input and
// proposes transfers. Net balances are kept from the primary user's point of
// view (positive means the participant owes them), so each entry is negated
// for the pool and the primary user enters with the counter-sum, letting
// suggestions settle against them like anyone else.
func SuggestSettlements(b Balances, threshold int64) []Transfer {
	pool := make(map[string]int64, len(b.Net)+1)
	var mine int64
	for id, net := range b.Net {
		pool[id] = -net
		mine += net
	}
	pool[models.PrimaryUserID] = mine
	return Suggest(pool, threshold)
}

// Suggest proposes direct payments that clear as much outstanding debt as
// possible. The input maps participant ID to a signed balance where positive
// means the participant is owed money.
//
// The matching is a greedy heuristic, not an optimal solver: participants
// are partitioned into creditors and debtors above the threshold, both lists
// sorted descending by magnitude (ties broken by ID for determinism), and
// each debtor is matched against creditors in order until one side is
// exhausted.
func Suggest(balances map[string]int64, threshold int64) []Transfer {
	if threshold <= 0 {
		threshold = MaterialityThreshold
	}

	type side struct {
		id     string
		amount int64
	}
	var creditors, debtors []side
	for id, bal := range balances {
		switch {
		case bal > threshold:
			creditors = append(creditors, side{id, bal})
		case bal < -threshold:
			debtors = append(debtors, side{id, -bal})
		}
	}
	byMagnitude := func(s []side) {
		sort.Slice(s, func(i, j int) bool {
			if s[i].amount != s[j].amount {
				return s[i].amount > s[j].amount
			}
			return s[i].id < s[j].id
		})
	}
	byMagnitude(creditors)
	byMagnitude(debtors)

	var transfers []Transfer
	j := 0
	for _, d := range debtors {
		remaining := d.amount
		for remaining > 0 && j < len(creditors) {
			c := &creditors[j]
			amount := min(remaining, c.amount)
			transfers = append(transfers, Transfer{From: d.id, To: c.id, Amount: amount})
			remaining -= amount
			c.amount -= amount
			if c.amount == 0 {
				j++
			}
		}
		if j >= len(creditors) {
			break
		}
	}
	return transfers
}
