package ledger

import (
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// Balances is the output of one aggregation pass over a space.
type Balances struct {
	// Net maps participant ID to the signed balance from the primary
	// user's point of view: positive means that participant owes the
	// primary user, negative means the primary user owes them.
	Net map[string]int64

	// TotalPaidByMe is the sum of amounts the primary user paid out.
	TotalPaidByMe int64

	// TotalMyShare is the primary user's own consumption across all
	// expenses, whoever paid.
	TotalMyShare int64

	// CategoryTotals buckets the primary user's share by expense category.
	CategoryTotals map[string]int64

	// MonthlyIncome sums income records dated within the month of the
	// reference time handed to ComputeBalances.
	MonthlyIncome int64
}

// ComputeBalances aggregates all non-deleted transactions into per-participant
// net balances plus the primary user's spending and income aggregates. It is
// a pure function of its inputs and order-independent for the sums; only the
// monthly income bucket looks at timestamps, relative to now.
//
// Forgiveness records where the primary user is the payer ("I forgive") are
// a deliberate special case: they annotate the ledger and resolve debt
// through their links, but contribute nothing to the balance itself.
func ComputeBalances(transactions []models.Transaction, participants []models.Participant, now time.Time) Balances {
	b := Balances{
		Net:            make(map[string]int64, len(participants)),
		CategoryTotals: make(map[string]int64),
	}
	for _, p := range participants {
		if !p.IsPrimary() {
			b.Net[p.ID] = 0
		}
	}

	for i := range transactions {
		t := &transactions[i]
		if t.IsDeleted {
			continue
		}
		switch t.Kind {
		case models.KindIncome:
			if sameMonth(t.Timestamp, now) {
				b.MonthlyIncome += t.Amount
			}

		case models.KindSettlement, models.KindForgiveness:
			cp := t.Counterpart()
			if cp == "" {
				continue
			}
			if t.PayerID == models.PrimaryUserID {
				if t.Kind == models.KindForgiveness {
					continue
				}
				b.Net[cp] += t.Amount
				b.TotalPaidByMe += t.Amount
			} else {
				b.Net[cp] -= t.Amount
			}

		case models.KindExpense, models.KindProductRefund:
			// Refund shares are negative, so the same arithmetic walks
			// balances back toward their pre-expense state.
			if t.PayerID == models.PrimaryUserID {
				b.TotalPaidByMe += t.Amount
				for uid, share := range t.Splits {
					if uid == models.PrimaryUserID {
						b.TotalMyShare += share
						if t.Category != "" {
							b.CategoryTotals[t.Category] += share
						}
						continue
					}
					b.Net[uid] += share
				}
			} else if share, ok := t.Splits[models.PrimaryUserID]; ok && share != 0 {
				b.Net[t.PayerID] -= share
				b.TotalMyShare += share
				if t.Category != "" {
					b.CategoryTotals[t.Category] += share
				}
			}
		}
	}
	return b
}

func sameMonth(ts int64, now time.Time) bool {
	t := time.Unix(ts, 0).In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}
