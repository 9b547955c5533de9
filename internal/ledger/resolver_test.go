package ledger

import (
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func expense(id string, amount int64, payer string, splits map[string]int64) models.Transaction {
	return models.Transaction{
		ID: id, Kind: models.KindExpense, Amount: amount, PayerID: payer, Splits: splits,
	}
}

func settlement(id string, amount int64, payer, counterpart string, links ...models.Link) models.Transaction {
	t := models.Transaction{
		ID: id, Kind: models.KindSettlement, Amount: amount,
		PayerID: payer, Participants: []string{counterpart}, Links: links,
	}
	t.SyncParentIDs()
	return t
}

func TestOutstanding(t *testing.T) {
	tests := []struct {
		name         string
		transactions []models.Transaction
		parentID     string
		debtorID     string
		excludeID    string
		want         int64
	}{
		{
			name: "no children returns the split share",
			transactions: []models.Transaction{
				expense("e1", 10000, "me", map[string]int64{"me": 5000, "alice": 5000}),
			},
			parentID: "e1", debtorID: "alice", want: 5000,
		},
		{
			name: "partial settlement reduces the debt",
			transactions: []models.Transaction{
				expense("e1", 10000, "me", map[string]int64{"alice": 10000}),
				settlement("s1", 6000, "alice", "alice", models.Link{ParentID: "e1", Allocated: 6000}),
			},
			parentID: "e1", debtorID: "alice", want: 4000,
		},
		{
			name: "child counted once despite duplicate links",
			transactions: []models.Transaction{
				expense("e1", 10000, "me", map[string]int64{"alice": 10000}),
				settlement("s1", 3000, "alice", "alice",
					models.Link{ParentID: "e1", Allocated: 3000},
					models.Link{ParentID: "e1", Allocated: 3000},
				),
			},
			parentID: "e1", debtorID: "alice", want: 7000,
		},
		{
			name: "legacy settlement without links counts its full amount",
			transactions: []models.Transaction{
				expense("e1", 10000, "me", map[string]int64{"alice": 10000}),
				{
					ID: "s1", Kind: models.KindSettlement, Amount: 2500,
					PayerID: "alice", Participants: []string{"alice"},
					ParentIDs: []string{"e1"},
				},
			},
			parentID: "e1", debtorID: "alice", want: 7500,
		},
		{
			name: "settlement not involving the debtor is ignored",
			transactions: []models.Transaction{
				expense("e1", 10000, "me", map[string]int64{"alice": 5000, "bob": 5000}),
				settlement("s1", 5000, "bob", "bob", models.Link{ParentID: "e1", Allocated: 5000}),
			},
			parentID: "e1", debtorID: "alice", want: 5000,
		},
		{
			name: "product refund hands back the debtor's share",
			transactions: []models.Transaction{
				expense("e1", 10000, "me", map[string]int64{"me": 5000, "alice": 5000}),
				{
					ID: "r1", Kind: models.KindProductRefund, Amount: -3000, PayerID: "me",
					Splits:    map[string]int64{"me": -1500, "alice": -1500},
					Links:     []models.Link{{ParentID: "e1", Allocated: -3000}},
					ParentIDs: []string{"e1"},
				},
			},
			parentID: "e1", debtorID: "alice", want: 3500,
		},
		{
			name: "overpayment leaves a credit, never clamped",
			transactions: []models.Transaction{
				expense("e1", 4000, "me", map[string]int64{"alice": 4000}),
				settlement("s1", 5000, "alice", "alice", models.Link{ParentID: "e1", Allocated: 5000}),
			},
			parentID: "e1", debtorID: "alice", want: -1000,
		},
		{
			name: "children of a credit-bearing settlement spend it down",
			transactions: []models.Transaction{
				expense("e1", 4000, "me", map[string]int64{"alice": 4000}),
				settlement("s1", 5000, "alice", "alice", models.Link{ParentID: "e1", Allocated: 5000}),
				settlement("g1", 600, "me", "alice", models.Link{ParentID: "s1", Allocated: 600}),
			},
			parentID: "e1", debtorID: "alice", want: -400,
		},
		{
			name: "excluded transaction does not count",
			transactions: []models.Transaction{
				expense("e1", 10000, "me", map[string]int64{"alice": 10000}),
				settlement("s1", 6000, "alice", "alice", models.Link{ParentID: "e1", Allocated: 6000}),
			},
			parentID: "e1", debtorID: "alice", excludeID: "s1", want: 10000,
		},
		{
			name: "deleted children are invisible",
			transactions: []models.Transaction{
				expense("e1", 10000, "me", map[string]int64{"alice": 10000}),
				func() models.Transaction {
					s := settlement("s1", 6000, "alice", "alice", models.Link{ParentID: "e1", Allocated: 6000})
					s.IsDeleted = true
					return s
				}(),
			},
			parentID: "e1", debtorID: "alice", want: 10000,
		},
		{
			name: "unknown debtor owes nothing",
			transactions: []models.Transaction{
				expense("e1", 10000, "me", map[string]int64{"alice": 10000}),
			},
			parentID: "e1", debtorID: "carol", want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := findTransaction(tt.transactions, tt.parentID)
			if parent == nil {
				t.Fatalf("parent %s not in fixture", tt.parentID)
			}
			got := Outstanding(parent, tt.debtorID, tt.transactions, tt.excludeID)
			if got != tt.want {
				t.Errorf("Outstanding() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestOutstandingIdempotent checks that resolving twice over an unchanged
// snapshot returns the same value.
func TestOutstandingIdempotent(t *testing.T) {
	txns := []models.Transaction{
		expense("e1", 10000, "me", map[string]int64{"me": 5000, "alice": 5000}),
		settlement("s1", 2000, "alice", "alice", models.Link{ParentID: "e1", Allocated: 2000}),
		settlement("s2", 4000, "alice", "alice", models.Link{ParentID: "e1", Allocated: 4000}),
	}
	parent := findTransaction(txns, "e1")

	first := Outstanding(parent, "alice", txns, "")
	second := Outstanding(parent, "alice", txns, "")
	if first != second {
		t.Errorf("Outstanding not idempotent: %d then %d", first, second)
	}
	if first != -1000 {
		t.Errorf("Outstanding() = %d, want -1000", first)
	}
}

// TestCreditConsumptionBounded checks that spending a credit moves the
// remaining value toward zero without its magnitude ever exceeding the
// original credit.
func TestCreditConsumptionBounded(t *testing.T) {
	base := []models.Transaction{
		expense("e1", 4000, "me", map[string]int64{"alice": 4000}),
		settlement("s1", 5000, "alice", "alice", models.Link{ParentID: "e1", Allocated: 5000}),
	}
	parent := findTransaction(base, "e1")
	credit := Outstanding(parent, "alice", base, "")
	if credit != -1000 {
		t.Fatalf("credit = %d, want -1000", credit)
	}

	for _, tt := range []struct {
		spend int64
		want  int64
	}{
		{spend: 100, want: -900},
		{spend: 500, want: -500},
		{spend: 1000, want: 0},
		// An over-sized allocation consumes the whole credit and stops
		// there; it never turns the credit into fresh debt.
		{spend: 1500, want: 0},
	} {
		txns := append(append([]models.Transaction(nil), base...),
			settlement("g1", tt.spend, "me", "alice", models.Link{ParentID: "s1", Allocated: tt.spend}))
		remaining := Outstanding(findTransaction(txns, "e1"), "alice", txns, "")
		if remaining != tt.want {
			t.Errorf("spend %d: remaining = %d, want %d", tt.spend, remaining, tt.want)
		}
		if abs(remaining) > abs(credit) {
			t.Errorf("spend %d: |remaining| = %d exceeds original credit %d", tt.spend, abs(remaining), abs(credit))
		}
	}
}
