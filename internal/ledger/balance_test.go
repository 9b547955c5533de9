package ledger

import (
	"testing"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

var testParticipants = []models.Participant{
	{ID: "me", Name: "Me"},
	{ID: "alice", Name: "Alice"},
	{ID: "bob", Name: "Bob"},
}

func TestComputeBalances(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		transactions []models.Transaction
		validate     func(t *testing.T, b Balances)
	}{
		{
			name: "expense paid by primary user",
			transactions: []models.Transaction{{
				ID: "e1", Kind: models.KindExpense, Amount: 10000, PayerID: "me",
				Category: "food",
				Splits:   map[string]int64{"me": 5000, "alice": 5000},
			}},
			validate: func(t *testing.T, b Balances) {
				if b.Net["alice"] != 5000 {
					t.Errorf("Net[alice] = %d, want 5000", b.Net["alice"])
				}
				if b.TotalPaidByMe != 10000 {
					t.Errorf("TotalPaidByMe = %d, want 10000", b.TotalPaidByMe)
				}
				if b.TotalMyShare != 5000 {
					t.Errorf("TotalMyShare = %d, want 5000", b.TotalMyShare)
				}
				if b.CategoryTotals["food"] != 5000 {
					t.Errorf("CategoryTotals[food] = %d, want 5000", b.CategoryTotals["food"])
				}
			},
		},
		{
			name: "expense paid by someone else",
			transactions: []models.Transaction{{
				ID: "e1", Kind: models.KindExpense, Amount: 9000, PayerID: "alice",
				Splits: map[string]int64{"alice": 6000, "me": 3000},
			}},
			validate: func(t *testing.T, b Balances) {
				if b.Net["alice"] != -3000 {
					t.Errorf("Net[alice] = %d, want -3000", b.Net["alice"])
				}
				if b.TotalMyShare != 3000 {
					t.Errorf("TotalMyShare = %d, want 3000", b.TotalMyShare)
				}
			},
		},
		{
			name: "settlement directions",
			transactions: []models.Transaction{
				{
					ID: "e1", Kind: models.KindExpense, Amount: 10000, PayerID: "me",
					Splits: map[string]int64{"me": 5000, "alice": 5000},
				},
				{
					ID: "s1", Kind: models.KindSettlement, Amount: 3000,
					PayerID: "alice", Participants: []string{"alice"},
				},
				{
					ID: "s2", Kind: models.KindSettlement, Amount: 500,
					PayerID: "me", Participants: []string{"bob"},
				},
			},
			validate: func(t *testing.T, b Balances) {
				if b.Net["alice"] != 2000 {
					t.Errorf("Net[alice] = %d, want 2000", b.Net["alice"])
				}
				if b.Net["bob"] != 500 {
					t.Errorf("Net[bob] = %d, want 500", b.Net["bob"])
				}
			},
		},
		{
			name: "forgiveness by primary user moves nothing",
			transactions: []models.Transaction{
				{
					ID: "f1", Kind: models.KindForgiveness, Amount: 2000,
					PayerID: "me", Participants: []string{"alice"},
				},
			},
			validate: func(t *testing.T, b Balances) {
				if b.Net["alice"] != 0 {
					t.Errorf("Net[alice] = %d, want 0", b.Net["alice"])
				}
			},
		},
		{
			name: "forgiveness by counterpart reduces their balance",
			transactions: []models.Transaction{
				{
					ID: "f1", Kind: models.KindForgiveness, Amount: 2000,
					PayerID: "alice", Participants: []string{"alice"},
				},
			},
			validate: func(t *testing.T, b Balances) {
				if b.Net["alice"] != -2000 {
					t.Errorf("Net[alice] = %d, want -2000", b.Net["alice"])
				}
			},
		},
		{
			name: "income only feeds the monthly aggregate",
			transactions: []models.Transaction{
				{
					ID: "i1", Kind: models.KindIncome, Amount: 250000, PayerID: "me",
					Timestamp: now.Add(-24 * time.Hour).Unix(),
				},
				{
					ID: "i2", Kind: models.KindIncome, Amount: 100000, PayerID: "me",
					Timestamp: now.AddDate(0, -1, 0).Unix(),
				},
			},
			validate: func(t *testing.T, b Balances) {
				if b.MonthlyIncome != 250000 {
					t.Errorf("MonthlyIncome = %d, want 250000", b.MonthlyIncome)
				}
				if b.Net["alice"] != 0 {
					t.Errorf("Net[alice] = %d, want 0", b.Net["alice"])
				}
			},
		},
		{
			name: "product refund walks the balance back",
			transactions: []models.Transaction{
				{
					ID: "e1", Kind: models.KindExpense, Amount: 10000, PayerID: "me",
					Splits: map[string]int64{"me": 5000, "alice": 5000},
				},
				{
					ID: "r1", Kind: models.KindProductRefund, Amount: -3000, PayerID: "me",
					Splits:    map[string]int64{"me": -1500, "alice": -1500},
					Links:     []models.Link{{ParentID: "e1", Allocated: -3000}},
					ParentIDs: []string{"e1"},
				},
			},
			validate: func(t *testing.T, b Balances) {
				if b.Net["alice"] != 3500 {
					t.Errorf("Net[alice] = %d, want 3500", b.Net["alice"])
				}
			},
		},
		{
			name: "deleted transactions are invisible",
			transactions: []models.Transaction{
				{
					ID: "e1", Kind: models.KindExpense, Amount: 10000, PayerID: "me",
					Splits: map[string]int64{"me": 5000, "alice": 5000}, IsDeleted: true,
				},
			},
			validate: func(t *testing.T, b Balances) {
				if b.Net["alice"] != 0 {
					t.Errorf("Net[alice] = %d, want 0", b.Net["alice"])
				}
				if b.TotalPaidByMe != 0 {
					t.Errorf("TotalPaidByMe = %d, want 0", b.TotalPaidByMe)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBalances(tt.transactions, testParticipants, now)
			tt.validate(t, b)
		})
	}
}

// TestBalanceSymmetry checks that the same expense produces mirrored
// balances when viewed from the other party's ledger.
func TestBalanceSymmetry(t *testing.T) {
	now := time.Now()

	// My ledger: I paid, alice owes me her share.
	mine := []models.Transaction{{
		ID: "e1", Kind: models.KindExpense, Amount: 10000, PayerID: "me",
		Splits: map[string]int64{"me": 5000, "alice": 5000},
	}}
	// Alice's ledger of the same dinner: the payer is her contact "bob"
	// (me), and her own share is what she owes him.
	theirs := []models.Transaction{{
		ID: "e1", Kind: models.KindExpense, Amount: 10000, PayerID: "bob",
		Splits: map[string]int64{"bob": 5000, "me": 5000},
	}}

	b1 := ComputeBalances(mine, testParticipants, now)
	b2 := ComputeBalances(theirs, testParticipants, now)

	if b1.Net["alice"] != -b2.Net["bob"] {
		t.Errorf("symmetry broken: Net[alice] = %d, mirrored Net[bob] = %d", b1.Net["alice"], b2.Net["bob"])
	}
}
