package ledger

import (
	"reflect"
	"testing"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		name      string
		balances  map[string]int64
		threshold int64
		want      []Transfer
	}{
		{
			name:     "single creditor absorbs debtors until exhausted",
			balances: map[string]int64{"alice": 3000, "bob": -2000, "carol": -1500},
			want: []Transfer{
				{From: "bob", To: "alice", Amount: 2000},
				{From: "carol", To: "alice", Amount: 1000},
			},
		},
		{
			name:     "debtor spread over several creditors",
			balances: map[string]int64{"alice": 1500, "bob": 1500, "carol": -3000},
			want: []Transfer{
				{From: "carol", To: "alice", Amount: 1500},
				{From: "carol", To: "bob", Amount: 1500},
			},
		},
		{
			name:     "balances inside the threshold are ignored",
			balances: map[string]int64{"alice": 90, "bob": -90},
			want:     nil,
		},
		{
			name:     "all square",
			balances: map[string]int64{"alice": 0, "bob": 0},
			want:     nil,
		},
		{
			name:      "custom threshold",
			balances:  map[string]int64{"alice": 600, "bob": -600},
			threshold: 500,
			want:      []Transfer{{From: "bob", To: "alice", Amount: 600}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.balances, tt.threshold)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSuggestSettlements(t *testing.T) {
	// alice owes the primary user, the primary user owes bob more than that.
	b := Balances{Net: map[string]int64{"alice": 2000, "bob": -5000}}
	got := SuggestSettlements(b, 0)
	want := []Transfer{
		{From: "me", To: "bob", Amount: 3000},
		{From: "alice", To: "bob", Amount: 2000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SuggestSettlements() = %v, want %v", got, want)
	}
}

// TestSuggestDeterministic checks that equal magnitudes are ordered by ID so
// repeated calls propose the same transfers.
func TestSuggestDeterministic(t *testing.T) {
	balances := map[string]int64{"zoe": 1000, "amy": 1000, "bob": -2000}
	first := Suggest(balances, 0)
	for i := 0; i < 10; i++ {
		if got := Suggest(balances, 0); !reflect.DeepEqual(got, first) {
			t.Fatalf("iteration %d: Suggest() = %v, want %v", i, got, first)
		}
	}
	if first[0].To != "amy" {
		t.Errorf("first transfer goes to %s, want amy (ID tiebreak)", first[0].To)
	}
}
