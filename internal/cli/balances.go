package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

// balancesCmd holds the flags for the 'balances' subcommand.
type balancesCmd struct {
	space string
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "display per-participant net balances" }
func (*balancesCmd) Usage() string {
	return `splitledger balances [-space <space>]

  Aggregates the ledger and prints who owes whom, plus spending totals.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.space, "space", models.DefaultSpaceID, "Space to report on.")
}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger %q: %v\n", *dbPath, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	transactions, err := store.ListTransactions(ctx, c.space)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	participants, err := store.ListParticipants(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading participants: %v\n", err)
		return subcommands.ExitFailure
	}

	b := ledger.ComputeBalances(transactions, participants, time.Now())
	names := participantNames(participants)

	fmt.Println("Balances:")
	for _, id := range sortedKeys(b.Net) {
		net := b.Net[id]
		switch {
		case net > 0:
			fmt.Printf("  %s owes you %s\n", nameOf(names, id), display(net))
		case net < 0:
			fmt.Printf("  you owe %s %s\n", nameOf(names, id), display(-net))
		default:
			fmt.Printf("  %s is settled up\n", nameOf(names, id))
		}
	}

	fmt.Printf("\nPaid by you:   %s\n", display(b.TotalPaidByMe))
	fmt.Printf("Your share:    %s\n", display(b.TotalMyShare))
	fmt.Printf("Income (month): %s\n", display(b.MonthlyIncome))

	if len(b.CategoryTotals) > 0 {
		fmt.Println("\nBy category:")
		for _, category := range sortedKeys(b.CategoryTotals) {
			fmt.Printf("  %-12s %s\n", category, display(b.CategoryTotals[category]))
		}
	}
	return subcommands.ExitSuccess
}
