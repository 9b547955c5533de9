package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

// healthCmd holds the flags for the 'health' subcommand.
type healthCmd struct {
	space  string
	repair bool
}

func (*healthCmd) Name() string     { return "health" }
func (*healthCmd) Synopsis() string { return "scan the ledger for structural problems" }
func (*healthCmd) Usage() string {
	return `splitledger health [-space <space>] [-repair]

  Flags orphaned links, self-links, missing categories, over-refunded
  expenses and diverged cached summaries. With -repair, diverged summaries
  are recomputed in place; everything else is report-only.
`
}

func (c *healthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.space, "space", models.DefaultSpaceID, "Space to scan.")
	f.BoolVar(&c.repair, "repair", false, "Recompute diverged cached summaries.")
}

func (c *healthCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	issues := ledger.ScanHealth(transactions)
	if len(issues) == 0 {
		fmt.Println("No issues found.")
		return subcommands.ExitSuccess
	}

	repaired := 0
	for _, issue := range issues {
		fmt.Printf("%-20s %s: %s\n", issue.Kind, issue.TransactionID, issue.Message)
		if c.repair && issue.Kind == ledger.IssueCacheDivergence {
			if err := store.RecomputeParentSummary(ctx, issue.TransactionID); err != nil {
				fmt.Fprintf(os.Stderr, "Error repairing %s: %v\n", issue.TransactionID, err)
				continue
			}
			repaired++
		}
	}
	if repaired > 0 {
		fmt.Printf("\nRepaired %d cached summaries.\n", repaired)
	}
	return subcommands.ExitSuccess
}
