package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/mmynk/splitledger/internal/ledger"
)

// outstandingCmd holds the flags for the 'outstanding' subcommand.
type outstandingCmd struct {
	parentID string
	debtorID string
}

func (*outstandingCmd) Name() string     { return "outstanding" }
func (*outstandingCmd) Synopsis() string { return "show the unresolved debt on one transaction" }
func (*outstandingCmd) Usage() string {
	return `splitledger outstanding -parent <id> [-debtor <id>]

  Resolves the remaining debt a participant owes on a transaction after all
  linked settlements, forgiveness and refunds are applied. The debtor
  defaults to the transaction's counterpart.
`
}

func (c *outstandingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.parentID, "parent", "", "Transaction to resolve.")
	f.StringVar(&c.debtorID, "debtor", "", "Participant whose debt to resolve.")
}

func (c *outstandingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.parentID == "" {
		fmt.Fprintln(os.Stderr, "Error: -parent is required")
		return subcommands.ExitUsageError
	}

	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger %q: %v\n", *dbPath, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	parent, err := store.GetTransaction(ctx, c.parentID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading transaction %q: %v\n", c.parentID, err)
		return subcommands.ExitFailure
	}

	debtorID := c.debtorID
	if debtorID == "" {
		debtorID = parent.Counterpart()
	}
	if debtorID == "" {
		fmt.Fprintln(os.Stderr, "Error: -debtor is required for transactions without a counterpart")
		return subcommands.ExitUsageError
	}

	all, err := store.ListTransactions(ctx, parent.SpaceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading transactions: %v\n", err)
		return subcommands.ExitFailure
	}

	outstanding := ledger.Outstanding(parent, debtorID, all, "")
	switch {
	case outstanding > 0:
		fmt.Printf("%s still owes %s on %s\n", debtorID, display(outstanding), parent.ID)
	case outstanding < 0:
		fmt.Printf("%s is owed %s back on %s\n", debtorID, display(-outstanding), parent.ID)
	default:
		fmt.Printf("%s is fully settled on %s\n", debtorID, parent.ID)
	}
	return subcommands.ExitSuccess
}
