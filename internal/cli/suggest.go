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

// suggestCmd holds the flags for the 'suggest' subcommand.
type suggestCmd struct {
	space     string
	threshold int64
}

func (*suggestCmd) Name() string     { return "suggest" }
func (*suggestCmd) Synopsis() string { return "suggest transfers that settle all balances" }
func (*suggestCmd) Usage() string {
	return `splitledger suggest [-space <space>] [-threshold <minor-units>]

  Nets the current balances into a short list of transfers. Balances below
  the threshold are ignored.
`
}

func (c *suggestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.space, "space", models.DefaultSpaceID, "Space to report on.")
	f.Int64Var(&c.threshold, "threshold", ledger.MaterialityThreshold, "Smallest transfer worth suggesting, in minor units.")
}

func (c *suggestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	transfers := ledger.SuggestSettlements(b, c.threshold)
	if len(transfers) == 0 {
		fmt.Println("Everyone is settled up.")
		return subcommands.ExitSuccess
	}

	names := participantNames(participants)
	for _, tr := range transfers {
		fmt.Printf("%s pays %s %s\n", nameOf(names, tr.From), nameOf(names, tr.To), display(tr.Amount))
	}
	return subcommands.ExitSuccess
}
