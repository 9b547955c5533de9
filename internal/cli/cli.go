// Package cli implements the splitledger command line tool. Commands open the
// SQLite database directly and run the same ledger computations the server
// serves over HTTP.
package cli

import (
	"flag"
	"sort"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&balancesCmd{}, "reports")
	c.Register(&outstandingCmd{}, "reports")
	c.Register(&suggestCmd{}, "reports")

	c.Register(&healthCmd{}, "maintenance")
}

var dbPath = flag.String("db", "./data/ledger.db", "Path to the ledger database file")
var currencyCode = flag.String("currency", money.USD, "ISO 4217 code used to render amounts")

// openStore opens the ledger database shared by all subcommands.
func openStore() (*sqlite.SQLiteStore, error) {
	return sqlite.New(*dbPath)
}

// display renders an amount of minor units in the configured currency.
func display(amount int64) string {
	return money.New(amount, *currencyCode).Display()
}

// participantNames maps IDs to display names, falling back to the raw ID.
func participantNames(participants []models.Participant) map[string]string {
	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}
	return names
}

func nameOf(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

// sortedKeys returns m's keys in stable order for deterministic output.
func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
