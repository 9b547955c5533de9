// Package ledger implements the reconciliation engine: split computation,
// balance aggregation, outstanding-debt resolution, link allocation planning,
// settlement netting and data-health scanning. Every function here is a pure
// computation over the snapshot it is handed; nothing in this package does
// I/O or holds state.
package ledger

import (
	"fmt"
	"strings"
)

// ValidationError reports a single field-level problem with a draft or
// transaction. It is returned to callers as structured data, never embedded
// in UI strings.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one validation pass so
// the caller can surface all of them at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// ReferenceError reports a link pointing at a parent the store cannot
// resolve. It is recoverable: the record is still saved, the resolver treats
// the link as contributing zero, and the health scanner flags it.
type ReferenceError struct {
	TransactionID string
	ParentID      string
}

func (e ReferenceError) Error() string {
	return fmt.Sprintf("transaction %s links unresolvable parent %s", e.TransactionID, e.ParentID)
}
