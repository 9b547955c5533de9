// Package models defines the core domain models for Splitledger.
//
// # Models
//
//   - Participant: a person who shares expenses with the primary user
//   - Transaction: the central entity; expenses, income, settlements,
//     forgiveness records and product refunds are all transactions,
//     distinguished by an explicit Kind enum
//   - Link: a reference from a transaction to a parent transaction plus the
//     signed amount it contributes toward resolving the parent's debt
//   - TransactionDraft: an unsaved, mutable transaction shape edited by the
//     UI layer and shaped by the link allocation planner before commit
//
// # Design Principles
//
//  1. **Integer money**: every amount is an int64 in minor currency units.
//     No float ever touches a monetary value.
//  2. **Explicit kinds**: the record type is a single Kind enum with
//     exhaustive switches everywhere, never a combination of boolean flags.
//  3. **Avoid circular references**: transactions reference their parents by
//     ID only. Children are created strictly after their parents and parent
//     IDs are immutable after creation, so cycles cannot form.
//  4. **Soft delete**: deleted transactions are excluded from aggregation but
//     never physically removed, because other records may reference them.
package models
