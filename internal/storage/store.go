// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for ledger storage operations. This
// abstraction allows swapping storage backends without changing the service
// layer.
//
// Every call is independent; the store never assumes transactional
// multi-document writes across records. Implementations must recompute the
// cached net amount and has-refunds flag of every parent a child write
// touches (previous parents included, on edit) as a follow-up update.
type Store interface {
	// CreateTransaction persists a new transaction and populates its ID.
	CreateTransaction(ctx context.Context, t *models.Transaction) error

	// GetTransaction retrieves a transaction by ID, deleted or not.
	// Returns storage.ErrNotFound when the ID resolves to nothing.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// UpdateTransaction replaces an existing transaction in place, keeping
	// its ID.
	UpdateTransaction(ctx context.Context, t *models.Transaction) error

	// DeleteTransaction soft-deletes a transaction. The record stays in
	// the store but disappears from every aggregation.
	DeleteTransaction(ctx context.Context, id string) error

	// ListTransactions returns all transactions in a space, soft-deleted
	// ones included; callers filter as needed.
	ListTransactions(ctx context.Context, spaceID string) ([]models.Transaction, error)

	// QueryByParent returns the non-deleted transactions whose parent set
	// contains parentID.
	QueryByParent(ctx context.Context, parentID string) ([]models.Transaction, error)

	// CreateParticipant persists a new participant and populates its ID.
	CreateParticipant(ctx context.Context, p *models.Participant) error

	// ListParticipants returns all participants, archived ones included.
	ListParticipants(ctx context.Context) ([]models.Participant, error)

	// ArchiveParticipant flags a participant as archived. Participants are
	// never deleted because historical transactions reference their IDs.
	ArchiveParticipant(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
