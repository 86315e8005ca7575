package repository

import (
	"context"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
)

// ContractRepository defines the interface for contract data operations.
// The engine itself holds no state between calls; everything durable goes
// through here.
type ContractRepository interface {
	// Create stores a new contract
	Create(ctx context.Context, contract *domain.Contract) error

	// GetByContractID retrieves a contract by its human-facing contract ID
	GetByContractID(ctx context.Context, contractID string) (*domain.Contract, error)

	// List retrieves all contracts, newest first
	List(ctx context.Context) ([]*domain.Contract, error)

	// Update persists a new contract state. expectedVersion is the
	// optimistic concurrency token read alongside the contract; the update
	// fails with a version conflict when the row has moved since.
	Update(ctx context.Context, contract *domain.Contract, expectedVersion int) error

	// Delete removes a contract permanently; its payments cascade
	Delete(ctx context.Context, contractID string) error
}

// PaymentRepository defines the interface for the append-only payment ledger
type PaymentRepository interface {
	// Create appends a ledger entry
	Create(ctx context.Context, payment *domain.Payment) error

	// ListByContractID retrieves a contract's ledger in insertion order
	ListByContractID(ctx context.Context, contractID string) ([]*domain.Payment, error)
}
