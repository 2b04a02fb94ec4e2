package inventory

import (
	"context"

	"github.com/mecatos/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the inventory repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// The count header and its detail lines are one aggregate and are written
// atomically through CountRepo. Batch adjustments deliberately run outside
// the count transaction: each adjustment step commits on its own so that a
// failed step leaves earlier steps applied, matching the sequential
// reconciliation semantics.
type TransactionalRepositories interface {
	// CountRepo returns the count repository scoped to the current transaction
	CountRepo() inventory.CountRepository
	// BatchRepo returns the batch repository scoped to the current transaction
	BatchRepo() inventory.BatchRepository
	// MovementRepo returns the movement repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests and in-memory repositories.
type NoOpTransactionScope struct {
	countRepo    inventory.CountRepository
	batchRepo    inventory.BatchRepository
	movementRepo inventory.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	countRepo inventory.CountRepository,
	batchRepo inventory.BatchRepository,
	movementRepo inventory.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		countRepo:    countRepo,
		batchRepo:    batchRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function directly without transaction boundaries
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CountRepo returns the count repository
func (s *NoOpTransactionScope) CountRepo() inventory.CountRepository {
	return s.countRepo
}

// BatchRepo returns the batch repository
func (s *NoOpTransactionScope) BatchRepo() inventory.BatchRepository {
	return s.batchRepo
}

// MovementRepo returns the movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.movementRepo
}
