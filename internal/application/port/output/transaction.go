package output

import (
	"context"
)

// TransactionManager runs repository writes atomically.
// Repositories pick the transaction up from the context passed to fn.
type TransactionManager interface {
	// InTransaction commits when fn returns nil and rolls back otherwise
	InTransaction(ctx context.Context, fn func(txCtx context.Context) error) error

	// BeginTransaction starts a transaction the caller must finish
	BeginTransaction(ctx context.Context) (Transaction, error)
}

// Transaction represents an active transaction
type Transaction interface {
	Commit() error
	Rollback() error
	Context() context.Context
}
