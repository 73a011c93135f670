package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions. Folder mutations that
// touch multiple rows (move + descendant rebase, cascade delete, batch link
// writes) run entirely inside one ExecTx so a partial failure rolls back.
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error
}
