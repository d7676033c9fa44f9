package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx is the subset of 'sql.Tx' exposed to transaction callbacks; queries/executions run against it take place inside
// the transaction.
type Tx interface {
	Executable
	Queryable
}

// TxCallback will be run with a transaction scoped executor; returning an error triggers a rollback.
type TxCallback func(tx Tx) error

// WithTransaction runs the provided callback inside a transaction, committing on success and rolling back if the
// callback returns an error. The rollback error, if any, is subsumed by the callback error.
func WithTransaction(ctx context.Context, db *sql.DB, callback TxCallback) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", handleError(err))
	}

	err = callback(tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", handleError(err))
	}

	return nil
}
