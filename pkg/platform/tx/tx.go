// Package tx lets callers run several store writes as one database
// transaction without widening the store interfaces: the transaction rides
// the request context, and each Postgres store checks for it before falling
// back to its own pool.
package tx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type txKey struct{}

// WithTx returns a context carrying the transaction. Stores that find one in
// their context execute against it instead of the pool.
func WithTx(ctx context.Context, sqlTx *sql.Tx) context.Context {
	if sqlTx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, sqlTx)
}

// From reports the transaction carried by ctx, if any.
func From(ctx context.Context) (*sql.Tx, bool) {
	sqlTx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return sqlTx, ok
}

// Within runs fn inside a transaction on db, with a context that carries it
// to every store fn touches. An error from fn rolls the whole unit of work
// back; otherwise the transaction commits.
func Within(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
