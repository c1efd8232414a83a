package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type txContextKey struct{}

type txStarter interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Queryer is the subset of *sql.DB and *sql.Tx used by the repositories
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs functions inside a database transaction carried by the context.
// A nil *TxManager runs the function without a transaction.
type TxManager struct {
	db txStarter
}

// NewTxManager creates a transaction manager over db
func NewTxManager(db txStarter) *TxManager {
	return &TxManager{db: db}
}

// WithinTx begins a read-write transaction, runs fn with it in the context and
// commits when fn returns nil. Any error or panic from fn rolls the transaction
// back. Calls nested inside an existing transaction reuse it.
func (m *TxManager) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("database: transaction function is required")
	}
	if m == nil || m.db == nil {
		return fn(ctx)
	}
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("database: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}

	committed = true
	return nil
}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txContextKey{}).(*sql.Tx)
	return tx, ok
}

// QueryerFromContext returns the transaction stored in ctx, or fallback when there is none
func QueryerFromContext(ctx context.Context, fallback Queryer) Queryer {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return fallback
}
