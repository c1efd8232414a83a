package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebasr/greet-service/internal/config"
)

// setupSQLiteDB opens a migrated SQLite database in a temp directory
func setupSQLiteDB(t *testing.T) *DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "greet.db"),
	}
	require.NoError(t, Migrate(cfg))

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func countGreetings(t *testing.T, db *DB, name string) int {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM greeting WHERE name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n
}

func insertGreeting(ctx context.Context, q Queryer, name string) error {
	now := time.Now().UTC()
	_, err := q.ExecContext(ctx,
		`INSERT INTO greeting (name, greeting, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, "Hi", now, now)
	return err
}

func TestTxManager_Commit(t *testing.T) {
	db := setupSQLiteDB(t)
	tm := NewTxManager(db)

	err := tm.WithinTx(context.Background(), func(ctx context.Context) error {
		_, ok := txFromContext(ctx)
		require.True(t, ok, "transaction not injected into context")
		return insertGreeting(ctx, QueryerFromContext(ctx, db), "Joe")
	})

	require.NoError(t, err)
	assert.Equal(t, 1, countGreetings(t, db, "Joe"))
}

func TestTxManager_RollbackOnError(t *testing.T) {
	db := setupSQLiteDB(t)
	tm := NewTxManager(db)
	expectedErr := errors.New("usecase error")

	err := tm.WithinTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, insertGreeting(ctx, QueryerFromContext(ctx, db), "Joe"))
		return expectedErr
	})

	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, countGreetings(t, db, "Joe"))
}

func TestTxManager_RollbackOnPanic(t *testing.T) {
	db := setupSQLiteDB(t)
	tm := NewTxManager(db)

	assert.Panics(t, func() {
		_ = tm.WithinTx(context.Background(), func(ctx context.Context) error {
			require.NoError(t, insertGreeting(ctx, QueryerFromContext(ctx, db), "Joe"))
			panic("boom")
		})
	})

	assert.Equal(t, 0, countGreetings(t, db, "Joe"))
}

func TestTxManager_NestedReuse(t *testing.T) {
	db := setupSQLiteDB(t)
	tm := NewTxManager(db)

	err := tm.WithinTx(context.Background(), func(outer context.Context) error {
		outerTx, _ := txFromContext(outer)
		return tm.WithinTx(outer, func(inner context.Context) error {
			innerTx, ok := txFromContext(inner)
			require.True(t, ok, "nested transaction lost context")
			assert.Same(t, outerTx, innerTx)
			return nil
		})
	})

	require.NoError(t, err)
}

func TestTxManager_NilRunsDirectly(t *testing.T) {
	var tm *TxManager
	called := false

	err := tm.WithinTx(context.Background(), func(ctx context.Context) error {
		called = true
		_, ok := txFromContext(ctx)
		assert.False(t, ok)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
}

func TestTxManager_RequiresFunction(t *testing.T) {
	err := NewTxManager(nil).WithinTx(context.Background(), nil)
	assert.EqualError(t, err, "database: transaction function is required")
}

func TestQueryerFromContext_Fallback(t *testing.T) {
	db := setupSQLiteDB(t)
	assert.Equal(t, Queryer(db), QueryerFromContext(context.Background(), db))
}
