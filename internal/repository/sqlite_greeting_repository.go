package repository

import (
	"context"
	"database/sql"
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sebasr/greet-service/internal/database"
	"github.com/sebasr/greet-service/internal/models"
)

// SQLiteGreetingRepository implements GreetingRepository using an embedded SQLite file
type SQLiteGreetingRepository struct {
	db database.Queryer
}

// NewSQLiteGreetingRepository creates a new SQLite greeting repository
func NewSQLiteGreetingRepository(db database.Queryer) *SQLiteGreetingRepository {
	return &SQLiteGreetingRepository{db: db}
}

// Find retrieves the mapping for name
func (r *SQLiteGreetingRepository) Find(ctx context.Context, name string) (*models.Greeting, error) {
	query := `SELECT name, greeting, created_at, updated_at FROM greeting WHERE name = ?`

	var g models.Greeting
	err := database.QueryerFromContext(ctx, r.db).QueryRowContext(ctx, query, name).Scan(
		&g.Name,
		&g.Greeting,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGreetingNotFound
		}
		return nil, err
	}

	return &g, nil
}

// Create stores a new mapping
func (r *SQLiteGreetingRepository) Create(ctx context.Context, greeting *models.Greeting) error {
	query := `INSERT INTO greeting (name, greeting, created_at, updated_at) VALUES (?, ?, ?, ?)`

	_, err := database.QueryerFromContext(ctx, r.db).ExecContext(
		ctx,
		query,
		greeting.Name,
		greeting.Greeting,
		greeting.CreatedAt,
		greeting.UpdatedAt,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrGreetingExists
		}
		return err
	}

	return nil
}

// Update replaces the greeting text of an existing mapping
func (r *SQLiteGreetingRepository) Update(ctx context.Context, greeting *models.Greeting) error {
	q := database.QueryerFromContext(ctx, r.db)

	result, err := q.ExecContext(
		ctx,
		`UPDATE greeting SET greeting = ?, updated_at = ? WHERE name = ?`,
		greeting.Greeting,
		greeting.UpdatedAt,
		greeting.Name,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrGreetingNotFound
	}

	// RETURNING loses the column type, so read created_at back separately
	return q.QueryRowContext(ctx, `SELECT created_at FROM greeting WHERE name = ?`, greeting.Name).
		Scan(&greeting.CreatedAt)
}

// isSQLiteUniqueViolation matches primary key and unique constraint failures.
// Other constraint failures such as NOT NULL are left to the caller.
func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
