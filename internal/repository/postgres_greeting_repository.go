package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sebasr/greet-service/internal/database"
	"github.com/sebasr/greet-service/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresGreetingRepository implements GreetingRepository using PostgreSQL
type PostgresGreetingRepository struct {
	db database.Queryer
}

// NewPostgresGreetingRepository creates a new PostgreSQL greeting repository
func NewPostgresGreetingRepository(db database.Queryer) *PostgresGreetingRepository {
	return &PostgresGreetingRepository{db: db}
}

// Find retrieves the mapping for name
func (r *PostgresGreetingRepository) Find(ctx context.Context, name string) (*models.Greeting, error) {
	query := `
		SELECT name, greeting, created_at, updated_at
		FROM greeting
		WHERE name = $1
	`

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
func (r *PostgresGreetingRepository) Create(ctx context.Context, greeting *models.Greeting) error {
	query := `
		INSERT INTO greeting (name, greeting, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := database.QueryerFromContext(ctx, r.db).ExecContext(
		ctx,
		query,
		greeting.Name,
		greeting.Greeting,
		greeting.CreatedAt,
		greeting.UpdatedAt,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return ErrGreetingExists
		}
		return err
	}

	return nil
}

// Update replaces the greeting text of an existing mapping
func (r *PostgresGreetingRepository) Update(ctx context.Context, greeting *models.Greeting) error {
	query := `
		UPDATE greeting
		SET greeting = $1, updated_at = $2
		WHERE name = $3
		RETURNING created_at
	`

	err := database.QueryerFromContext(ctx, r.db).QueryRowContext(
		ctx,
		query,
		greeting.Greeting,
		greeting.UpdatedAt,
		greeting.Name,
	).Scan(&greeting.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGreetingNotFound
		}
		return err
	}

	return nil
}

// isPgUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
