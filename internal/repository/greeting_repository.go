package repository

import (
	"context"
	"errors"

	"github.com/sebasr/greet-service/internal/models"
)

var (
	// ErrGreetingNotFound is returned when no mapping exists for a name
	ErrGreetingNotFound = errors.New("greeting not found")

	// ErrGreetingExists is returned when creating a mapping for a name that already has one
	ErrGreetingExists = errors.New("greeting already exists")
)

// GreetingRepository defines the interface for greeting mapping data access.
// Implementations join the transaction carried by ctx when there is one.
type GreetingRepository interface {
	// Find retrieves the mapping for name
	Find(ctx context.Context, name string) (*models.Greeting, error)

	// Create stores a new mapping, failing with ErrGreetingExists on a duplicate name
	Create(ctx context.Context, greeting *models.Greeting) error

	// Update replaces the greeting text of an existing mapping and fills in its
	// CreatedAt, failing with ErrGreetingNotFound when the name is unknown
	Update(ctx context.Context, greeting *models.Greeting) error
}
