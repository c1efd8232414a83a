// Package service implements greeting resolution and the runtime changes to
// the default greeting and the stored per-name mappings.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sebasr/greet-service/internal/models"
	"github.com/sebasr/greet-service/internal/repository"
)

var (
	// ErrMissingGreeting is returned when an update request carries no greeting field
	ErrMissingGreeting = errors.New("no greeting provided")

	// ErrInvalidName is returned when a mapping is requested for an empty name
	ErrInvalidName = errors.New("invalid name")
)

// Transactor runs fn inside a transaction scope that commits when fn succeeds
// and rolls back otherwise
type Transactor interface {
	WithinTx(ctx context.Context, fn func(context.Context) error) error
}

type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// UpdateDefaultRequest is the payload of a default greeting update. A nil
// Greeting means the field was absent.
type UpdateDefaultRequest struct {
	Greeting *string `json:"greeting"`
}

// GreetingService resolves greetings and applies changes to them
type GreetingService struct {
	repo     repository.GreetingRepository
	defaults *DefaultGreetingHolder
	tx       Transactor
}

// NewGreetingService creates a greeting service. tx may be nil when the
// repository has no transactions.
func NewGreetingService(repo repository.GreetingRepository, defaults *DefaultGreetingHolder, tx Transactor) *GreetingService {
	if tx == nil {
		tx = noTx{}
	}
	return &GreetingService{
		repo:     repo,
		defaults: defaults,
		tx:       tx,
	}
}

// Resolve returns "<greeting> <name>!" using the stored mapping for name, or
// the default greeting when there is none
func (s *GreetingService) Resolve(ctx context.Context, name string) (string, error) {
	message := s.defaults.Get()

	g, err := s.repo.Find(ctx, name)
	switch {
	case err == nil:
		message = g.Greeting
	case errors.Is(err, repository.ErrGreetingNotFound):
	default:
		return "", fmt.Errorf("find greeting for %q: %w", name, err)
	}

	return models.Message(message, name), nil
}

// DefaultGreeting returns the current default greeting
func (s *GreetingService) DefaultGreeting() string {
	return s.defaults.Get()
}

// UpdateDefault replaces the default greeting for all later resolutions
func (s *GreetingService) UpdateDefault(req UpdateDefaultRequest) error {
	if req.Greeting == nil {
		return ErrMissingGreeting
	}
	s.defaults.Set(*req.Greeting)
	return nil
}

// CreateMapping stores a new greeting for name. A name that already has a
// mapping fails with repository.ErrGreetingExists; uniqueness is left to the store.
func (s *GreetingService) CreateMapping(ctx context.Context, name, greeting string) (*models.Greeting, error) {
	g := models.NewGreeting(name, greeting)
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, g)
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

// UpdateMapping replaces the greeting stored for name. An unknown name fails
// with repository.ErrGreetingNotFound and nothing is created.
func (s *GreetingService) UpdateMapping(ctx context.Context, name, greeting string) (*models.Greeting, error) {
	g := &models.Greeting{
		Name:      name,
		Greeting:  greeting,
		UpdatedAt: time.Now().UTC(),
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, g)
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}
