package repository

import (
	"context"

	"github.com/sebasr/greet-service/internal/models"
)

// MockGreetingRepository is a mock implementation of GreetingRepository for testing
type MockGreetingRepository struct {
	FindFunc   func(ctx context.Context, name string) (*models.Greeting, error)
	CreateFunc func(ctx context.Context, greeting *models.Greeting) error
	UpdateFunc func(ctx context.Context, greeting *models.Greeting) error
}

// NewMockGreetingRepository creates a mock that stores nothing and finds nothing
func NewMockGreetingRepository() *MockGreetingRepository {
	return &MockGreetingRepository{
		FindFunc: func(_ context.Context, _ string) (*models.Greeting, error) {
			return nil, ErrGreetingNotFound
		},
		CreateFunc: func(_ context.Context, _ *models.Greeting) error {
			return nil
		},
		UpdateFunc: func(_ context.Context, _ *models.Greeting) error {
			return ErrGreetingNotFound
		},
	}
}

// Find implements GreetingRepository.Find
func (m *MockGreetingRepository) Find(ctx context.Context, name string) (*models.Greeting, error) {
	return m.FindFunc(ctx, name)
}

// Create implements GreetingRepository.Create
func (m *MockGreetingRepository) Create(ctx context.Context, greeting *models.Greeting) error {
	return m.CreateFunc(ctx, greeting)
}

// Update implements GreetingRepository.Update
func (m *MockGreetingRepository) Update(ctx context.Context, greeting *models.Greeting) error {
	return m.UpdateFunc(ctx, greeting)
}
