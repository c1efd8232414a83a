package repository

import (
	"context"
	"sync"

	"github.com/sebasr/greet-service/internal/models"
)

// MemoryGreetingRepository keeps mappings in process memory. It backs the
// "memory" database driver and is lost on restart.
type MemoryGreetingRepository struct {
	mu        sync.RWMutex
	greetings map[string]models.Greeting
}

// NewMemoryGreetingRepository creates an empty in-memory greeting repository
func NewMemoryGreetingRepository() *MemoryGreetingRepository {
	return &MemoryGreetingRepository{
		greetings: make(map[string]models.Greeting),
	}
}

// Find retrieves the mapping for name
func (r *MemoryGreetingRepository) Find(_ context.Context, name string) (*models.Greeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.greetings[name]
	if !ok {
		return nil, ErrGreetingNotFound
	}
	return &g, nil
}

// Create stores a new mapping
func (r *MemoryGreetingRepository) Create(_ context.Context, greeting *models.Greeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.greetings[greeting.Name]; ok {
		return ErrGreetingExists
	}
	r.greetings[greeting.Name] = *greeting
	return nil
}

// Update replaces the greeting text of an existing mapping
func (r *MemoryGreetingRepository) Update(_ context.Context, greeting *models.Greeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.greetings[greeting.Name]
	if !ok {
		return ErrGreetingNotFound
	}
	existing.Greeting = greeting.Greeting
	existing.UpdatedAt = greeting.UpdatedAt
	r.greetings[greeting.Name] = existing

	greeting.CreatedAt = existing.CreatedAt
	return nil
}
