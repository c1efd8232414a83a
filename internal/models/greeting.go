// Package models contains the domain types shared by the greet service layers.
package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyName is returned when a greeting mapping has no name
var ErrEmptyName = errors.New("greeting name must not be empty")

// Greeting maps a name to the greeting used for it
type Greeting struct {
	Name      string    `json:"name" db:"name"`         // Primary key, immutable once created
	Greeting  string    `json:"greeting" db:"greeting"` // Message placed before the name
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NewGreeting creates a mapping with both timestamps set to now
func NewGreeting(name, greeting string) *Greeting {
	now := time.Now().UTC()
	return &Greeting{
		Name:      name,
		Greeting:  greeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the mapping invariants
func (g *Greeting) Validate() error {
	if g.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Message formats the greeting for who, e.g. "Hello Joe!"
func Message(greeting, who string) string {
	return fmt.Sprintf("%s %s!", greeting, who)
}
