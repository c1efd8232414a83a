package service

import "sync/atomic"

// DefaultGreetingHolder holds the greeting used for names without a stored
// mapping. Get and Set are safe for concurrent use; a reader always sees one
// complete value that was Set (or the initial one).
type DefaultGreetingHolder struct {
	value atomic.Pointer[string]
}

// NewDefaultGreetingHolder creates a holder initialised to initial
func NewDefaultGreetingHolder(initial string) *DefaultGreetingHolder {
	h := &DefaultGreetingHolder{}
	h.Set(initial)
	return h
}

// Get returns the current default greeting
func (h *DefaultGreetingHolder) Get() string {
	return *h.value.Load()
}

// Set replaces the default greeting
func (h *DefaultGreetingHolder) Set(value string) {
	h.value.Store(&value)
}
