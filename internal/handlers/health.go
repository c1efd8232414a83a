package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Health statuses
const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// HealthCheck is a single readiness check
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckResult is the outcome of one HealthCheck
type CheckResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks,omitempty"`
}

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	checks []HealthCheck
}

// NewHealthHandler creates a health handler whose readiness runs checks
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Live reports that the process is serving requests
// GET /health
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: StatusUp})
}

// Ready runs every check and returns 503 if any of them fails
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	resp := HealthResponse{Status: StatusUp, Checks: make([]CheckResult, 0, len(h.checks))}

	for _, check := range h.checks {
		result := CheckResult{Name: check.Name(), Status: StatusUp}
		if err := check.Check(c.Request.Context()); err != nil {
			result.Status = StatusDown
			result.Error = err.Error()
			resp.Status = StatusDown
		}
		resp.Checks = append(resp.Checks, result)
	}

	code := http.StatusOK
	if resp.Status == StatusDown {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// StateCheck is up when the supplied application state is "up", ignoring case
type StateCheck struct {
	state func() string
}

// NewStateCheck creates a state check reading the current state from state
func NewStateCheck(state func() string) *StateCheck {
	return &StateCheck{state: state}
}

// Name implements HealthCheck
func (s *StateCheck) Name() string { return "state" }

// Check implements HealthCheck
func (s *StateCheck) Check(_ context.Context) error {
	if current := s.state(); !strings.EqualFold(current, "up") {
		return &stateError{state: current}
	}
	return nil
}

type stateError struct {
	state string
}

func (e *stateError) Error() string {
	return "application state is " + e.state
}

// Pinger is implemented by database.DB
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// DatabaseCheck is up when the database answers a ping
type DatabaseCheck struct {
	db Pinger
}

// NewDatabaseCheck creates a database check
func NewDatabaseCheck(db Pinger) *DatabaseCheck {
	return &DatabaseCheck{db: db}
}

// Name implements HealthCheck
func (d *DatabaseCheck) Name() string { return "database" }

// Check implements HealthCheck
func (d *DatabaseCheck) Check(ctx context.Context) error {
	return d.db.HealthCheck(ctx)
}
