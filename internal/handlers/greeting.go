// Package handlers contains HTTP request handlers for the greet service.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/sebasr/greet-service/internal/middleware"
	"github.com/sebasr/greet-service/internal/repository"
	"github.com/sebasr/greet-service/internal/service"
)

const (
	defaultName = "World"
	textPlain   = "text/plain; charset=utf-8"
)

// GreetingResponse represents the greeting response
type GreetingResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error returned by the JSON routes
type ErrorResponse struct {
	Error string `json:"error"`
}

// GreetingHandler handles greeting requests
type GreetingHandler struct {
	svc *service.GreetingService
}

// NewGreetingHandler creates a new greeting handler
func NewGreetingHandler(svc *service.GreetingService) *GreetingHandler {
	return &GreetingHandler{svc: svc}
}

// GetDefaultMessage greets the world
// GET /greet
func (h *GreetingHandler) GetDefaultMessage(c *gin.Context) {
	h.respondWithGreeting(c, defaultName)
}

// GetMessage greets the name in the path
// GET /greet/:name
func (h *GreetingHandler) GetMessage(c *gin.Context) {
	h.respondWithGreeting(c, c.Param("name"))
}

func (h *GreetingHandler) respondWithGreeting(c *gin.Context, who string) {
	msg, err := h.svc.Resolve(c.Request.Context(), who)
	if err != nil {
		log.Printf("Failed to resolve greeting: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
		return
	}

	c.JSON(http.StatusOK, GreetingResponse{Message: msg})
}

// UpdateDefaultGreeting sets the greeting used for names without a mapping
// PUT /greet/greeting
func (h *GreetingHandler) UpdateDefaultGreeting(c *gin.Context) {
	var req service.UpdateDefaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	if err := h.svc.UpdateDefault(req); err != nil {
		if errors.Is(err, service.ErrMissingGreeting) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No greeting provided"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
		return
	}

	if subject, ok := middleware.GetSubject(c); ok {
		log.Printf("Default greeting set to %q by %s", *req.Greeting, subject)
	}

	c.Status(http.StatusNoContent)
}

// CreateMapping stores the plain text body as the greeting for name
// POST /greet/db/:name
func (h *GreetingHandler) CreateMapping(c *gin.Context) {
	name := c.Param("name")

	body, err := c.GetRawData()
	if err != nil {
		c.Data(http.StatusBadRequest, textPlain, []byte("Unable to read request body"))
		return
	}

	if _, err := h.svc.CreateMapping(c.Request.Context(), name, string(body)); err != nil {
		switch {
		case errors.Is(err, repository.ErrGreetingExists):
			c.Data(http.StatusConflict, textPlain, []byte("Mapping for "+name+" already exists"))
		case errors.Is(err, service.ErrInvalidName):
			c.Data(http.StatusBadRequest, textPlain, []byte("Name must not be empty"))
		default:
			log.Printf("Failed to create greeting mapping for %q: %v", name, err)
			c.Data(http.StatusInternalServerError, textPlain, []byte("Failed to create mapping"))
		}
		return
	}

	c.Header("Location", "/greet/"+url.PathEscape(name))
	c.Status(http.StatusCreated)
}

// UpdateMapping replaces the greeting stored for name with the plain text body
// PUT /greet/db/:name
func (h *GreetingHandler) UpdateMapping(c *gin.Context) {
	name := c.Param("name")

	body, err := c.GetRawData()
	if err != nil {
		c.Data(http.StatusBadRequest, textPlain, []byte("Unable to read request body"))
		return
	}

	if _, err := h.svc.UpdateMapping(c.Request.Context(), name, string(body)); err != nil {
		switch {
		case errors.Is(err, repository.ErrGreetingNotFound), errors.Is(err, service.ErrInvalidName):
			c.Data(http.StatusNotFound, textPlain, []byte("Mapping for "+name+" not found"))
		default:
			log.Printf("Failed to update greeting mapping for %q: %v", name, err)
			c.Data(http.StatusInternalServerError, textPlain, []byte("Failed to update mapping"))
		}
		return
	}

	c.Data(http.StatusOK, textPlain, []byte(name))
}
