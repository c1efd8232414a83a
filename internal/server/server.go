// Package server provides HTTP server setup and configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sebasr/greet-service/internal/auth"
	"github.com/sebasr/greet-service/internal/config"
	"github.com/sebasr/greet-service/internal/handlers"
	"github.com/sebasr/greet-service/internal/middleware"
	"github.com/sebasr/greet-service/internal/service"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("RequestID", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// accessLogFormatter writes one plain line per request without ANSI colors
func accessLogFormatter(p gin.LogFormatterParams) string {
	requestID, _ := p.Keys["RequestID"].(string)
	return fmt.Sprintf("%s %s %s %d %s request_id=%s\n",
		p.TimeStamp.UTC().Format(time.RFC3339),
		p.Method,
		p.Path,
		p.StatusCode,
		p.Latency,
		requestID,
	)
}

// shouldCompress limits response compression to GET requests that accept gzip
func shouldCompress(c *gin.Context) bool {
	if c.Request.Method != http.MethodGet {
		return false
	}
	return strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") &&
		!strings.Contains(c.GetHeader("Connection"), "Upgrade")
}

// Dependencies holds all dependencies needed to create a server
type Dependencies struct {
	Config  *config.Config
	Service *service.GreetingService
	DB      handlers.Pinger // Optional: nil for the memory driver
}

// New creates a new Gin router with all routes configured
func New(deps *Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: accessLogFormatter,
		Output:    log.Writer(),
		SkipPaths: []string{"/health", "/health/ready"},
	}))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Encoding", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Location", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(RequestIDMiddleware())
	router.Use(middleware.NewRateLimitMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithDecompressFn(gzip.DefaultDecompressHandle),
		gzip.WithCustomShouldCompressFn(shouldCompress),
	))

	checks := []handlers.HealthCheck{handlers.NewStateCheck(deps.Config.App.CurrentState)}
	if deps.DB != nil {
		checks = append(checks, handlers.NewDatabaseCheck(deps.DB))
	}
	healthHandler := handlers.NewHealthHandler(checks...)
	greetingHandler := handlers.NewGreetingHandler(deps.Service)

	router.GET("/health", healthHandler.Live)
	router.GET("/health/ready", healthHandler.Ready)

	greet := router.Group("/greet")
	{
		greet.GET("", greetingHandler.GetDefaultMessage)
		greet.GET("/:name", greetingHandler.GetMessage)
	}

	// Routes that change greetings (stricter rate limiting, admin token when auth is enabled)
	mutations := router.Group("/greet")
	mutations.Use(middleware.NewMutationRateLimitMiddleware())
	if deps.Config.Auth.Enabled {
		jwtService := auth.NewJWTService(deps.Config.Auth.JWTSecret, deps.Config.Auth.TokenTTL)
		mutations.Use(middleware.NewAuthMiddleware(jwtService).RequireRole(auth.RoleAdmin))
	}
	{
		mutations.PUT("/greeting", greetingHandler.UpdateDefaultGreeting)
		mutations.POST("/db/:name", greetingHandler.CreateMapping)
		mutations.PUT("/db/:name", greetingHandler.UpdateMapping)
	}

	return router
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight
// requests for at most shutdownTimeout
func Run(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}
