package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sebasr/greet-service/internal/config"
	"github.com/sebasr/greet-service/internal/database"
	"github.com/sebasr/greet-service/internal/repository"
	"github.com/sebasr/greet-service/internal/server"
	"github.com/sebasr/greet-service/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDatabase starts PostgreSQL with Testcontainers and applies the embedded migrations
func setupTestDatabase(t *testing.T) (*database.DB, func()) {
	t.Helper()

	ctx := context.Background()

	// Colima keeps its socket outside the default location
	if os.Getenv("DOCKER_HOST") == "" {
		colimaSocket := os.ExpandEnv("$HOME/.colima/default/docker.sock")
		if _, err := os.Stat(colimaSocket); err == nil {
			t.Setenv("DOCKER_HOST", "unix://"+colimaSocket)
			t.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
			t.Logf("Using Colima Docker socket: %s (Ryuk disabled)", colimaSocket)
		}
	}

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := pg.Host(ctx)
	require.NoError(t, err)

	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Driver:                config.DriverPostgres,
		Host:                  host,
		Port:                  port.Port(),
		Name:                  "testdb",
		User:                  "testuser",
		Password:              "testpass",
		SSLMode:               "disable",
		MaxConnections:        10,
		MaxIdleConnections:    2,
		ConnectionMaxLifetime: time.Minute,
	}

	require.NoError(t, database.Migrate(cfg))

	db, err := database.New(cfg)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func newRouter(db *database.DB) *gin.Engine {
	cfg := config.Default()

	svc := service.NewGreetingService(
		repository.NewPostgresGreetingRepository(db),
		service.NewDefaultGreetingHolder(cfg.App.Greeting),
		database.NewTxManager(db.DB),
	)

	return server.New(&server.Dependencies{Config: cfg, Service: svc, DB: db})
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "198.51.100.7:4000"
	router.ServeHTTP(w, req)
	return w
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Message
}

func TestGreetingLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	router := newRouter(db)

	w := do(router, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/greet", "")
	assert.Equal(t, "Hello World!", messageOf(t, w))

	w = do(router, http.MethodPost, "/greet/db/Joe", "Howdy")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/greet/Joe", w.Header().Get("Location"))

	w = do(router, http.MethodGet, "/greet/Joe", "")
	assert.Equal(t, "Howdy Joe!", messageOf(t, w))

	w = do(router, http.MethodPost, "/greet/db/Joe", "Again")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, http.MethodPut, "/greet/db/Joe", "Hey")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Joe", w.Body.String())

	w = do(router, http.MethodGet, "/greet/Joe", "")
	assert.Equal(t, "Hey Joe!", messageOf(t, w))

	w = do(router, http.MethodPut, "/greet/db/Ann", "Hey")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM greeting WHERE name = 'Ann'").Scan(&count))
	assert.Zero(t, count)

	w = do(router, http.MethodPut, "/greet/greeting", `{"greeting":"Hola"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(router, http.MethodGet, "/greet/Ann", "")
	assert.Equal(t, "Hola Ann!", messageOf(t, w))
	w = do(router, http.MethodGet, "/greet/Joe", "")
	assert.Equal(t, "Hey Joe!", messageOf(t, w), "stored mapping wins over the default")
}

func TestConcurrentCreateOnlyOneWins(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	router := newRouter(db)

	const workers = 8
	codes := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- do(router, http.MethodPost, "/greet/db/Race", "Ready").Code
		}()
	}
	wg.Wait()
	close(codes)

	created := 0
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		default:
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 1, created)
}
