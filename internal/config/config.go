// Package config provides configuration management for the greet service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AppConfig holds the greeting defaults and the readiness state
type AppConfig struct {
	Greeting string `yaml:"greeting"` // Initial default greeting
	State    string `yaml:"state"`    // "up" or "down", reported by the readiness probe
}

// AuthConfig holds the optional admin token guard configuration
type AuthConfig struct {
	Enabled   bool          `yaml:"enabled"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver                string        `yaml:"driver"` // postgres, sqlite or memory
	URL                   string        `yaml:"url"`
	Host                  string        `yaml:"host"`
	Port                  string        `yaml:"port"`
	Name                  string        `yaml:"name"`
	User                  string        `yaml:"user"`
	Password              string        `yaml:"password"`
	SSLMode               string        `yaml:"ssl_mode"`
	Path                  string        `yaml:"path"` // SQLite database file
	AutoMigrate           bool          `yaml:"auto_migrate"`
	MaxConnections        int           `yaml:"max_connections"`
	MaxIdleConnections    int           `yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		App: AppConfig{
			Greeting: "Hello",
			State:    "up",
		},
		Database: DatabaseConfig{
			Driver:                DriverPostgres,
			Host:                  "localhost",
			Port:                  "5432",
			Name:                  "greetings",
			User:                  "greet_user",
			Password:              "greet_pass",
			SSLMode:               "disable",
			Path:                  "greetings.db",
			AutoMigrate:           true,
			MaxConnections:        25,
			MaxIdleConnections:    5,
			ConnectionMaxLifetime: 5 * time.Minute,
		},
		Auth: AuthConfig{
			Enabled:  false,
			TokenTTL: time.Hour,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE, and environment variables, in that order of precedence
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.applySecrets(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile overlays values found in a YAML file
func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.App.Greeting = getEnv("APP_GREETING", c.App.Greeting)
	c.App.State = getEnv("APP_STATE", c.App.State)

	c.Database.Driver = strings.ToLower(getEnv("DB_DRIVER", c.Database.Driver))
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Database.AutoMigrate = getEnvAsBool("DB_AUTO_MIGRATE", c.Database.AutoMigrate)
	c.Database.MaxConnections = getEnvAsInt("DB_MAX_CONNECTIONS", c.Database.MaxConnections)
	c.Database.MaxIdleConnections = getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", c.Database.MaxIdleConnections)
	c.Database.ConnectionMaxLifetime = getEnvAsDuration("DB_CONNECTION_MAX_LIFETIME", c.Database.ConnectionMaxLifetime)

	c.Auth.Enabled = getEnvAsBool("AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.TokenTTL = getEnvAsDuration("JWT_TOKEN_TTL", c.Auth.TokenTTL)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		return errors.New("DB_PATH is required when DB_DRIVER=sqlite")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_ENABLED=true")
	}
	return nil
}

// CurrentState returns the readiness state, re-reading APP_STATE so that the
// probe follows changes made after startup
func (a *AppConfig) CurrentState() string {
	return getEnv("APP_STATE", a.State)
}

// ConnectionString returns the PostgreSQL connection URL
func (d *DatabaseConfig) ConnectionString() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
