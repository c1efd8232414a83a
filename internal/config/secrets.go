package config

import (
	"fmt"
	"os"
	"strings"
)

// Secrets read by the greet service. Each one can instead be mounted as a file
// whose path is given in <NAME>_FILE (Docker and Kubernetes secrets).
const (
	SecretDBPassword = "DB_PASSWORD"
	SecretJWT        = "JWT_SECRET"
)

// LookupSecret returns the secret named key. The environment variable wins over
// key_FILE; found is false when neither is set. A key_FILE that cannot be read
// is an error so that a broken mount is not mistaken for an unset secret.
func LookupSecret(key string) (value string, found bool, err error) {
	if v := os.Getenv(key); v != "" {
		return v, true, nil
	}

	path := os.Getenv(key + "_FILE")
	if path == "" {
		return "", false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("config: read %s_FILE: %w", key, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// applySecrets overlays DB_PASSWORD and JWT_SECRET, failing on unreadable files
func (c *Config) applySecrets() error {
	targets := []struct {
		key string
		dst *string
	}{
		{SecretDBPassword, &c.Database.Password},
		{SecretJWT, &c.Auth.JWTSecret},
	}

	for _, s := range targets {
		v, found, err := LookupSecret(s.key)
		if err != nil {
			return err
		}
		if found {
			*s.dst = v
		}
	}
	return nil
}
