// Package main mints admin tokens for the greeting change routes.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/sebasr/greet-service/internal/auth"
	"github.com/sebasr/greet-service/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	var (
		subject = flag.String("subject", "admin", "token subject recorded in the change log")
		role    = flag.String("role", auth.RoleAdmin, "role claim")
		ttl     = flag.Duration("ttl", 0, "token lifetime (defaults to JWT_TOKEN_TTL)")
	)
	flag.Parse()

	secret, found, err := config.LookupSecret(config.SecretJWT)
	if err != nil {
		log.Fatalf("failed to read JWT secret: %v", err)
	}
	if !found || secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	lifetime := *ttl
	if lifetime <= 0 {
		cfg, err := config.Load()
		if err != nil {
			lifetime = time.Hour
		} else {
			lifetime = cfg.Auth.TokenTTL
		}
	}

	token, err := auth.NewJWTService(secret, lifetime).GenerateToken(*subject, *role)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Println(token)
}
