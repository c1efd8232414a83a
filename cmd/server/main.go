// Package main is the entry point for the greet service HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "go.uber.org/automaxprocs"

	"github.com/sebasr/greet-service/internal/config"
	"github.com/sebasr/greet-service/internal/database"
	"github.com/sebasr/greet-service/internal/repository"
	"github.com/sebasr/greet-service/internal/server"
	"github.com/sebasr/greet-service/internal/service"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Printf("Server stopped with error: %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	deps := &server.Dependencies{Config: cfg}

	var (
		repo repository.GreetingRepository
		tx   service.Transactor
	)

	if cfg.Database.Driver == config.DriverMemory {
		log.Println("Using in-memory greeting store; mappings are lost on restart")
		repo = repository.NewMemoryGreetingRepository()
	} else {
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(&cfg.Database); err != nil {
				return err
			}
			log.Println("Database schema is up to date")
		}

		db, err := database.New(&cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()
		log.Printf("Successfully connected to %s database", db.Driver)

		if db.Driver == config.DriverSQLite {
			repo = repository.NewSQLiteGreetingRepository(db)
		} else {
			repo = repository.NewPostgresGreetingRepository(db)
		}
		tx = database.NewTxManager(db.DB)
		deps.DB = db
	}

	holder := service.NewDefaultGreetingHolder(cfg.App.Greeting)
	deps.Service = service.NewGreetingService(repo, holder, tx)

	if cfg.Auth.Enabled {
		log.Println("Admin token required for greeting changes")
	}

	gin.SetMode(gin.ReleaseMode)
	return server.Run(ctx, ":"+cfg.Server.Port, server.New(deps), cfg.Server.ShutdownTimeout)
}
