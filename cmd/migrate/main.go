package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/mesikahq/spitalverse/internal/config"
	"github.com/mesikahq/spitalverse/internal/database"
	"github.com/mesikahq/spitalverse/internal/db/migrate"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Parse command line flags
	command := flag.String("command", "up", "Migration command (up/down)")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Disconnect(pool)

	manager := migrate.NewManager(pool, migrate.Bundled(), cfg.Storage.Table)

	// Initialize migrations table
	if err := manager.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}

	// Run migration command
	switch *command {
	case "up":
		applied, err := manager.Up(ctx)
		if err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		if len(applied) == 0 {
			fmt.Println("Database is up to date")
			return
		}
		for _, m := range applied {
			fmt.Printf("Applied %03d_%s\n", m.Version, m.Name)
		}

	case "down":
		m, err := manager.Down(ctx)
		if err != nil {
			log.Fatalf("Failed to roll back migration: %v", err)
		}
		fmt.Printf("Rolled back %03d_%s\n", m.Version, m.Name)

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}
