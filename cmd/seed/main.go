package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/territory-leads/internal/app/bootstrap"
	appconfig "github.com/wolfman30/territory-leads/internal/config"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	if !cfg.UsesDatabase() {
		logger.Error("DATABASE_URL is required to seed users")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	stores := bootstrap.BuildStores(pool, logger)
	seeded, err := bootstrap.SeedUsers(ctx, stores.Users, bootstrap.DefaultAccounts)
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}

	fmt.Println("Seeded users:")
	for _, u := range seeded {
		fmt.Printf("- %s (%s)\n", u.Email, u.Role)
	}
}
