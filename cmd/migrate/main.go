package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"marketplace/internal/infra"
)

func main() {
	_ = godotenv.Load()

	command := infra.MigrateUp
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	switch command {
	case infra.MigrateUp, infra.MigrateDown, infra.MigrateStatus:
	default:
		fmt.Fprintf(os.Stderr, "usage: migrate [up|down|status]\n")
		os.Exit(2)
	}

	logger := infra.NewLogger(os.Getenv("APP_ENV")).With().Str("cmd", "migrate").Logger()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := infra.OpenSQL(ctx, dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	if err := infra.Migrate(ctx, db, logger, command); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Str("command", command).Msg("migrations done")
}
