package main

import (
	"flag"
	"log"

	"ref-check/internal/config"
	"ref-check/internal/database"
	"ref-check/internal/seed"

	"go.uber.org/zap"
)

// Development utility: loads the demo dataset, including a citation 3-cycle.
func main() {
	clearFirst := flag.Bool("clear", false, "delete existing rows before seeding")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Config load error", zap.Error(err))
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	if *clearFirst {
		if err := seed.Clear(db); err != nil {
			logger.Fatal("Failed to clear database", zap.Error(err))
		}
		logger.Info("Cleared existing rows")
	}

	if err := seed.Run(db); err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}
	logger.Info("Database seeded")
}
