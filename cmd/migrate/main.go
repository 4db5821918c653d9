package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"sales-admin/internal/config"
	"sales-admin/internal/database"
	"sales-admin/internal/logger"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

func main() {
	var direction string
	flag.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	flag.Parse()

	cfg := config.Load()
	log := logger.NewWithDefaults()
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	dbService, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()

	db := dbService.DB()
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "up":
		err = database.RunMigrations(db, log)
	case "down":
		err = database.RollbackMigration(db, log)
	case "status":
		err = database.GetMigrationStatus(db)
	default:
		log.Fatal("Unknown migration direction", zap.String("direction", direction))
	}
	if err != nil {
		log.Fatal("Migration failed", zap.String("direction", direction), zap.Error(err))
	}
}
