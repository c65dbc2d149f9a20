// One-shot tool that moves legacy flat picks into the hierarchical layout
// and rebuilds the affected aggregates. The same migration is reachable via
// the admin API; this binary exists for running it before the server is up.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/jonboulle/clockwork"

	"nfl-pickem-go/config"
	"nfl-pickem-go/database"
	"nfl-pickem-go/logging"
	"nfl-pickem-go/services"
)

func main() {
	userID := flag.String("user", "", "migrate a single user instead of everyone")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Prefix:      "migrate",
		EnableColor: cfg.Logging.EnableColor,
	})

	db, err := database.NewMongoConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
	})
	if err != nil {
		logging.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pickRepo := database.NewMongoPickRepository(db)
	gameRepo := database.NewMongoGameRepository(db)
	statsRepo := database.NewMongoStatsRepository(db)
	userRepo := database.NewMongoUserRepository(db)

	clock := clockwork.NewRealClock()
	stats := services.NewStatsService(pickRepo, statsRepo, userRepo, clock)
	migration := services.NewMigrationService(pickRepo, gameRepo, stats, userRepo, clock)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var result *services.MigrationResult
	if *userID != "" {
		result, err = migration.MigrateUser(ctx, *userID)
	} else {
		result, err = migration.MigrateAll(ctx)
	}
	if err != nil {
		logging.Fatalf("Migration failed: %v", err)
	}

	logging.Infof("Migration complete: %d users, %d picks migrated, %d skipped",
		result.Users, result.Migrated, result.Skipped)
}
