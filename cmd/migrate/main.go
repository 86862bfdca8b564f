package main

import (
	"fmt"
	"log"
	"os"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/audiolab-dev/audioscribe/internal/infrastructure/database"
	"github.com/audiolab-dev/audioscribe/pkg/config"
)

// Applies SQL migrations from migrations/ outside the API process.
// Usage: migrate [up|down|status]
func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}

	migrations := &migrate.FileMigrationSource{Dir: "migrations"}

	switch direction {
	case "up":
		n, err := migrate.Exec(sqlDB, "postgres", migrations, migrate.Up)
		if err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Printf("Applied %d migrations", n)
	case "down":
		n, err := migrate.ExecMax(sqlDB, "postgres", migrations, migrate.Down, 1)
		if err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Printf("Rolled back %d migration(s)", n)
	case "status":
		records, err := migrate.GetMigrationRecords(sqlDB, "postgres")
		if err != nil {
			log.Fatalf("Failed to read migration records: %v", err)
		}
		for _, r := range records {
			fmt.Printf("%s\t%s\n", r.Id, r.AppliedAt.Format("2006-01-02 15:04:05"))
		}
	default:
		log.Fatalf("Unknown command %q; use up, down or status", direction)
	}
}
