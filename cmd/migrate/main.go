package main

import (
	"log"

	"legal-aid-be/internal/config"
	"legal-aid-be/internal/model"
	"legal-aid-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Starting GORM migration (%s)...", driverName(cfg.Database.Driver))

	models := model.All()
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			color.Red("Error: AutoMigrate failed for %T: %v", m, err)
			log.Fatal("Migration aborted")
		}
		color.Green("  ✓ %T", m)
	}

	color.Green("✅ Migration complete: %d tables", len(models))
}

func driverName(driver string) string {
	if driver == "" {
		return database.DriverPostgres
	}
	return driver
}
