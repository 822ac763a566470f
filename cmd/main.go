package main

import (
	"ClassBridge/internal/app"
	"ClassBridge/internal/config"
	"ClassBridge/internal/storage/postgres"
	"log"
	"os"

	"github.com/gin-gonic/gin"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	cfg := config.MustLoad()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrations(cfg)
		return
	}

	app.Run(cfg)
}

func runMigrations(cfg *config.Config) {
	m, err := postgres.NewMigrator(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.Fatalf("migrator init failed: %v", err)
	}

	direction := "up"
	if len(os.Args) > 2 {
		direction = os.Args[2]
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		log.Fatalf("unknown migrate direction %q, want up or down", direction)
	}
	if err != nil {
		log.Fatalf("migration %s failed: %v", direction, err)
	}
	log.Printf("migration %s applied", direction)
}
