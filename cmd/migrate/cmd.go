package main

import (
	"context"
	"os"

	"github.com/vglug/intake-backend/internal/bootstrap"
	"github.com/vglug/intake-backend/internal/config"
	"github.com/vglug/intake-backend/pkg/logger"
)

// Opens the application database and applies the schema, then exits.
// Meant for provisioning a fresh volume before the API starts.
func main() {
	cfg := config.New()
	log := logger.New(cfg.LogLevel, logger.NewCloudRunHandler)

	db, err := bootstrap.InitDB(context.Background(), cfg.DBPath)
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	log.Info("schema up to date", "path", cfg.DBPath)
}
