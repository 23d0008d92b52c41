package main

import (
	"flag"
	"log"
	"path/filepath"

	"qrgen/internal/engine/bulk"
	"qrgen/internal/engine/qrcodes"
	"qrgen/internal/pkg/logger"
	"qrgen/internal/platform/config"
	"qrgen/internal/platform/database"
	"qrgen/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	bulkRepo := bulk.NewRepository(db)
	qrService := qrcodes.NewService(qrcodes.NewRepository(db), cfg.ShortLink.MaxAttempts)

	resultDir := filepath.Join(cfg.Storage.DataDir, "bulk_results")
	processor := bulk.NewProcessor(bulkRepo, qrService, resultDir, cfg.Bulk.MaxRows)

	workers.PollBulkJobs(bulkRepo, processor, cfg.Bulk.PollInterval)
}
