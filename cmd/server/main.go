package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"qrgen/internal/api"
	"qrgen/internal/api/handlers"
	"qrgen/internal/api/middleware"
	"qrgen/internal/engine/analytics"
	"qrgen/internal/engine/bulk"
	"qrgen/internal/engine/qrcodes"
	"qrgen/internal/engine/redirect"
	"qrgen/internal/engine/scans"
	"qrgen/internal/pkg/geoip"
	"qrgen/internal/pkg/logger"
	"qrgen/internal/platform/audit"
	"qrgen/internal/platform/auth"
	"qrgen/internal/platform/config"
	"qrgen/internal/platform/database"
	"qrgen/internal/platform/repositories"
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

	dbWrapper := database.NewDB(db)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	qrRepo := qrcodes.NewRepository(db)
	scanRepo := scans.NewRepository(db)
	bulkRepo := bulk.NewRepository(db)
	analyticsRepo := analytics.NewRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	qrService := qrcodes.NewService(qrRepo, cfg.ShortLink.MaxAttempts)
	analyticsService := analytics.NewService(analyticsRepo)
	resolver := redirect.NewResolver(qrRepo, cfg.Cache.RedirectTTL)
	scanLogger := scans.NewLogger(scanRepo, geoip.NewUnknownResolver())
	auditLogger := audit.NewLogger(db)

	// Handlers
	logoDir := filepath.Join(cfg.Storage.DataDir, "logos")
	uploadDir := filepath.Join(cfg.Storage.DataDir, "bulk_csv")

	authHandler := handlers.NewAuthHandler(userRepo, tokenSvc, auditLogger)
	qrHandler := handlers.NewQRHandler(qrService, resolver, auditLogger, logoDir)
	redirectHandler := handlers.NewRedirectHandler(resolver, scanLogger)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, scanRepo, qrHandler)
	bulkHandler := handlers.NewBulkHandler(bulkRepo, auditLogger, uploadDir)
	auditHandler := handlers.NewAuditHandler(auditLogger)
	healthHandler := handlers.NewHealthHandler(dbWrapper)
	metricsHandler := handlers.NewMetricsHandler()

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	// Router
	deps := &api.Dependencies{
		AuthHandler:      authHandler,
		QRHandler:        qrHandler,
		RedirectHandler:  redirectHandler,
		AnalyticsHandler: analyticsHandler,
		BulkHandler:      bulkHandler,
		AuditHandler:     auditHandler,
		HealthHandler:    healthHandler,
		MetricsHandler:   metricsHandler,
		AuthMiddleware:   authMiddleware,
		RateLimiter:      rateLimiter,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
