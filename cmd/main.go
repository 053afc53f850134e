package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"fleetgov/internal/caching"
	"fleetgov/internal/config"
	"fleetgov/internal/handlers"
	"fleetgov/internal/jobs/background"
	"fleetgov/internal/middleware"
	"fleetgov/internal/repositories"
	"fleetgov/internal/services"
	"fleetgov/pkg/database"
)

const version = "1.0.0"

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	pool, err := database.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	store, err := services.NewMinioStore(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}

	// Mail configuration
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "localhost"
	}
	smtpPort := 25
	if smtpPortStr := os.Getenv("SMTP_PORT"); smtpPortStr != "" {
		if p, err := strconv.Atoi(smtpPortStr); err == nil {
			smtpPort = p
		}
	}
	mailFrom := os.Getenv("MAIL_FROM")
	if mailFrom == "" {
		mailFrom = "noreply@fleetgov.local"
	}
	reminderRecipients := strings.Split(os.Getenv("REMINDER_RECIPIENTS"), ",")

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	licenseRepo := repositories.NewLicenseRepo(pool)
	auditRepo := repositories.NewAuditLogsRepo(pool)
	backupRepo := repositories.NewBackupRepo(pool)
	drRepo := repositories.NewDrRepo(pool)

	// Gate cache
	gateCache := caching.NewRedisGateCache(redisAddr, redisPassword, redisDB)

	// Services
	licenseSvc := services.NewLicenseService(pool, tenantRepo, licenseRepo, auditRepo, gateCache, cfg.TrialDays, cfg.SweepBatchSize)
	auditSvc := services.NewAuditLogsService(auditRepo)
	dumper := services.NewPgDumper(pool)
	backupSvc := services.NewBackupService(pool, backupRepo, auditRepo, store, dumper, cfg)
	drSvc := services.NewDrService(pool, drRepo, backupRepo, auditRepo, store, cfg)
	retentionSvc := services.NewRetentionService(pool, backupRepo, auditRepo, store, cfg)
	mailSender := services.NewSMTPSender(smtpHost, smtpPort, mailFrom)
	notificationSvc := services.NewNotificationService(tenantRepo, licenseRepo, auditRepo, mailSender, reminderRecipients)

	// Background scheduler
	scheduler, err := background.NewJobScheduler(licenseSvc, backupSvc, retentionSvc, drSvc, notificationSvc, cfg)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop scheduler: %v", err)
		}
	}()

	// Handlers
	licenseHandlers := handlers.NewLicenseHandlers(licenseSvc)
	backupHandlers := handlers.NewBackupHandlers(backupSvc)
	drHandlers := handlers.NewDrHandlers(drSvc)
	auditHandlers := handlers.NewAuditLogsHandlers(auditSvc)

	// Echo instance
	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", handlers.ReadinessCheck)
	e.GET("/health/detailed", func(c echo.Context) error {
		return handlers.HealthCheckDetailed(c, pool)
	})

	// Protected routes
	v1 := e.Group("/v1")
	v1.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))

	admin := v1.Group("", middleware.RequireSuperAdmin())
	admin.POST("/licenses/grant", licenseHandlers.GrantLicense)
	admin.GET("/licenses/:tenant_id/active", licenseHandlers.GetActiveLicense)
	admin.POST("/backups/run", backupHandlers.RunBackup)
	admin.GET("/backups", backupHandlers.ListBackups)
	admin.GET("/backups/:id", backupHandlers.GetBackup)
	admin.POST("/dr/simulations", drHandlers.RunSimulation)
	admin.GET("/dr/simulations", drHandlers.ListSimulations)
	admin.GET("/dr/reports", drHandlers.ListReports)
	admin.POST("/dr/promote", drHandlers.PromoteSandboxToProd)
	admin.GET("/audit-logs", auditHandlers.ListAuditLogs)

	if cfg.AllowDirectRestore {
		log.Printf("WARNING: legacy direct-restore endpoint is enabled")
		admin.POST("/dr/restore-direct", drHandlers.DirectRestore)
	}

	system := v1.Group("", middleware.RequireSystem())
	system.POST("/licenses/trial", licenseHandlers.CreateTrialLicense)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	go func() {
		log.Printf("fleetgov v%s starting on port %d", version, port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Block until told to stop, then tear everything down in order.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
