package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"medichain-server/internal/config"
	"medichain-server/internal/ledger"
	"medichain-server/internal/logger"
	"medichain-server/internal/models"
	"medichain-server/internal/notify"
	"medichain-server/internal/repository"
	"medichain-server/internal/routes"
	"medichain-server/internal/services"
	"medichain-server/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, "medichain-server")
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database connection
	db, err := models.InitDB(cfg.Database.DSN)
	if err != nil {
		zlog.Fatal("Error connecting to database", zap.Error(err))
	}

	// External collaborators
	ledgerClient := ledger.NewRESTClient(cfg.Ledger, zlog)
	storageClient := storage.NewPinClient(cfg.Storage, zlog)
	mailer := notify.NewSMTPMailer(cfg.Mailer, zlog)

	// Repositories
	users := repository.NewUserRepository(db)
	records := repository.NewRecordRepository(db)
	consents := repository.NewConsentRepository(db)
	requests := repository.NewAccessRequestRepository(db)
	auditEvents := repository.NewAuditEventRepository(db)

	// Services
	anchor := services.NewAuditAnchor(ledgerClient, auditEvents, cfg.Ledger.AuditTopicID, cfg.Ledger.RecordTopicID, time.Now, zlog)
	minter := services.NewIdentityMinter(ledgerClient, cfg.Ledger.InitialBalance, zlog)
	consentService := services.NewConsentService(users, records, consents, anchor, mailer, cfg.AppURL, time.Now, zlog)
	recordService := services.NewRecordService(users, records, consentService, storageClient, anchor, time.Now, zlog)
	requestService := services.NewAccessRequestService(users, records, requests, anchor, mailer, cfg.AppURL, time.Now, zlog)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Dependencies{
		DB:       db,
		Cfg:      cfg,
		Ledger:   ledgerClient,
		Anchor:   anchor,
		Minter:   minter,
		Records:  recordService,
		Consents: consentService,
		Requests: requestService,
		Audit:    auditEvents,
	})

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	zlog.Info("Server starting",
		zap.String("port", cfg.Port),
		zap.String("network", cfg.Ledger.Network),
	)
	if err := router.Run(serverAddr); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}
}
