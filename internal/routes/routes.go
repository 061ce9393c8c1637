package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medichain-server/internal/config"
	"medichain-server/internal/handlers"
	"medichain-server/internal/ledger"
	"medichain-server/internal/middleware"
	"medichain-server/internal/models"
	"medichain-server/internal/services"
)

// Dependencies carries the constructed collaborators the handlers need.
// Everything is injected here so tests and main wire the same way.
type Dependencies struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Ledger ledger.Client
	Anchor services.Anchor
	Minter *services.IdentityMinter

	Records  *services.RecordService
	Consents *services.ConsentService
	Requests *services.AccessRequestService
	Audit    services.AuditEventStore
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Cfg, deps.Minter, deps.Anchor)
	patientHandler := handlers.NewPatientHandler(deps.Records, deps.Consents, deps.Requests, deps.Audit)
	doctorHandler := handlers.NewDoctorHandler(deps.DB, deps.Records, deps.Consents, deps.Requests, deps.Audit)
	adminHandler := handlers.NewAdminHandler(deps.DB, deps.Minter, deps.Anchor)
	ledgerHandler := handlers.NewLedgerHandler(deps.Ledger, deps.Anchor)

	// Auth endpoints get a tighter bucket than uploads.
	authLimiter := middleware.NewRateLimiter(0.2, 10)
	uploadLimiter := middleware.NewRateLimiter(1, 30)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(middleware.RateLimitMiddleware(authLimiter))
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(deps.Cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Patient routes
		patientRoutes := private.Group("/patient")
		patientRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient))
		{
			patientRoutes.GET("/records", patientHandler.ListRecords)
			patientRoutes.POST("/records", middleware.RateLimitMiddleware(uploadLimiter), patientHandler.UploadRecord)
			patientRoutes.GET("/records/:id", patientHandler.GetRecord)
			patientRoutes.GET("/records/:id/download", patientHandler.DownloadRecord)
			patientRoutes.DELETE("/records/:id", patientHandler.DeleteRecord)

			patientRoutes.GET("/consents", patientHandler.ListConsents)
			patientRoutes.POST("/consents", patientHandler.GrantConsent)
			patientRoutes.DELETE("/consents/:consentId", patientHandler.RevokeConsent)

			patientRoutes.GET("/access-requests", patientHandler.ListAccessRequests)
			patientRoutes.POST("/access-requests/:requestId/respond", patientHandler.RespondToAccessRequest)

			patientRoutes.GET("/audit-logs", patientHandler.ListAuditLogs)
		}

		// Doctor routes
		doctorRoutes := private.Group("/doctor")
		doctorRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
		{
			doctorRoutes.GET("/patients", doctorHandler.ListPatients)
			doctorRoutes.GET("/patients/:patientDid/records", doctorHandler.ListPatientRecords)
			doctorRoutes.POST("/records", middleware.RateLimitMiddleware(uploadLimiter), doctorHandler.UploadRecord)
			doctorRoutes.GET("/records/:id", doctorHandler.GetRecord)
			doctorRoutes.GET("/records/:id/download", doctorHandler.DownloadRecord)

			doctorRoutes.GET("/access-requests", doctorHandler.ListAccessRequests)
			doctorRoutes.POST("/access-requests", doctorHandler.CreateAccessRequest)

			doctorRoutes.GET("/consents", doctorHandler.ListConsents)
			doctorRoutes.GET("/audit-logs", doctorHandler.ListAuditLogs)
		}

		// Admin routes
		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
		{
			adminRoutes.POST("/departments", adminHandler.CreateDepartment)
			adminRoutes.GET("/departments", adminHandler.ListDepartments)
			adminRoutes.GET("/doctors/unverified", adminHandler.ListUnverifiedDoctors)
			adminRoutes.POST("/doctors/:doctorId/verify", adminHandler.VerifyDoctor)
			adminRoutes.GET("/stats", adminHandler.SystemStats)

			adminRoutes.POST("/ledger/messages", ledgerHandler.SubmitAuditMessage)
		}

		// Ledger utility routes (any authenticated user)
		ledgerRoutes := private.Group("/ledger")
		{
			ledgerRoutes.GET("/network", ledgerHandler.NetworkInfo)
			ledgerRoutes.GET("/accounts/:accountId/balance", ledgerHandler.AccountBalance)
		}
	}
}
