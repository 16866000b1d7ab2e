package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	"elevate2/internal/caching"
	"elevate2/internal/config"
	"elevate2/internal/handlers"
	"elevate2/internal/jobs/background"
	"elevate2/internal/middleware"
	"elevate2/internal/repositories"
	"elevate2/internal/services"
	"elevate2/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	pool, err := database.NewPool(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" && cfg.Auth.JWKSURL == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	// Cache service
	redisAddr := cfg.Redis.Addr
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	cacheSvc := caching.NewRedisCacheService(redisAddr, cfg.Redis.Password, cfg.Redis.DB)

	// Object storage for compliance documents
	storageEndpoint := cfg.Storage.Endpoint
	if storageEndpoint == "" {
		storageEndpoint = "localhost:9000"
	}
	minioSvc, err := services.NewMinioService(storageEndpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.UseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	documentBucket := cfg.Storage.DocumentBucket
	if documentBucket == "" {
		documentBucket = "compliance-documents"
	}
	if err := minioSvc.EnsureBucketExists(context.Background(), documentBucket); err != nil {
		log.Printf("WARNING: Failed to ensure document bucket exists: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	licenseRepo := repositories.NewLicenseRepo(pool)
	programRepo := repositories.NewProgramRepo(pool)
	courseEnrollmentRepo := repositories.NewCourseEnrollmentRepo(pool)
	programEnrollmentRepo := repositories.NewProgramEnrollmentRepo(pool)
	workforceEnrollmentRepo := repositories.NewWorkforceEnrollmentRepo(pool)
	subscriptionRepo := repositories.NewSubscriptionRepo(pool)
	documentRepo := repositories.NewDocumentRepo(pool)
	timeclockRepo := repositories.NewTimeclockRepo(pool)
	partnerRepo := repositories.NewPartnerRepo(pool)
	overrideRepo := repositories.NewOverrideRepo(pool)
	auditRepo := repositories.NewPermissionAuditRepo(pool)

	// Services
	licenseSvc := services.NewLicenseService(licenseRepo)
	tenantSvc := services.NewTenantService(tenantRepo, cacheSvc)
	enrollmentSvc := services.NewEnrollmentService(courseEnrollmentRepo, programEnrollmentRepo, workforceEnrollmentRepo, programRepo)
	enforcementSvc := services.NewEnforcementService(programEnrollmentRepo, subscriptionRepo, documentRepo,
		timeclockRepo, partnerRepo, overrideRepo, auditRepo, cfg.Enforcement.PaymentGraceDays)
	timeclockSvc := services.NewTimeclockService(enforcementSvc, timeclockRepo, programEnrollmentRepo)
	checkinSvc := services.NewCheckinService(cacheSvc, enforcementSvc, timeclockRepo,
		time.Duration(cfg.Enforcement.CheckinCodeTTLMin)*time.Minute)
	documentSvc := services.NewDocumentService(documentRepo, programEnrollmentRepo, minioSvc, documentBucket)
	overrideSvc := services.NewOverrideService(overrideRepo, auditRepo)

	// Background jobs
	scheduler := background.NewJobScheduler(cacheSvc, licenseRepo, auditRepo, programRepo, tenantRepo,
		cfg.Enforcement.AuditRetentionDays)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Handlers
	licenseHandlers := handlers.NewLicenseHandlers(licenseSvc)
	enrollmentHandlers := handlers.NewEnrollmentHandlers(enrollmentSvc)
	timeclockHandlers := handlers.NewTimeclockHandlers(timeclockSvc)
	checkinHandlers := handlers.NewCheckinHandlers(checkinSvc)
	documentHandlers := handlers.NewDocumentHandlers(documentSvc)
	programHandlers := handlers.NewProgramHandlers(programRepo, cacheSvc)
	overrideHandlers := handlers.NewOverrideHandlers(overrideSvc)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, scheduler)

	// Echo instance
	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", healthHandlers.GetMetrics)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API routes
	versionMiddleware := middleware.NewVersionMiddleware()
	v1 := versionMiddleware.VersionRoute(e, "v1")

	jwtMiddleware, err := middleware.JWTMiddleware(userRepo, jwtSecret, cfg.Auth.JWKSURL)
	if err != nil {
		log.Fatalf("Failed to initialize JWT middleware: %v", err)
	}
	v1.Use(jwtMiddleware)

	// Tenant resolution does not require a license; everything else does.
	v1.GET("/tenants/by-domain/:domain", tenantHandlers.GetTenantByDomain)

	licensed := v1.Group("")
	licensed.Use(middleware.LicenseGuard(licenseSvc, cacheSvc))

	// License
	licensed.GET("/license", licenseHandlers.GetLicense)
	licensed.GET("/license/features/:feature", licenseHandlers.CheckFeature)

	// Enrollments
	licensed.POST("/enrollments", enrollmentHandlers.CreateEnrollment,
		middleware.RequireStudentCapacity(licenseSvc, programEnrollmentRepo))
	licensed.GET("/enrollments", enrollmentHandlers.ListEnrollments)
	licensed.POST("/enrollments/status", enrollmentHandlers.CheckStatus)
	licensed.POST("/enrollments/orientation/complete", enrollmentHandlers.CompleteOrientation)
	licensed.PUT("/enrollments/:id/state", enrollmentHandlers.UpdateEnrollmentState, middleware.RequireStaff())

	// Timeclock and hours
	licensed.POST("/timeclock/action", timeclockHandlers.TimeclockAction)
	licensed.GET("/timeclock/summary", timeclockHandlers.GetSummary)
	licensed.GET("/timeclock/entries", timeclockHandlers.ListEntries)
	licensed.POST("/apprenticeship/hours", timeclockHandlers.LogHours)

	// Check-in codes
	licensed.POST("/checkin", checkinHandlers.RedeemCode)
	licensed.POST("/checkin/codes", checkinHandlers.IssueCode, middleware.RequireStaff())

	// Compliance documents
	licensed.POST("/documents", documentHandlers.UploadDocument)
	licensed.GET("/documents", documentHandlers.ListDocuments, middleware.RequireStaff())
	licensed.GET("/documents/missing", documentHandlers.MissingDocuments)
	licensed.POST("/documents/:id/verify", documentHandlers.VerifyDocument, middleware.RequireStaff())

	// Program catalog
	licensed.GET("/programs", programHandlers.ListPrograms)
	licensed.GET("/programs/:slug", programHandlers.GetProgram)
	licensed.GET("/programs/:slug/actions", programHandlers.GetProgramActions)

	// Admin overrides and audit trail
	licensed.POST("/overrides", overrideHandlers.GrantOverride, middleware.RequireRole("admin"))
	licensed.DELETE("/overrides/:id", overrideHandlers.RevokeOverride, middleware.RequireRole("admin"))
	licensed.GET("/audit", overrideHandlers.ListAuditTrail, middleware.RequireStaff())

	// Tenant administration
	licensed.GET("/tenants", tenantHandlers.ListTenants, middleware.RequireRole("admin"))
	licensed.POST("/tenants", tenantHandlers.CreateTenant, middleware.RequireRole("admin"))
	licensed.GET("/tenants/:id", tenantHandlers.GetTenant, middleware.RequireStaff())
	licensed.PUT("/tenants/:id", tenantHandlers.UpdateTenant, middleware.RequireRole("admin"))

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Printf("Shutting down")
		if err := e.Shutdown(context.Background()); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Entitlement service v%s starting on port %s", version, cfg.Server.Port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", cfg.Server.Port)))
}
