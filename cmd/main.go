package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"vetly/internal/caching"
	"vetly/internal/config"
	"vetly/internal/handlers"
	"vetly/internal/jobs"
	"vetly/internal/jobs/background"
	"vetly/internal/middleware"
	"vetly/internal/models"
	"vetly/internal/repositories"
	"vetly/internal/services"
	"vetly/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Optional TOML config for payments and reminder tuning
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret, sessions will not survive restarts")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
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

	storageSvc, err := services.NewStorageService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}

	// Create repositories
	userRepo := repositories.NewUserRepository(pool)
	tenantRepo := repositories.NewTenantRepository(pool)
	settingsRepo := repositories.NewTenantSettingsRepository(pool)
	statsRepo := repositories.NewUsageStatsRepository(pool)
	subscriptionRepo := repositories.NewSubscriptionRepository(pool)
	userRoleRepo := repositories.NewUserRoleRepository(pool)
	petRepo := repositories.NewPetRepository(pool)
	appointmentRepo := repositories.NewAppointmentRepository(pool)
	recordRepo := repositories.NewMedicalRecordRepository(pool)
	shiftRepo := repositories.NewCashShiftRepository(pool)
	saleRepo := repositories.NewSaleRepository(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	authSvc := services.NewAuthService(jwtSecret, cacheSvc, userRepo)
	rbacSvc := services.NewRBACService(userRoleRepo)
	provisioningSvc := services.NewProvisioningService(pool, cacheSvc)
	limitsSvc := services.NewLimitsService(subscriptionRepo, statsRepo, cacheSvc)
	paymentSvc := services.NewPaymentService(
		cfg.Payments.APIKey,
		cfg.Payments.APISecret,
		cfg.Payments.WebhookSecret,
		cfg.Payments.BaseURL,
	)
	billingSvc := services.NewBillingService(pool, paymentSvc, cacheSvc)
	petSvc := services.NewPetService(petRepo, limitsSvc)
	appointmentSvc := services.NewAppointmentService(appointmentRepo, petRepo)
	recordSvc := services.NewMedicalRecordService(recordRepo, petRepo, storageSvc, limitsSvc)
	drawerSvc := services.NewCashDrawerService(shiftRepo, saleRepo, limitsSvc, storageSvc)

	// Background work: asynq for reminder delivery, gocron for sweeps
	asynqRedis := asynq.RedisClientOpt{Addr: cfg.Reminders.RedisAddr, Password: cfg.Reminders.RedisPassword, DB: cfg.Reminders.RedisDB}
	if asynqRedis.Addr == "" {
		asynqRedis.Addr = redisAddr
		asynqRedis.Password = redisPassword
		asynqRedis.DB = redisDB
	}
	asynqClient := asynq.NewClient(asynqRedis)
	defer asynqClient.Close()

	asynqServer := asynq.NewServer(asynqRedis, asynq.Config{
		Concurrency: cfg.Reminders.Concurrency,
		Queues:      cfg.Reminders.QueuePriorities,
	})
	reminderProcessor := jobs.NewReminderProcessor(appointmentRepo, limitsSvc)
	go func() {
		if err := asynqServer.Run(jobs.NewReminderMux(reminderProcessor)); err != nil {
			log.Fatalf("Reminder worker failed: %v", err)
		}
	}()

	scheduler, err := background.NewJobScheduler(billingSvc, appointmentRepo, petRepo, asynqClient, time.Duration(cfg.Reminders.LookaheadHours)*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Middleware
	rbacMiddleware := middleware.NewRBACMiddleware(rbacSvc)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo)
	tenantHandlers := handlers.NewTenantHandlers(provisioningSvc, authSvc, tenantRepo, settingsRepo, statsRepo, cacheSvc)
	billingHandlers := handlers.NewBillingHandlers(billingSvc, limitsSvc)
	webhookHandlers := handlers.NewWebhookHandlers(paymentSvc, billingSvc)
	petHandlers := handlers.NewPetHandlers(petSvc)
	appointmentHandlers := handlers.NewAppointmentHandlers(appointmentSvc)
	recordHandlers := handlers.NewMedicalRecordHandlers(recordSvc)
	drawerHandlers := handlers.NewCashDrawerHandlers(drawerSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.Health)
	e.GET("/health/ready", healthHandlers.Ready)

	v1 := e.Group("/v1")

	// Public routes
	auth := v1.Group("/auth")
	loginLimiter := middleware.RateLimit(cacheSvc, "login", 10, time.Minute)
	auth.POST("/signup", authHandlers.Signup, loginLimiter)
	auth.POST("/login", authHandlers.Login, loginLimiter)
	auth.POST("/refresh", authHandlers.Refresh)

	v1.GET("/plans", billingHandlers.ListPlans)
	v1.POST("/webhooks/payments", webhookHandlers.HandlePaymentWebhook)

	// Protected routes
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))

	protected.GET("/me", authHandlers.Me)
	protected.POST("/clinics", tenantHandlers.CreateClinic)
	protected.GET("/clinic", tenantHandlers.GetCurrent)
	protected.GET("/clinic/usage", tenantHandlers.GetUsage)
	protected.GET("/clinic/settings", tenantHandlers.GetSettings)
	protected.PUT("/clinic/settings", tenantHandlers.UpdateSettings, rbacMiddleware.RequireRole(models.RoleAdmin))

	// Billing
	protected.GET("/subscription", billingHandlers.GetSubscription)
	protected.POST("/subscription/change-plan", billingHandlers.ChangePlan, rbacMiddleware.RequireRole(models.RoleAdmin))
	protected.GET("/limits/:resource", billingHandlers.CheckLimit)

	// Pets
	protected.GET("/pets", petHandlers.List)
	protected.POST("/pets", petHandlers.Create)
	protected.GET("/pets/:id", petHandlers.Get)
	protected.PUT("/pets/:id", petHandlers.Update)
	protected.GET("/pets/:petId/records", recordHandlers.ListByPet)

	// Appointments
	protected.GET("/appointments", appointmentHandlers.ListByDay)
	protected.POST("/appointments", appointmentHandlers.Schedule)
	protected.GET("/appointments/:id", appointmentHandlers.Get)
	protected.PUT("/appointments/:id/status", appointmentHandlers.UpdateStatus)
	protected.PUT("/appointments/:id/reschedule", appointmentHandlers.Reschedule)

	// Medical records
	protected.POST("/records", recordHandlers.Create, rbacMiddleware.RequireRole(models.RoleVeterinarian))
	protected.GET("/records/:id", recordHandlers.Get)
	protected.POST("/records/:id/attachments", recordHandlers.AttachDocument, rbacMiddleware.RequireRole(models.RoleVeterinarian))

	// Cash drawer
	protected.GET("/shifts", drawerHandlers.ListShifts)
	protected.POST("/shifts", drawerHandlers.OpenShift)
	protected.GET("/shifts/:id", drawerHandlers.GetShift)
	protected.POST("/shifts/sales", drawerHandlers.RegisterSale)
	protected.POST("/shifts/withdrawals", drawerHandlers.RegisterWithdrawal)
	protected.POST("/shifts/close", drawerHandlers.CloseShift)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Vetly server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
