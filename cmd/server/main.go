package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fixer.backend/internal/config"
	"fixer.backend/internal/infrastructure/jobs"
	"fixer.backend/internal/infrastructure/processor"
	"fixer.backend/internal/infrastructure/repositories"
	"fixer.backend/internal/interfaces/http/handlers"
	"fixer.backend/internal/interfaces/http/middleware"
	"fixer.backend/internal/usecases"
	"fixer.backend/pkg/jwt"
	"fixer.backend/pkg/logger"
	"fixer.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("connected to PostgreSQL")
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	interventionRepo := repositories.NewManualInterventionRepository(db)
	payoutAccountRepo := repositories.NewPayoutAccountRepository(db)
	recoverySessionRepo := repositories.NewRecoverySessionRepository(db)
	webhookEventRepo := repositories.NewWebhookEventRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Payment processor client
	processorClient := processor.NewHTTPClient(cfg.Processor.BaseURL, cfg.Processor.APIKey)

	// Collaborator stubs until messaging and search are wired in.
	notifier := usecases.NopNotifier{}
	invalidator := usecases.NopListingInvalidator{}

	// Usecases
	paymentAuth := usecases.NewPaymentAuthService(userRepo, processorClient)
	jobPostingUsecase := usecases.NewJobPostingUsecase(
		uow, jobRepo, paymentRepo, interventionRepo, userRepo,
		paymentAuth, notifier, invalidator,
		cfg.Processor.AuthorizeTimeout, cfg.Processor.CommitTimeout,
		cfg.Jobs.RefundAttempts, cfg.Jobs.RefundBackoff,
	)
	payoutUsecase := usecases.NewPayoutAccountUsecase(
		payoutAccountRepo, userRepo, processorClient, cfg.Jobs.StalenessThreshold,
	)
	recoveryCoordinator := usecases.NewRecoveryCoordinator(
		payoutAccountRepo, recoverySessionRepo, interventionRepo,
		processorClient, notifier, cfg.Jobs.MaxRecoveryAttempts,
	)
	webhookUsecase := usecases.NewWebhookUsecase(
		uow, jobRepo, paymentRepo, payoutAccountRepo, webhookEventRepo,
		payoutUsecase, recoveryCoordinator, notifier, invalidator,
	)

	// Handlers
	jobHandler := handlers.NewJobHandler(jobPostingUsecase)
	payoutHandler := handlers.NewPayoutHandler(payoutUsecase)
	webhookHandler := handlers.NewWebhookHandler(webhookUsecase, cfg.Processor.WebhookSecret, cfg.Processor.SignatureTolerance)
	adminHandler := handlers.NewAdminHandler(interventionRepo)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := jobs.NewAccountStatusMonitor(payoutAccountRepo, payoutUsecase, recoveryCoordinator, cfg.Jobs.MonitorInterval)
	monitor.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		jobHandler:     jobHandler,
		payoutHandler:  payoutHandler,
		webhookHandler: webhookHandler,
		adminHandler:   adminHandler,
		authMiddleware: authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down server...")
		monitor.Stop()
		cancel()
	}()

	log.Printf("fixer backend starting on port %s", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
