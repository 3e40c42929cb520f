package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"csystem-sip/config"
	deliveryHttp "csystem-sip/internal/delivery/http"
	"csystem-sip/internal/delivery/http/handler"
	"csystem-sip/internal/delivery/http/middleware"
	"csystem-sip/internal/infrastructure/cache"
	"csystem-sip/internal/infrastructure/database"
	"csystem-sip/internal/infrastructure/storage"
	"csystem-sip/internal/repository"
	"csystem-sip/internal/service"
	"csystem-sip/internal/usecase"
	"csystem-sip/pkg/jwt"
	"csystem-sip/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config        *config.Config
	DB            *gorm.DB
	RedisClient   *redis.Client
	Server        *http.Server
	ClubDirectory *service.ClubDirectoryService
}

// New creates a new App instance with all dependencies initialized
func New(configPath string) (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	log := setupLogger(cfg.App)
	config.WatchLogLevel(log)
	log.Info("Configuration loaded successfully")

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(cfg.DB); err != nil {
			return nil, err
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	fileStorage, err := storage.NewLocalFileStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	// Initialize all layers
	server, clubDirectory := initializeServer(cfg, log, db, redisClient, fileStorage)
	app.Server = server
	app.ClubDirectory = clubDirectory

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := clubDirectory.SyncOnStartup(ctx); err != nil {
		log.Warnf("Club directory not primed, it will load on first request: %v", err)
	}

	return app, nil
}

// MigrateOnly applies pending migrations and returns
func MigrateOnly(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLogger(cfg.App)
	return database.Migrate(cfg.DB)
}

// setupLogger configures the standard logrus logger
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client, fileStorage *storage.FileStorage) (*http.Server, *service.ClubDirectoryService) {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	roleProfileRepo := repository.NewRoleProfileRepository()
	parentLinkRepo := repository.NewParentLinkRepository()
	clubRepo := repository.NewClubAffiliationRepository()
	moduleRepo := repository.NewModuleRepository()
	documentRepo := repository.NewDocumentRepository()
	orderRepo := repository.NewOrderRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	referralService := service.NewReferralService(redisClient, log, cfg.Cache.ReferralTTL)
	clubDirectory := service.NewClubDirectoryService(db, redisClient, log, userRepo, cfg.Cache.ClubDirectoryTTL)
	avatarProcessor := service.NewAvatarProcessor()

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, roleRepo, parentLinkRepo, auditService, referralService, jwtService, redisClient)
	profileUsecase := usecase.NewProfileUsecase(db, log, userRepo, roleProfileRepo, parentLinkRepo, auditService, avatarProcessor, referralService, clubDirectory, fileStorage)
	clubUsecase := usecase.NewClubUsecase(db, log, userRepo, clubRepo, parentLinkRepo, auditService, clubDirectory)
	moduleUsecase := usecase.NewModuleUsecase(db, log, moduleRepo, auditService)
	documentUsecase := usecase.NewDocumentUsecase(db, log, documentRepo, userRepo, parentLinkRepo, auditService, fileStorage)
	orderUsecase := usecase.NewOrderUsecase(db, log, orderRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, clubUsecase, customValidator, jwtService)
	profileHandler := handler.NewProfileHandler(profileUsecase, customValidator, fileStorage.MaxSize())
	clubHandler := handler.NewClubHandler(clubUsecase, customValidator)
	moduleHandler := handler.NewModuleHandler(moduleUsecase, customValidator)
	documentHandler := handler.NewDocumentHandler(documentUsecase, customValidator, fileStorage.MaxSize())
	orderHandler := handler.NewOrderHandler(orderUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()
	loggerMiddleware := middleware.NewLoggerMiddleware(log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		profileHandler,
		clubHandler,
		moduleHandler,
		documentHandler,
		orderHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		loggerMiddleware,
		fileStorage.Handler(),
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, clubDirectory
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close stops background services and closes all connections
func (app *App) Close() {
	if app.ClubDirectory != nil {
		app.ClubDirectory.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
