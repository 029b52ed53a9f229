package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/nbilal/scholarbridge/internal/app/controllers"
	appMigrations "github.com/nbilal/scholarbridge/internal/app/migrations"
	appRepos "github.com/nbilal/scholarbridge/internal/app/repositories"
	appRoutes "github.com/nbilal/scholarbridge/internal/app/routes"
	appServices "github.com/nbilal/scholarbridge/internal/app/services"
	"github.com/nbilal/scholarbridge/internal/cache"
	"github.com/nbilal/scholarbridge/internal/config"
	"github.com/nbilal/scholarbridge/internal/db"
	appMiddleware "github.com/nbilal/scholarbridge/internal/middleware"
	pkgAuth "github.com/nbilal/scholarbridge/internal/pkg/auth"
	"github.com/nbilal/scholarbridge/internal/pkg/email"
	"github.com/nbilal/scholarbridge/internal/pkg/filestorage"
	"github.com/nbilal/scholarbridge/internal/pkg/helpers"
	"github.com/nbilal/scholarbridge/internal/pkg/logger"
	"github.com/nbilal/scholarbridge/internal/pkg/validation"
	"github.com/nbilal/scholarbridge/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService         appServices.AuthService
	StudentService      appServices.StudentService
	DocumentService     appServices.DocumentService
	ApplicationService  appServices.ApplicationService
	FieldReviewService  appServices.FieldReviewService
	SponsorshipService  appServices.SponsorshipService
	DisbursementService appServices.DisbursementService
	ConversationService appServices.ConversationService

	AuthController         *appControllers.AuthController
	StudentController      *appControllers.StudentController
	ApplicationController  *appControllers.ApplicationController
	DocumentController     *appControllers.DocumentController
	FieldReviewController  *appControllers.FieldReviewController
	SponsorshipController  *appControllers.SponsorshipController
	DisbursementController *appControllers.DisbursementController
	ConversationController *appControllers.ConversationController

	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	GateCache      *cache.RedisGateCache
	Notifier       email.Notifier
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default accounts.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	validation.RegisterCustomRules()

	var err error
	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Server.Port
	}
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.GateCache, err = cache.NewRedisGateCache(cfg, lgr)
	if err != nil {
		// The gate falls back to the database when redis is unavailable.
		lgr.Warn().Err(err).Msg("Gate cache unavailable, continuing without it")
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Notifier = email.NewSMTPNotifier(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromEmail: cfg.SMTP.FromEmail,
		FromName:  cfg.SMTP.FromName,
	}, lgr)

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.StudentService = appServices.NewStudentService(deps.Repos.StudentRepository, deps.Repos.ApplicationRepository, lgr)
	deps.DocumentService = appServices.NewDocumentService(
		deps.Repos.DocumentRepository,
		deps.Repos.ApplicationRepository,
		deps.Repos.StudentRepository,
		deps.FileStorage,
		lgr,
	)
	deps.ApplicationService = appServices.NewApplicationService(
		deps.Repos.ApplicationRepository,
		deps.Repos.StudentRepository,
		deps.DocumentService,
		database,
		deps.Notifier,
		lgr,
	)
	deps.FieldReviewService = appServices.NewFieldReviewService(
		deps.Repos.FieldReviewRepository,
		deps.Repos.ApplicationRepository,
		deps.Repos.StudentRepository,
		deps.Repos.UserRepository,
		deps.Notifier,
		lgr,
	)

	// A nil *RedisGateCache must stay nil inside the interface-typed field.
	var gateCache cache.GateCache
	if deps.GateCache != nil {
		gateCache = deps.GateCache
	}
	deps.SponsorshipService = appServices.NewSponsorshipService(
		deps.Repos.SponsorshipRepository,
		deps.Repos.StudentRepository,
		deps.Repos.ApplicationRepository,
		database,
		gateCache,
		deps.Notifier,
		lgr,
	)
	deps.DisbursementService = appServices.NewDisbursementService(
		deps.Repos.DisbursementRepository,
		deps.Repos.StudentRepository,
		database,
		lgr,
	)
	deps.ConversationService = appServices.NewConversationService(
		deps.Repos.ConversationRepository,
		deps.Repos.StudentRepository,
		deps.SponsorshipService,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService, lgr)
	deps.ApplicationController = appControllers.NewApplicationController(deps.ApplicationService, deps.DocumentService, lgr)
	deps.DocumentController = appControllers.NewDocumentController(deps.DocumentService, lgr)
	deps.FieldReviewController = appControllers.NewFieldReviewController(deps.FieldReviewService, lgr)
	deps.SponsorshipController = appControllers.NewSponsorshipController(deps.SponsorshipService, cfg.Server.PaymentSecret, lgr)
	deps.DisbursementController = appControllers.NewDisbursementController(deps.DisbursementService, lgr)
	deps.ConversationController = appControllers.NewConversationController(deps.ConversationService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(gin.Recovery())

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.StudentController,
		deps.ApplicationController,
		deps.DocumentController,
		deps.FieldReviewController,
		deps.SponsorshipController,
		deps.DisbursementController,
		deps.ConversationController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
