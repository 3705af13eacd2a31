package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/scedev/parkpermit/internal/app/controllers"
	appMigrations "github.com/scedev/parkpermit/internal/app/migrations"
	appRepos "github.com/scedev/parkpermit/internal/app/repositories"
	appRoutes "github.com/scedev/parkpermit/internal/app/routes"
	appServices "github.com/scedev/parkpermit/internal/app/services"
	"github.com/scedev/parkpermit/internal/config"
	"github.com/scedev/parkpermit/internal/db"
	appMiddleware "github.com/scedev/parkpermit/internal/middleware"
	pkgAuth "github.com/scedev/parkpermit/internal/pkg/auth"
	"github.com/scedev/parkpermit/internal/pkg/email"
	"github.com/scedev/parkpermit/internal/pkg/filestorage"
	"github.com/scedev/parkpermit/internal/pkg/helpers"
	"github.com/scedev/parkpermit/internal/pkg/logger"
	"github.com/scedev/parkpermit/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	SubmissionService appServices.SubmissionService
	ExportService     appServices.ExportService
	ReviewService     appServices.ReviewService
	RosterService     appServices.RosterService
	AuthService       appServices.AuthService

	ApplicationController *appControllers.ApplicationController
	RequestController     *appControllers.RequestController
	UserController        *appControllers.UserController
	AuthController        *appControllers.AuthController

	AuthMiddleware *appMiddleware.AuthMiddleware
	SubmitLimiter  *appMiddleware.RateLimiter

	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	LicenseStorage *filestorage.LicenseStorage
	Cache          *db.RedisCache
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
// seeds the default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	migrator := appMigrations.NewMigrator(database.Pool)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations applied")

	if err := seed.CreateDefaultData(ctx, database.Pool, lgr); err != nil {
		// Seeding is best effort; the service still works without it.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway")
	}

	return database, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)
	deps.Cache = db.NewRedisCache(cfg)

	var err error
	deps.LicenseStorage, err = filestorage.NewLicenseStorage(cfg.Storage.UploadsDir, cfg.Storage.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize license storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	notifier := email.NewNotificationService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromEmail: cfg.SMTP.FromEmail,
		FromName:  cfg.SMTP.FromName,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr)

	deps.SubmissionService = appServices.NewSubmissionService(deps.Repos.ApplicationRepository, deps.LicenseStorage)
	deps.ExportService = appServices.NewExportService(deps.Repos.ApplicationRepository)
	deps.ReviewService = appServices.NewReviewService(deps.Repos.RequestRepository, deps.Repos.ApplicationRepository, deps.LicenseStorage, notifier, deps.Cache)
	deps.RosterService = appServices.NewRosterService(deps.Repos.UserRepository, notifier)
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.Repos.TokenRepository, deps.JWTService)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.SubmitLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.SubmitBurst, cfg.RateLimit.SubmitPerMinute)

	deps.ApplicationController = appControllers.NewApplicationController(deps.SubmissionService, deps.ExportService)
	deps.RequestController = appControllers.NewRequestController(deps.ReviewService)
	deps.UserController = appControllers.NewUserController(deps.RosterService)
	deps.AuthController = appControllers.NewAuthController(deps.AuthService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, database *db.PostgresDB, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	appRoutes.SetupRouter(router, appRoutes.Deps{
		ApplicationController: deps.ApplicationController,
		RequestController:     deps.RequestController,
		UserController:        deps.UserController,
		AuthController:        deps.AuthController,
		AuthMiddleware:        deps.AuthMiddleware,
		SubmitLimiter:         deps.SubmitLimiter,
		UploadsDir:            deps.LicenseStorage.BasePath(),
		Healthcheck: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return database.Healthy(ctx)
		},
		CacheCheck: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()
			return deps.Cache.Healthy(ctx)
		},
	})

	return router
}
