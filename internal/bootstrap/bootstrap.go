package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ozgurs/applyhub/docs" // generated swagger docs
	appControllers "github.com/ozgurs/applyhub/internal/app/controllers"
	appMigrations "github.com/ozgurs/applyhub/internal/app/migrations"
	appRepos "github.com/ozgurs/applyhub/internal/app/repositories"
	appRoutes "github.com/ozgurs/applyhub/internal/app/routes"
	appServices "github.com/ozgurs/applyhub/internal/app/services"
	"github.com/ozgurs/applyhub/internal/config"
	"github.com/ozgurs/applyhub/internal/db"
	appMiddleware "github.com/ozgurs/applyhub/internal/middleware"
	pkgAuth "github.com/ozgurs/applyhub/internal/pkg/auth"
	"github.com/ozgurs/applyhub/internal/pkg/cache"
	"github.com/ozgurs/applyhub/internal/pkg/email"
	"github.com/ozgurs/applyhub/internal/pkg/filestorage"
	"github.com/ozgurs/applyhub/internal/pkg/helpers"
	"github.com/ozgurs/applyhub/internal/pkg/logger"
	"github.com/ozgurs/applyhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                  *appRepos.Repositories
	Services               *appServices.Services
	CaseController         *appControllers.CaseController
	ChatController         *appControllers.ChatController
	FileController         *appControllers.FileController
	NotificationController *appControllers.NotificationController
	UnreadController       *appControllers.UnreadController
	AuditController        *appControllers.AuditController
	AuthMiddleware         *appMiddleware.AuthMiddleware
	JWTService             *pkgAuth.JWTService
	FileStorage            *filestorage.LocalStorage
	UnreadCache            *cache.UnreadCache
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// A .env file in the working directory is applied first so local overrides
// reach the config loader.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

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
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Seeding is convenience, not correctness; keep starting.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	storageBaseURL := strings.TrimSuffix(cfg.Server.BaseURL, "/") + "/uploads"
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, storageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	mailer := email.NewSMTPMailer(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
	}, lgr)

	// The unread cache is optional; without a Redis address every dashboard
	// poll goes straight to the database.
	var unreadCache appServices.UnreadCacheStore
	if cfg.Redis.Addr != "" {
		deps.UnreadCache, err = cache.NewUnreadCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.RedisTTL())
		if err != nil {
			lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis, unread cache disabled")
		} else {
			unreadCache = deps.UnreadCache
			lgr.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.RedisTTL()).Msg("Unread summary cache enabled")
		}
	}

	deps.Services = appServices.NewServices(deps.Repos, mailer, unreadCache, deps.FileStorage, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.CaseController = appControllers.NewCaseController(deps.Services.CaseService)
	deps.ChatController = appControllers.NewChatController(deps.Services.ChatService)
	deps.FileController = appControllers.NewFileController(deps.Services.FileService)
	deps.NotificationController = appControllers.NewNotificationController(deps.Services.NotificationService)
	deps.UnreadController = appControllers.NewUnreadController(deps.Services.UnreadService)
	deps.AuditController = appControllers.NewAuditController(deps.Services.AuditService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	appRoutes.SetupRouter(router,
		deps.CaseController,
		deps.ChatController,
		deps.FileController,
		deps.NotificationController,
		deps.UnreadController,
		deps.AuditController,
		deps.AuthMiddleware,
	)

	return router
}
