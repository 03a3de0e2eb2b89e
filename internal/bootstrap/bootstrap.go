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

	"github.com/nitn/phd-admission/internal/app/controllers"
	appMigrations "github.com/nitn/phd-admission/internal/app/migrations"
	appRepos "github.com/nitn/phd-admission/internal/app/repositories"
	appRoutes "github.com/nitn/phd-admission/internal/app/routes"
	appServices "github.com/nitn/phd-admission/internal/app/services"
	"github.com/nitn/phd-admission/internal/config"
	"github.com/nitn/phd-admission/internal/db"
	"github.com/nitn/phd-admission/internal/jobs"
	appMiddleware "github.com/nitn/phd-admission/internal/middleware"
	pkgAuth "github.com/nitn/phd-admission/internal/pkg/auth"
	"github.com/nitn/phd-admission/internal/pkg/filestorage"
	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/nitn/phd-admission/internal/pkg/metrics"
	"github.com/nitn/phd-admission/internal/pkg/pdfassembly"
	"github.com/nitn/phd-admission/internal/seed"
)

// DefaultConfigPath is used when no path is given
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services       *appServices.Services
	Controllers    *appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimiter    *appMiddleware.RateLimiter
	JWTService     *pkgAuth.JWTService
	Store          filestorage.DocumentStore
	LocalStorage   *filestorage.LocalStorage // nil unless the local driver is used
	TempDir        *filestorage.TempDir
	Sweeper        *jobs.TempSweeper
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects, applies migrations and seeds the application id counter.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if err := RunMigrations(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	if err := seed.CreateDefaultData(ctx, appRepos.NewSequenceRepository(database.Pool), cfg.Application.CounterName, lgr); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create default data: %w", err)
	}
	return database, nil
}

// RunMigrations applies every pending migration file
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); err != nil {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// NewDocumentStore builds the configured document store
func NewDocumentStore(cfg *config.Config) (filestorage.DocumentStore, *filestorage.LocalStorage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverCloudinary:
		c := cfg.Storage.Cloudinary
		store, err := filestorage.NewCloudinaryStore(c.CloudName, c.APIKey, c.APISecret)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
		}
		return store, nil, nil
	default:
		local, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath, cfg.Storage.LocalURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		return local, local, nil
	}
}

// DocumentBaseURLs lists the URL prefixes under which the document store serves files.
// Print only fetches documents below one of them.
func DocumentBaseURLs(cfg *config.Config) []string {
	if cfg.Storage.Driver == config.StorageDriverCloudinary {
		return []string{filestorage.CloudinaryBaseURL(cfg.Storage.Cloudinary.CloudName)}
	}
	return []string{cfg.Storage.LocalURL}
}

// NewTempDir opens the upload staging directory
func NewTempDir(cfg *config.Config) (*filestorage.TempDir, error) {
	dir := cfg.Uploads.TempDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "phd-admission-uploads")
	}
	return filestorage.NewTempDir(dir)
}

// NewJWTService builds the token service from configuration
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		AccessSecret:    cfg.JWT.AccessTokenSecret,
		RefreshSecret:   cfg.JWT.RefreshTokenSecret,
		AccessTokenExp:  config.Duration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: config.Duration(cfg.JWT.RefreshTokenExpiration, 240*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
}

// BuildDependencies wires the Postgres repositories into services and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	repos := appRepos.NewRepositories(database)
	return BuildWithStores(cfg, appServices.StoresFrom(repos), lgr)
}

// BuildWithStores wires services and controllers on top of the given stores.
func BuildWithStores(cfg *config.Config, stores appServices.Stores, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	var err error
	deps.Store, deps.LocalStorage, err = NewDocumentStore(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize document store")
		return nil, err
	}

	deps.TempDir, err = NewTempDir(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize upload temp directory")
		return nil, err
	}
	deps.Sweeper = jobs.NewTempSweeper(deps.TempDir, config.Duration(cfg.Uploads.TempMaxAge, time.Hour))

	deps.JWTService = NewJWTService(cfg)

	fetcher, err := pdfassembly.NewHTTPFetcher(config.Duration(cfg.PDF.FetchTimeout, 20*time.Second), pdfassembly.DefaultMaxDocumentBytes, DocumentBaseURLs(cfg))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize document fetcher")
		return nil, err
	}

	deps.Services = appServices.NewServices(stores, appServices.Dependencies{
		JWTService: deps.JWTService,
		Store:      deps.Store,
		TempDir:    deps.TempDir,
		Assembler:  pdfassembly.NewAssembler(fetcher),
		Folder:     cfg.Storage.Folder,
		Limits: appServices.UploadLimits{
			MaxImageBytes:    cfg.Uploads.MaxImageBytes,
			MaxDocumentBytes: cfg.Uploads.MaxDocumentBytes,
		},
		ApplicationID: appServices.ApplicationIDFormat{
			Prefix:  cfg.Application.IDPrefix,
			Width:   cfg.Application.IDWidth,
			Counter: cfg.Application.CounterName,
		},
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Services.AuthService)
	if cfg.RateLimit.RequestsPerSecond > 0 {
		deps.RateLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	deps.Controllers = &appRoutes.Controllers{
		Auth:        controllers.NewAuthController(deps.Services.AuthService, controllers.CookieConfig{Secure: cfg.Server.CookieSecure}, logger.Component("auth-controller")),
		Personal:    controllers.NewPersonalController(deps.Services.PersonalService),
		Academic:    controllers.NewAcademicController(deps.Services.AcademicService),
		Payment:     controllers.NewPaymentController(deps.Services.PaymentService),
		Enclosure:   controllers.NewEnclosureController(deps.Services.EnclosureService),
		Application: controllers.NewApplicationController(deps.Services.ApplicationService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}
	appMiddleware.ExposeErrors(!cfg.IsProduction())

	corsHandler, err := appMiddleware.CORS(cfg.Server.AllowedOrigins)
	if err != nil {
		return nil, fmt.Errorf("invalid allowed origin: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	// X-Forwarded-For is only honoured from configured proxies; none by default
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxy: %w", err)
	}
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(),
		appMiddleware.SecurityHeaders(),
		corsHandler,
		metrics.Middleware(),
		appMiddleware.ErrorHandler(),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.RateLimiter)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if deps.LocalStorage != nil {
		router.Static("/uploads", cfg.Storage.LocalPath)
		lgr.Info().Str("path", cfg.Storage.LocalPath).Msg("Static file serving configured for uploads directory")
	}

	return router, nil
}
