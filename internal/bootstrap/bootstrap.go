package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/escola/internal/app/controllers"
	appMigrations "github.com/yigit/escola/internal/app/migrations"
	appRepos "github.com/yigit/escola/internal/app/repositories"
	appRoutes "github.com/yigit/escola/internal/app/routes"
	appServices "github.com/yigit/escola/internal/app/services"
	"github.com/yigit/escola/internal/config"
	"github.com/yigit/escola/internal/db"
	appMiddleware "github.com/yigit/escola/internal/middleware"
	pkgAuth "github.com/yigit/escola/internal/pkg/auth"
	"github.com/yigit/escola/internal/pkg/logger"
	"github.com/yigit/escola/internal/pkg/session"
	"github.com/yigit/escola/internal/web"
)

// DefaultConfigPath is used when no --config flag is given
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config              *config.Config
	Logger              zerolog.Logger
	DB                  *db.PostgresDB
	Repos               *appRepos.Repositories
	Sessions            *session.Manager
	AuthService         *appServices.AuthService
	StudentService      *appServices.StudentService
	PetService          *appServices.PetService
	DashboardService    *appServices.DashboardService
	ReportService       *appServices.ReportService
	AuthMiddleware      *appMiddleware.AuthMiddleware
	HealthController    *appControllers.HealthController
	AuthController      *appControllers.AuthController
	DashboardController *appControllers.DashboardController
	StudentController   *appControllers.StudentController
	PetController       *appControllers.PetController
	ReportController    *appControllers.ReportController
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the connection pool
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies the embedded migrations and returns the resulting schema version
func RunMigrations(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) (int64, error) {
	migrator, err := appMigrations.NewMigrator(database.Pool)
	if err != nil {
		return 0, err
	}
	defer migrator.Close()

	if err := migrator.Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return 0, fmt.Errorf("database migrations failed: %w", err)
	}

	version, err := migrator.Version(ctx)
	if err != nil {
		return 0, err
	}
	lgr.Info().Int64("version", version).Msg("Database migrations successfully applied.")
	return version, nil
}

// SessionConfig maps the session section of the config to the session manager settings
func SessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		Secret:      cfg.Session.Secret,
		CookieName:  cfg.Session.CookieName,
		Lifetime:    cfg.SessionLifetime(),
		RememberFor: cfg.SessionRememberFor(),
		Secure:      cfg.Session.Secure,
		HTTPOnly:    cfg.Session.HTTPOnly,
		SameSite:    cfg.Session.SameSite,
	}
}

// BuildServices initializes the repositories and services. The CLI commands only need this part.
func BuildServices(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Config: cfg, Logger: lgr, DB: database}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.AuthService = appServices.NewAuthService(deps.Repos.AccountRepository, pkgAuth.NewHasher(), lgr)
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.Repos.PetRepository,
		cfg.AllowedExtensions(),
		lgr,
	)
	deps.PetService = appServices.NewPetService(deps.Repos.PetRepository, deps.Repos.StudentRepository, lgr)
	deps.DashboardService = appServices.NewDashboardService(
		deps.Repos.StudentRepository,
		deps.Repos.PetRepository,
		deps.Repos.StatsRepository,
	)
	deps.ReportService = appServices.NewReportService(deps.Repos.StudentRepository, deps.Repos.PetRepository)

	return deps
}

// BuildDependencies initializes repositories, services, the session manager and the controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := BuildServices(cfg, database, lgr)

	sessions, err := session.NewManager(SessionConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sessions: %w", err)
	}
	deps.Sessions = sessions

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(sessions, deps.AuthService, lgr)

	deps.HealthController = appControllers.NewHealthController(database)
	deps.AuthController = appControllers.NewAuthController(deps.AuthService, sessions, lgr)
	deps.DashboardController = appControllers.NewDashboardController(deps.DashboardService, sessions, lgr)
	deps.StudentController = appControllers.NewStudentController(
		deps.StudentService,
		sessions,
		cfg.Upload.MaxContentLength,
		lgr,
	)
	deps.PetController = appControllers.NewPetController(deps.PetService, deps.StudentService, sessions, lgr)
	deps.ReportController = appControllers.NewReportController(
		deps.ReportService,
		deps.DashboardService,
		deps.StudentService,
		sessions,
		lgr,
	)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware, templates and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxContentLength
	router.SetHTMLTemplate(templates)
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.BodyLimit(cfg.Upload.MaxContentLength, deps.Sessions, lgr),
	)

	appRoutes.SetupRouter(router,
		web.Static(),
		deps.HealthController,
		deps.AuthController,
		deps.DashboardController,
		deps.StudentController,
		deps.PetController,
		deps.ReportController,
		deps.AuthMiddleware,
	)

	return router, nil
}
