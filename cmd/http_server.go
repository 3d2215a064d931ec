package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpg "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pflegewerk/lohnmonitor/internal"
	"github.com/pflegewerk/lohnmonitor/internal/audit"
	auditpg "github.com/pflegewerk/lohnmonitor/internal/audit/postgres"
	"github.com/pflegewerk/lohnmonitor/internal/auth"
	authpg "github.com/pflegewerk/lohnmonitor/internal/auth/postgres"
	"github.com/pflegewerk/lohnmonitor/internal/core/events"
	"github.com/pflegewerk/lohnmonitor/internal/dashboard"
	"github.com/pflegewerk/lohnmonitor/internal/employee"
	employeepg "github.com/pflegewerk/lohnmonitor/internal/employee/postgres"
	"github.com/pflegewerk/lohnmonitor/internal/mailer"
	"github.com/pflegewerk/lohnmonitor/internal/notification"
	notificationpg "github.com/pflegewerk/lohnmonitor/internal/notification/postgres"
	"github.com/pflegewerk/lohnmonitor/internal/scan"
	"github.com/pflegewerk/lohnmonitor/internal/settings"
	settingspg "github.com/pflegewerk/lohnmonitor/internal/settings/postgres"
	"github.com/pflegewerk/lohnmonitor/internal/transport/rest"
	"github.com/pflegewerk/lohnmonitor/internal/user"
	userpg "github.com/pflegewerk/lohnmonitor/internal/user/postgres"
	"github.com/pflegewerk/lohnmonitor/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server and the daily promotion scan scheduler`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config    *internal.Config
	DB        *sqlx.DB
	Gorm      *gorm.DB
	Router    *chi.Mux
	Scheduler *scan.Scheduler
	Logger    *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	deps.Scheduler.Start()

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		deps.Scheduler.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Configure(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(config.Database, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	// Repositories
	authRepo := authpg.NewRepository(gormDB)
	userRepo := userpg.NewUserRepository(gormDB)
	employeeRepo := employeepg.NewEmployeeRepository(gormDB)
	settingsRepo := settingspg.NewSettingsRepository(gormDB)
	notificationRepo := notificationpg.NewNotificationRepository(gormDB)
	auditRepo := auditpg.NewAuditRepository(gormDB)

	// Core services
	auditService := audit.NewService(auditRepo, lg)
	settingsService := settings.NewService(settingsRepo, lg)
	employeeService := employee.NewService(employeeRepo, settingsService, auditService, lg)
	deduper := notification.NewDeduper(notificationRepo)
	notificationService := notification.NewService(notificationRepo, auditService, lg)
	dashboardService := dashboard.NewService(employeeRepo, settingsService, deduper, notificationRepo, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen)

	// Scan pipeline
	bus := events.NewEventBus(lg)
	bus.Subscribe(events.EventTypeScanCompleted, func(ctx context.Context, event events.Event) error {
		auditService.Record("system", "scan.completed", "scan", 0, event.Payload())
		return nil
	})

	dispatcher := mailer.NewSMTPDispatcher(config.SMTP, lg)
	orchestrator := scan.NewOrchestrator(
		employeeRepo, settingsService, notificationRepo, deduper, dispatcher, bus, lg)
	scheduler := scan.NewScheduler(orchestrator, config.Scan, lg)

	// HTTP layer
	router := chi.NewRouter()
	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		RBAC:         auth.NewRBACAuthorization(lg),
		User:         user.NewHandler(userRepo),
		Employee:     employee.NewHandler(employeeService),
		Notification: notification.NewHandler(notificationService),
		Dashboard:    dashboard.NewHandler(dashboardService),
		Settings:     settings.NewHandler(settingsService, auditService),
		Scan:         scan.NewHandler(scheduler),
	}
	rest.RegisterAllRoutes(router, db.DB, handlers, lg)

	return &Dependencies{
		Config:    config,
		DB:        db,
		Gorm:      gormDB,
		Router:    router,
		Scheduler: scheduler,
		Logger:    lg,
	}, nil
}

// initDB initializes the plain database connection used for health
// checks and migrations.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "pgx"
	}

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm opens the ORM on top of the existing connection pool so
// both layers share one set of connections.
func initGorm(cfg internal.DatabaseConfig, db *sqlx.DB) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(gormsqlite.Open(cfg.Source), &gorm.Config{})
	default:
		return gorm.Open(gormpg.New(gormpg.Config{Conn: db.DB}), &gorm.Config{})
	}
}
