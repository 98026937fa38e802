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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	accessctlPostgres "github.com/dmitrivolkov/safety-management/internal/accessctl/postgres"
	"github.com/dmitrivolkov/safety-management/internal/auth"
	authPostgres "github.com/dmitrivolkov/safety-management/internal/auth/postgres"
	"github.com/dmitrivolkov/safety-management/internal/core/events"
	"github.com/dmitrivolkov/safety-management/internal/directory"
	directoryPostgres "github.com/dmitrivolkov/safety-management/internal/directory/postgres"
	"github.com/dmitrivolkov/safety-management/internal/employee"
	employeePostgres "github.com/dmitrivolkov/safety-management/internal/employee/postgres"
	"github.com/dmitrivolkov/safety-management/internal/equipment"
	equipmentPostgres "github.com/dmitrivolkov/safety-management/internal/equipment/postgres"
	"github.com/dmitrivolkov/safety-management/internal/medical"
	medicalPostgres "github.com/dmitrivolkov/safety-management/internal/medical/postgres"
	"github.com/dmitrivolkov/safety-management/internal/siz"
	sizPostgres "github.com/dmitrivolkov/safety-management/internal/siz/postgres"
	"github.com/dmitrivolkov/safety-management/internal/transport"
	"github.com/dmitrivolkov/safety-management/internal/transport/rest"
	"github.com/dmitrivolkov/safety-management/internal/transport/swagger"
	"github.com/dmitrivolkov/safety-management/internal/user"
	"github.com/dmitrivolkov/safety-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	GormDB   *gorm.DB
	SqlxDB   *sqlx.DB
	Router   *chi.Mux
	Resolver *accessctl.Resolver
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.SqlxDB, deps.Resolver, deps.Handlers,
		deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.SqlxDB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.L()

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		lg.Warn("openapi spec validation failed", "error", err)
	}

	gormDB, err := initGormDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	sqlxDB, err := initSqlxDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	grantStore := accessctlPostgres.NewGrantStore(gormDB)
	resolver := accessctl.NewResolver(grantStore, lg)

	eventBus := events.NewEventBus(lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen)

	directoryRepo := directoryPostgres.NewDirectoryRepository(gormDB)
	directoryService := directory.NewService(directoryRepo, lg)
	grantService := directory.NewGrantService(directoryPostgres.NewProfileRepository(gormDB), grantStore, lg)

	employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(gormDB), directoryRepo, lg)
	sizService := siz.NewService(sizPostgres.NewSIZRepository(gormDB), employeeService, lg)
	medicalService := medical.NewService(medicalPostgres.NewMedicalRepository(gormDB), employeeService, lg)
	equipmentService := equipment.NewService(equipmentPostgres.NewEquipmentRepository(gormDB), directoryRepo, eventBus, lg)

	equipment.NewEventHandler(lg).RegisterEventHandlers(eventBus)

	baseHandler := transport.NewBaseHandler(lg)
	handlers := rest.Handlers{
		Auth:      auth.NewHandler(authService),
		User:      user.NewHandler(),
		Directory: directory.NewHandler(baseHandler, directoryService, grantService),
		Employee:  employee.NewHandler(baseHandler, employeeService),
		SIZ:       siz.NewHandler(baseHandler, sizService),
		Medical:   medical.NewHandler(baseHandler, medicalService),
		Equipment: equipment.NewHandler(baseHandler, equipmentService),
	}

	return &Dependencies{
		Config:   config,
		GormDB:   gormDB,
		SqlxDB:   sqlxDB,
		Router:   chi.NewRouter(),
		Resolver: resolver,
		Handlers: handlers,
		Logger:   lg,
	}, nil
}

func initGormDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Source), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initSqlxDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
