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
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/activity"
	activitypostgres "github.com/xtractpay/xtractpay/internal/activity/postgres"
	"github.com/xtractpay/xtractpay/internal/advisor"
	"github.com/xtractpay/xtractpay/internal/analytics"
	"github.com/xtractpay/xtractpay/internal/auth"
	"github.com/xtractpay/xtractpay/internal/bill"
	billpostgres "github.com/xtractpay/xtractpay/internal/bill/postgres"
	"github.com/xtractpay/xtractpay/internal/budget"
	budgetpostgres "github.com/xtractpay/xtractpay/internal/budget/postgres"
	"github.com/xtractpay/xtractpay/internal/core/events"
	"github.com/xtractpay/xtractpay/internal/extraction"
	"github.com/xtractpay/xtractpay/internal/grievance"
	grievancepostgres "github.com/xtractpay/xtractpay/internal/grievance/postgres"
	"github.com/xtractpay/xtractpay/internal/notification"
	"github.com/xtractpay/xtractpay/internal/transport/rest"
	"github.com/xtractpay/xtractpay/internal/transport/swagger"
	"github.com/xtractpay/xtractpay/internal/user"
	userpostgres "github.com/xtractpay/xtractpay/internal/user/postgres"
	"github.com/xtractpay/xtractpay/pkg/logger"
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
	Config       *internal.Config
	DB           *sqlx.DB
	Router       *chi.Mux
	Notification *notification.Client
	Logger       *slog.Logger
}

// passwordHasher breaks the construction cycle between the user and
// auth services: user creation needs hashing before the auth service
// exists.
type passwordHasher struct {
	cost int
}

func (p passwordHasher) HashPassword(password string) (string, error) {
	return auth.HashPassword(password, p.cost)
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if deps.Notification != nil {
			deps.Notification.Shutdown()
		}
		if err := deps.DB.Close(); err != nil {
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

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	log := logger.LoggerWrapper()
	if log == nil {
		log = slog.Default()
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// The gorm repositories share the pgx pool the health check pings.
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(log)

	notifClient := notification.NewClient(notification.Config{
		EndpointURL:  config.Notification.EndpointURL,
		Recipient:    config.Notification.Recipient,
		Timeout:      config.Notification.Timeout,
		MaxWorkers:   config.Notification.MaxWorkers,
		JobQueueSize: config.Notification.JobQueueSize,
	}, log)

	userRepo := userpostgres.NewUserRepository(gormDB)
	billRepo := billpostgres.NewBillRepository(gormDB)
	grievanceRepo := grievancepostgres.NewGrievanceRepository(gormDB)
	budgetRepo := budgetpostgres.NewBudgetRepository(gormDB)
	activityRepo := activitypostgres.NewActivityRepository(gormDB)

	hasher := passwordHasher{cost: config.Security.BCryptCost}
	userService := user.NewService(userRepo, hasher, log)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.AccessTokenSecret, config.Security.RefreshTokenSecret)
	tokenGen.AccessTokenTTL = config.Security.AccessTokenDuration
	tokenGen.RefreshTokenTTL = config.Security.RefreshTokenDuration
	authService := auth.NewService(userService, tokenGen)

	billService := bill.NewService(billRepo, userService, notifClient, eventBus, log)
	grievanceService := grievance.NewService(grievanceRepo, eventBus, log)
	budgetService := budget.NewService(budgetRepo, eventBus, log)
	analyticsService := analytics.NewService(billService, log)
	activityService := activity.NewService(activityRepo, log)

	eventBus.Subscribe(events.EventTypeBillSubmitted, budgetService.HandleBillSubmitted)
	activityService.RegisterSubscribers(eventBus)

	handlers := rest.Handlers{
		Auth:      auth.NewHandler(authService),
		User:      user.NewHandler(userService),
		Bill:      bill.NewHandler(billService),
		Grievance: grievance.NewHandler(grievanceService),
		Analytics: analytics.NewHandler(analyticsService),
		Budget:    budget.NewHandler(budgetService),
		Activity:  activity.NewHandler(activityService),
	}

	if config.OpenAI.APIKey != "" {
		openaiClient := openai.NewClient(config.OpenAI.APIKey)
		advisorService := advisor.NewService(openaiClient, config.OpenAI.Model, log)
		handlers.Advisor = advisor.NewHandler(advisorService)
	} else {
		log.Warn("OPENAI_API_KEY not set, analysis endpoints disabled")
	}

	if config.Extraction.BaseURL != "" {
		extractionClient := extraction.NewClient(config.Extraction.BaseURL, config.Extraction.Timeout, log)
		handlers.Extraction = extraction.NewHandler(extractionClient)
	} else {
		log.Warn("EXTRACTION_BASE_URL not set, receipt extraction disabled")
	}

	if err := swagger.ValidateContract(context.Background(), "./api/openapi.yml"); err != nil {
		log.Warn("openapi contract check failed, swagger UI may not render", "error", err)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, handlers, log)

	return &Dependencies{
		Config:       config,
		DB:           db,
		Router:       router,
		Notification: notifClient,
		Logger:       log,
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

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
