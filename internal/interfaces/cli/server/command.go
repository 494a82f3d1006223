package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	enrolUsecases "coursepay/internal/application/enrollment/usecases"
	"coursepay/internal/infrastructure/config"
	"coursepay/internal/infrastructure/database"
	"coursepay/internal/infrastructure/email"
	"coursepay/internal/infrastructure/migration"
	"coursepay/internal/infrastructure/paystack"
	"coursepay/internal/infrastructure/repository"
	httpRouter "coursepay/internal/interfaces/http"
	"coursepay/internal/interfaces/http/handlers"
	sharedDB "coursepay/internal/shared/db"
	"coursepay/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the enrolment bridge HTTP server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run pending database migrations on startup (not recommended for production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ginMode := mapEnvToGinMode(env)
	cfg.Server.Mode = ginMode

	if err := logger.Init(&cfg.Logger, ginMode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting server",
		"environment", env,
		"auto_migrate", autoMigrate)

	gin.SetMode(ginMode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
	}

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	if autoMigrate {
		migrator := migration.NewMigrator("internal/infrastructure/migration/scripts")
		if err := migrator.Up(database.Get()); err != nil {
			logger.Fatal("migration failed", "error", err)
		}
	}

	db := database.Get()
	log := logger.NewLogger()

	attemptRepo := repository.NewAttemptRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrolmentRepo := repository.NewEnrolmentRepository(db)

	client := paystack.NewClient(&cfg.Paystack, log.Named("paystack"))
	gateway := paystack.NewGateway(client)
	tracker := paystack.NewTracker(&cfg.Paystack, log.Named("tracker"))
	notifier := email.NewEnrolmentNotifier(cfg.Email)

	callbackURL := cfg.Server.BaseURL + "/enrol/return"

	startUC := enrolUsecases.NewStartEnrollmentUseCase(
		attemptRepo, offerRepo, userRepo, courseRepo, enrolmentRepo, gateway,
		callbackURL, cfg.Enrolment.ReferenceLength, log.Named("start-enrollment"))

	completeUC := enrolUsecases.NewCompleteEnrollmentUseCase(
		attemptRepo, ledgerRepo, offerRepo, userRepo, courseRepo, enrolmentRepo,
		gateway, sharedDB.NewTransactionManager(db), cfg.Enrolment, log.Named("complete-enrollment"))
	completeUC.SetNotifier(notifier)
	completeUC.SetTracker(tracker)

	router := httpRouter.NewRouter(httpRouter.RouterDeps{
		WebhookHandler:   handlers.NewWebhookHandler(completeUC, client, log.Named("webhook")),
		EnrolmentHandler: handlers.NewEnrolmentHandler(startUC, completeUC, cfg.Enrolment, log.Named("enrolment")),
		HealthHandler:    handlers.NewHealthHandler(db),
		Logger:           log.Named("http"),
		Mode:             ginMode,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", ginMode)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

func mapEnvToGinMode(env string) string {
	switch env {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
