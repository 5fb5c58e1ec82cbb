package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/application/service"
	"github.com/expensehub/expense-workflow/internal/auth"
	"github.com/expensehub/expense-workflow/internal/config"
	"github.com/expensehub/expense-workflow/internal/infrastructure/email"
	"github.com/expensehub/expense-workflow/internal/infrastructure/persistence/repository"
	httpserver "github.com/expensehub/expense-workflow/internal/interfaces/http"
	"github.com/expensehub/expense-workflow/migrations"
	"github.com/expensehub/expense-workflow/pkg/database"
	"github.com/expensehub/expense-workflow/pkg/utils"
)

func main() {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense workflow service",
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)

	// Mail transport
	mailSender := email.NewSMTPSender(email.Config{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		From:        cfg.SMTP.From,
		DialTimeout: cfg.SMTP.DialTimeout,
	}, logger)

	// Workflow engine
	expenseService := service.NewExpenseService(
		expenseRepo,
		userRepo,
		notificationRepo,
		mailSender,
		utils.NewKVLogger(logger),
	)

	// Authorization gate; the signing secret comes from config only
	gate := auth.NewGate(cfg.Auth.JWTSecret)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, gate, expenseService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}

	logger.Info("Server shut down cleanly")
}
