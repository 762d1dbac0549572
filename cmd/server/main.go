package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/storeops/opsflow/internal/application/dispatcher"
	"github.com/storeops/opsflow/internal/application/service"
	workflowapp "github.com/storeops/opsflow/internal/application/workflow"
	"github.com/storeops/opsflow/internal/config"
	"github.com/storeops/opsflow/internal/export"
	"github.com/storeops/opsflow/internal/infrastructure/persistence/repository"
	"github.com/storeops/opsflow/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/storeops/opsflow/internal/interfaces/http"
	"github.com/storeops/opsflow/pkg/database"
	"github.com/storeops/opsflow/pkg/utils"
)

func main() {
	// Load .env if present; real environment variables win
	_ = gotenv.Load()

	configPath := os.Getenv("OPSFLOW_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
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

	logger.Info("Starting entity workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer sqlDB.Close()

	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(sqlDB, logger)

	entityRepo := repository.NewEntityRepository(sqlDB, logger)
	itemRepo := repository.NewLineItemRepository(sqlDB, logger)
	paymentRepo := repository.NewPaymentRepository(sqlDB, logger)
	historyRepo := repository.NewHistoryRepository(sqlDB, logger)

	appLogger := &zapLoggerAdapter{logger: logger}

	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(appLogger))
	defer disp.Close()

	engine := workflowapp.NewEngine(
		entityRepo,
		itemRepo,
		historyRepo,
		txManager,
		workflowapp.WithDispatcher(disp),
	)

	entityService := service.NewEntityService(
		entityRepo,
		itemRepo,
		paymentRepo,
		historyRepo,
		txManager,
		disp,
		appLogger,
	)

	rolloverService := service.NewRolloverService(
		engine,
		entityService,
		entityRepo,
		disp,
		appLogger,
	)

	reporter := export.NewExcelReporter(cfg.Export.OutputDir, logger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		entityService,
		rolloverService,
		engine,
		reporter,
		appLogger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}

// zapLoggerAdapter adapts zap.Logger to the keysAndValues logger
// interfaces used by the application layer.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, toZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, toZapFields(keysAndValues...)...)
}

func toZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
