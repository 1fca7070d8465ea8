package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/auth"
	"github.com/openproc/requisition-approval/internal/config"
	appdb "github.com/openproc/requisition-approval/internal/database"
	"github.com/openproc/requisition-approval/internal/httpapi"
	"github.com/openproc/requisition-approval/internal/report"
	"github.com/openproc/requisition-approval/internal/repository"
	"github.com/openproc/requisition-approval/internal/service"
	"github.com/openproc/requisition-approval/pkg/database"
	"github.com/openproc/requisition-approval/pkg/logging"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting requisition approval server",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

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
	if err := migrator.Run(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	reqRepo := repository.NewRequisitionRepository(db, logger)
	refRepo := repository.NewReferenceRepository(db, logger)

	if err := appdb.SeedReferenceData(context.Background(), refRepo, logger); err != nil {
		logger.Fatal("Failed to seed reference data", zap.Error(err))
	}

	svcLogger := logging.NewKVLogger(logger)
	submissionSvc := service.NewSubmissionService(reqRepo, refRepo, svcLogger)
	statusSvc := service.NewStatusService(reqRepo, svcLogger)
	querySvc := service.NewQueryService(reqRepo, svcLogger)

	issuer := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	exporter := report.NewRegisterExporter(logger)

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, submissionSvc, statusSvc, querySvc, refRepo, issuer, exporter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}
