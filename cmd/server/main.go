package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/config"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/container"
	httpserver "github.com/drh-piracicaba/fatura-coparticipacao/internal/interfaces/http"
	"github.com/drh-piracicaba/fatura-coparticipacao/pkg/utils"
)

const version = "1.0.0"

func main() {
	configPath := os.Getenv("FATURA_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(cfg.LoggerOptions("fatura-server"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting invoice server",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("base_dir", cfg.Invoices.BaseDir))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize ledger, metrics and pipeline
	app, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create container", zap.Error(err))
	}
	if err := app.Start(ctx); err != nil {
		logger.Fatal("Failed to start container", zap.Error(err))
	}
	defer app.Close()

	server, err := httpserver.NewServer(httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsPath:     cfg.Metrics.Path,
		Debug:           cfg.Logger.Level == "debug",
	}, app.Invoices(), app, app.Metrics(), logger.Named("http"))
	if err != nil {
		logger.Fatal("Failed to create HTTP server", zap.Error(err))
	}

	// Serve until SIGINT or SIGTERM
	if err := server.Start(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Server exited successfully")
}
