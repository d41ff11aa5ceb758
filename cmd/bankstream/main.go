package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Aidin1998/bankstream/internal/bank"
	bankgrpc "github.com/Aidin1998/bankstream/internal/bank/handlers/grpc"
	"github.com/Aidin1998/bankstream/internal/files"
	filegrpc "github.com/Aidin1998/bankstream/internal/files/handlers/grpc"
	"github.com/Aidin1998/bankstream/internal/infrastructure/config"
	"github.com/Aidin1998/bankstream/internal/infrastructure/server"
	"github.com/Aidin1998/bankstream/internal/telemetry"
	"github.com/Aidin1998/bankstream/pkg/logger"
	pb "github.com/Aidin1998/bankstream/proto/bank"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create logger
	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Exporter:    cfg.Tracing.Exporter,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		zapLogger.Fatal("Failed to set up tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			zapLogger.Error("Failed to shut down tracing", zap.Error(err))
		}
	}()

	// Create services
	bankSvc, err := bank.NewService(bank.Config{
		Balance:        cfg.Bank.Balance,
		MaxWithdraw:    cfg.Bank.MaxWithdraw,
		Denomination:   cfg.Bank.Denomination,
		PayoutInterval: cfg.Bank.PayoutInterval,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create bank service", zap.Error(err))
	}

	uploader, err := files.NewUploader(afero.NewOsFs(), files.Config{
		Dir:  cfg.Files.Dir,
		Name: cfg.Files.Name,
		Mode: files.Mode(cfg.Files.Mode),
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create uploader", zap.Error(err))
	}

	// Register gRPC services
	services := server.NewGRPCServiceManager(zapLogger)
	services.RegisterService("bank.BankService", bankgrpc.NewBankHandler(bankSvc, zapLogger).Register)
	services.RegisterService("bank.FileService", filegrpc.NewFileHandler(uploader, zapLogger).Register)

	serverManager, err := server.NewServerManager(server.ServerManagerOptions{
		Config:         cfg,
		Logger:         zapLogger,
		Codec:          pb.Codec{},
		ServiceManager: services,
	})
	if err != nil {
		zapLogger.Fatal("Failed to create server manager", zap.Error(err))
	}

	if err := serverManager.Run(ctx); err != nil {
		zapLogger.Error("Server stopped with error", zap.Error(err))
		return
	}
	zapLogger.Info("Server exited")
}
