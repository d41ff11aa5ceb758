package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/encoding"

	"github.com/Aidin1998/bankstream/internal/infrastructure/config"
)

// ServerManager coordinates the gRPC server and the metrics endpoint
type ServerManager struct {
	config *config.Config
	logger *zap.Logger

	grpcServer    *GRPCServer
	metricsServer *http.Server
}

// ServerManagerOptions contains options for creating a ServerManager
type ServerManagerOptions struct {
	Config         *config.Config
	Logger         *zap.Logger
	Codec          encoding.Codec
	ServiceManager *GRPCServiceManager
	// Gatherer backs the metrics endpoint; defaults to the global registry
	Gatherer prometheus.Gatherer
}

// NewServerManager creates a new ServerManager
func NewServerManager(opts ServerManagerOptions) (*ServerManager, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	grpcServer, err := NewGRPCServer(GRPCServerOptions{
		Config:         &opts.Config.Server.GRPC,
		Logger:         opts.Logger,
		Codec:          opts.Codec,
		ServiceManager: opts.ServiceManager,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gRPC server: %w", err)
	}

	sm := &ServerManager{
		config:     opts.Config,
		logger:     opts.Logger,
		grpcServer: grpcServer,
	}

	if opts.Config.Metrics.Enabled {
		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		mux := http.NewServeMux()
		mux.Handle(opts.Config.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		sm.metricsServer = &http.Server{
			Addr:              opts.Config.Metrics.Address,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return sm, nil
}

// GRPC returns the managed gRPC server
func (sm *ServerManager) GRPC() *GRPCServer {
	return sm.grpcServer
}

// Run listens on the configured gRPC address and serves until ctx ends
func (sm *ServerManager) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", sm.config.Server.GRPC.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", sm.config.Server.GRPC.Address(), err)
	}
	return sm.Serve(ctx, lis)
}

// Serve serves gRPC on lis until ctx ends or a server fails, then shuts everything
// down within the configured shutdown timeout
func (sm *ServerManager) Serve(ctx context.Context, lis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sm.grpcServer.Start(lis)
	})

	if sm.metricsServer != nil {
		g.Go(func() error {
			sm.logger.Info("Starting metrics server", zap.String("address", sm.metricsServer.Addr))
			if err := sm.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return sm.shutdown()
	})

	return g.Wait()
}

func (sm *ServerManager) shutdown() error {
	timeout := sm.config.Server.GRPC.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := sm.grpcServer.Stop(ctx)

	if sm.metricsServer != nil {
		if merr := sm.metricsServer.Shutdown(ctx); merr != nil {
			sm.logger.Error("Failed to stop metrics server", zap.Error(merr))
			err = errors.Join(err, merr)
		}
	}

	return err
}
