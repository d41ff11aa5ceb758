package server

import (
	"context"
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Aidin1998/bankstream/internal/infrastructure/config"
	"github.com/Aidin1998/bankstream/pkg/metrics"
)

// CallIDHeader is the response header carrying the id the server logged the call under
const CallIDHeader = "x-call-id"

// GRPCServer is the gRPC server hosting the bank and file services
type GRPCServer struct {
	config         *config.GRPCServerConfig
	logger         *zap.Logger
	server         *grpc.Server
	health         *health.Server
	codec          encoding.Codec
	serviceManager *GRPCServiceManager
}

// GRPCServerOptions contains options for creating a GRPCServer
type GRPCServerOptions struct {
	Config *config.GRPCServerConfig
	Logger *zap.Logger
	// Codec, when set, is forced for every call instead of the content-subtype codec
	Codec          encoding.Codec
	ServiceManager *GRPCServiceManager
}

// GRPCServiceManager manages gRPC service registrations
type GRPCServiceManager struct {
	logger   *zap.Logger
	services map[string]func(grpc.ServiceRegistrar)
}

// NewGRPCServiceManager creates a new GRPCServiceManager
func NewGRPCServiceManager(logger *zap.Logger) *GRPCServiceManager {
	return &GRPCServiceManager{
		logger:   logger,
		services: make(map[string]func(grpc.ServiceRegistrar)),
	}
}

// RegisterService registers a gRPC service under its full service name
func (gsm *GRPCServiceManager) RegisterService(name string, registrar func(grpc.ServiceRegistrar)) {
	gsm.services[name] = registrar
	gsm.logger.Debug("Registered gRPC service", zap.String("service", name))
}

// RegisterAllServices registers all services with the gRPC server
func (gsm *GRPCServiceManager) RegisterAllServices(server grpc.ServiceRegistrar) {
	for _, name := range gsm.Names() {
		gsm.logger.Info("Registering gRPC service", zap.String("service", name))
		gsm.services[name](server)
	}
}

// Names returns the registered service names in sorted order
func (gsm *GRPCServiceManager) Names() []string {
	names := make([]string, 0, len(gsm.services))
	for name := range gsm.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(opts GRPCServerOptions) (*GRPCServer, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("gRPC server config is required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	server := &GRPCServer{
		config:         opts.Config,
		logger:         opts.Logger.Named("grpc"),
		codec:          opts.Codec,
		serviceManager: opts.ServiceManager,
	}

	server.initServer()

	return server, nil
}

// initServer initializes the gRPC server with all configurations
func (s *GRPCServer) initServer() {
	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(s.config.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(s.config.MaxSendMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     s.config.KeepAlive.MaxConnectionIdle,
			MaxConnectionAge:      s.config.KeepAlive.MaxConnectionAge,
			MaxConnectionAgeGrace: s.config.KeepAlive.MaxConnectionAgeGrace,
			Time:                  s.config.KeepAlive.Time,
			Timeout:               s.config.KeepAlive.Timeout,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             s.config.KeepAlive.MinTime,
			PermitWithoutStream: s.config.KeepAlive.PermitWithoutStream,
		}),
		grpc.ChainUnaryInterceptor(
			s.tracingUnaryInterceptor,
			s.loggingUnaryInterceptor,
			s.recoveryUnaryInterceptor,
		),
		grpc.ChainStreamInterceptor(
			s.tracingStreamInterceptor,
			s.loggingStreamInterceptor,
			s.recoveryStreamInterceptor,
		),
	}
	if s.config.ConnectionTimeout > 0 {
		opts = append(opts, grpc.ConnectionTimeout(s.config.ConnectionTimeout))
	}
	if s.codec != nil {
		opts = append(opts, grpc.ForceServerCodec(s.codec))
	}

	s.server = grpc.NewServer(opts...)

	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.server, s.health)

	if s.serviceManager != nil {
		s.serviceManager.RegisterAllServices(s.server)
	}
}

// loggingUnaryInterceptor logs unary RPC calls and records their metrics
func (s *GRPCServer) loggingUnaryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	callID := uuid.NewString()
	if err := grpc.SetHeader(ctx, metadata.Pairs(CallIDHeader, callID)); err != nil {
		s.logger.Debug("Failed to set call id header", zap.String("call_id", callID), zap.Error(err))
	}

	resp, err := handler(ctx, req)

	s.observe(info.FullMethod, time.Since(start), err, zap.String("call_id", callID))
	return resp, err
}

// loggingStreamInterceptor logs streaming RPC calls and records their metrics
func (s *GRPCServer) loggingStreamInterceptor(
	srv interface{},
	stream grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	start := time.Now()
	callID := uuid.NewString()
	if err := stream.SetHeader(metadata.Pairs(CallIDHeader, callID)); err != nil {
		s.logger.Debug("Failed to set call id header", zap.String("call_id", callID), zap.Error(err))
	}

	err := handler(srv, stream)

	s.observe(info.FullMethod, time.Since(start), err,
		zap.String("call_id", callID),
		zap.Bool("client_stream", info.IsClientStream),
		zap.Bool("server_stream", info.IsServerStream))
	return err
}

func (s *GRPCServer) observe(method string, duration time.Duration, err error, extra ...zap.Field) {
	code := status.Code(err)

	metrics.RPCRequests.WithLabelValues(method, code.String()).Inc()
	metrics.RPCLatency.WithLabelValues(method).Observe(duration.Seconds())

	fields := append([]zap.Field{
		zap.String("method", method),
		zap.Duration("duration", duration),
		zap.String("grpc_code", code.String()),
	}, extra...)

	switch code {
	case codes.OK:
		s.logger.Info("gRPC call completed", fields...)
	case codes.Canceled, codes.DeadlineExceeded, codes.FailedPrecondition, codes.OutOfRange, codes.InvalidArgument:
		s.logger.Warn("gRPC call failed", append(fields, zap.Error(err))...)
	default:
		s.logger.Error("gRPC call failed", append(fields, zap.Error(err))...)
	}
}

// recoveryUnaryInterceptor recovers from panics in unary calls
func (s *GRPCServer) recoveryUnaryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("gRPC unary call panic recovered",
				zap.String("method", info.FullMethod),
				zap.Any("panic", r))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}

// recoveryStreamInterceptor recovers from panics in stream calls
func (s *GRPCServer) recoveryStreamInterceptor(
	srv interface{},
	stream grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("gRPC stream call panic recovered",
				zap.String("method", info.FullMethod),
				zap.Any("panic", r))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(srv, stream)
}

// Start serves gRPC on listener until the server is stopped
func (s *GRPCServer) Start(listener net.Listener) error {
	addr := listener.Addr().String()

	for _, name := range s.serviceNames() {
		s.health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	s.logger.Info("Server started, listening on "+addr, zap.String("address", addr))

	if err := s.server.Serve(listener); err != nil {
		return fmt.Errorf("gRPC server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the gRPC server, forcing it once ctx ends
func (s *GRPCServer) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down gRPC server")
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("gRPC graceful stop timeout, forcing stop")
		s.server.Stop()
		<-stopped
		return fmt.Errorf("graceful stop timeout")
	}
}

// GetServer returns the underlying gRPC server
func (s *GRPCServer) GetServer() *grpc.Server {
	return s.server
}

func (s *GRPCServer) serviceNames() []string {
	if s.serviceManager == nil {
		return nil
	}
	return s.serviceManager.Names()
}
