package testutil

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Aidin1998/bankstream/internal/infrastructure/config"
	"github.com/Aidin1998/bankstream/internal/infrastructure/server"
	pb "github.com/Aidin1998/bankstream/proto/bank"
)

const bufSize = 1 << 20

// Service is a gRPC service to host in a test server.
type Service struct {
	Name     string
	Register func(grpc.ServiceRegistrar)
}

// GRPCServerConfig returns a server configuration suitable for in-memory tests.
func GRPCServerConfig() *config.GRPCServerConfig {
	return &config.GRPCServerConfig{
		Host:            "127.0.0.1",
		Port:            50051,
		MaxRecvMsgSize:  4 << 20,
		MaxSendMsgSize:  4 << 20,
		ShutdownTimeout: 5 * time.Second,
		KeepAlive: config.KeepAliveConfig{
			Time:    2 * time.Hour,
			Timeout: 20 * time.Second,
		},
	}
}

// StartGRPC serves services over an in-memory listener through the production server
// stack (interceptors, codec, health) and returns a connected client. Everything is torn
// down when the test ends.
func StartGRPC(t testing.TB, services ...Service) *grpc.ClientConn {
	t.Helper()
	return StartGRPCWithLogger(t, zaptest.NewLogger(t), services...)
}

// StartGRPCWithLogger is StartGRPC with the server logging to logger.
func StartGRPCWithLogger(t testing.TB, logger *zap.Logger, services ...Service) *grpc.ClientConn {
	t.Helper()

	manager := server.NewGRPCServiceManager(logger)
	for _, svc := range services {
		manager.RegisterService(svc.Name, svc.Register)
	}

	srv, err := server.NewGRPCServer(server.GRPCServerOptions{
		Config:         GRPCServerConfig(),
		Logger:         logger,
		Codec:          pb.Codec{},
		ServiceManager: manager,
	})
	if err != nil {
		t.Fatalf("failed to create gRPC server: %v", err)
	}

	lis := bufconn.Listen(bufSize)
	go func() {
		_ = srv.Start(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(pb.Codec{})),
	)
	if err != nil {
		t.Fatalf("failed to dial bufconn: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	return conn
}

// Gaps returns the durations between consecutive timestamps.
func Gaps(times []time.Time) []time.Duration {
	if len(times) < 2 {
		return nil
	}
	gaps := make([]time.Duration, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, times[i].Sub(times[i-1]))
	}
	return gaps
}
