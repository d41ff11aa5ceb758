package server_test

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Aidin1998/bankstream/internal/infrastructure/config"
	"github.com/Aidin1998/bankstream/internal/infrastructure/server"
	pb "github.com/Aidin1998/bankstream/proto/bank"
	"github.com/Aidin1998/bankstream/testutil"
)

type panickingBank struct {
	pb.UnimplementedBankServiceServer
}

func (panickingBank) GetBalance(context.Context, *pb.BalanceCheckRequest) (*pb.Balance, error) {
	panic("ledger unavailable")
}

func (panickingBank) Withdraw(*pb.WithdrawRequest, grpc.ServerStreamingServer[pb.Money]) error {
	panic("ledger unavailable")
}

func registerPanickingBank(s grpc.ServiceRegistrar) {
	pb.RegisterBankServiceServer(s, panickingBank{})
}

type fixedBank struct {
	pb.UnimplementedBankServiceServer
}

func (fixedBank) GetBalance(context.Context, *pb.BalanceCheckRequest) (*pb.Balance, error) {
	return &pb.Balance{Amount: 100}, nil
}

func (fixedBank) Withdraw(_ *pb.WithdrawRequest, stream grpc.ServerStreamingServer[pb.Money]) error {
	return stream.Send(&pb.Money{Value: 100})
}

func registerFixedBank(s grpc.ServiceRegistrar) {
	pb.RegisterBankServiceServer(s, fixedBank{})
}

func TestGRPCServer_HealthServing(t *testing.T) {
	conn := testutil.StartGRPC(t, testutil.Service{Name: "bank.BankService", Register: registerPanickingBank})
	client := healthpb.NewHealthClient(conn)

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "bank.BankService"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	resp, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	_, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "bank.Unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPCServer_RecoversUnaryPanic(t *testing.T) {
	conn := testutil.StartGRPC(t, testutil.Service{Name: "bank.BankService", Register: registerPanickingBank})
	client := pb.NewBankServiceClient(conn)

	_, err := client.GetBalance(context.Background(), &pb.BalanceCheckRequest{AccountNumber: 1})
	assert.Equal(t, codes.Internal, status.Code(err))

	// the server keeps serving after a panic
	_, err = client.GetBalance(context.Background(), &pb.BalanceCheckRequest{AccountNumber: 1})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestGRPCServer_RecoversStreamPanic(t *testing.T) {
	conn := testutil.StartGRPC(t, testutil.Service{Name: "bank.BankService", Register: registerPanickingBank})
	client := pb.NewBankServiceClient(conn)

	stream, err := client.Withdraw(context.Background(), &pb.WithdrawRequest{AccountNumber: 1, Amount: 100})
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestGRPCServer_Unimplemented(t *testing.T) {
	conn := testutil.StartGRPC(t, testutil.Service{Name: "bank.BankService", Register: registerPanickingBank})
	client := pb.NewBankServiceClient(conn)

	stream, err := client.CashDeposit(context.Background())
	require.NoError(t, err)
	_, err = stream.CloseAndRecv()
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestGRPCServer_LogsListenAddress(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	srv, err := server.NewGRPCServer(server.GRPCServerOptions{
		Config: testutil.GRPCServerConfig(),
		Logger: logger,
		Codec:  pb.Codec{},
	})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 16)
	done := make(chan error, 1)
	go func() {
		done <- srv.Start(lis)
	}()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("Server started, listening on bufconn").Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, <-done)

	assert.Equal(t, 1, logs.FilterMessage("gRPC server stopped gracefully").Len())
}

func TestGRPCServiceManager_Names(t *testing.T) {
	m := server.NewGRPCServiceManager(zaptest.NewLogger(t))
	m.RegisterService("bank.FileService", func(grpc.ServiceRegistrar) {})
	m.RegisterService("bank.BankService", func(grpc.ServiceRegistrar) {})

	assert.Equal(t, []string{"bank.BankService", "bank.FileService"}, m.Names())
}

func TestNewGRPCServer_RequiresConfigAndLogger(t *testing.T) {
	_, err := server.NewGRPCServer(server.GRPCServerOptions{Logger: zaptest.NewLogger(t)})
	assert.Error(t, err)

	_, err = server.NewGRPCServer(server.GRPCServerOptions{Config: testutil.GRPCServerConfig()})
	assert.Error(t, err)
}

func TestServerManager_ServeUntilCancelled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := &config.Config{}
	cfg.Server.GRPC = *testutil.GRPCServerConfig()

	services := server.NewGRPCServiceManager(logger)
	services.RegisterService("bank.BankService", registerPanickingBank)

	sm, err := server.NewServerManager(server.ServerManagerOptions{
		Config:         cfg,
		Logger:         logger,
		Codec:          pb.Codec{},
		ServiceManager: services,
	})
	require.NoError(t, err)
	require.NotNil(t, sm.GRPC().GetServer())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sm.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(pb.Codec{})),
	)
	require.NoError(t, err)
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: "bank.BankService"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server manager did not stop")
	}
}

func TestNewServerManager_RequiresConfig(t *testing.T) {
	_, err := server.NewServerManager(server.ServerManagerOptions{Logger: zaptest.NewLogger(t)})
	assert.Error(t, err)
}

func TestGRPCServer_CallIDHeaderMatchesLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	conn := testutil.StartGRPCWithLogger(t, zap.New(core),
		testutil.Service{Name: "bank.BankService", Register: registerFixedBank})
	client := pb.NewBankServiceClient(conn)

	var header metadata.MD
	_, err := client.GetBalance(context.Background(), &pb.BalanceCheckRequest{AccountNumber: 1}, grpc.Header(&header))
	require.NoError(t, err)
	unaryIDs := header.Get(server.CallIDHeader)
	require.Len(t, unaryIDs, 1)

	completed := logs.FilterMessage("gRPC call completed").FilterField(zap.String("call_id", unaryIDs[0]))
	require.Equal(t, 1, completed.Len())
	assert.Equal(t, pb.BankService_GetBalance_FullMethodName, completed.All()[0].ContextMap()["method"])

	stream, err := client.Withdraw(context.Background(), &pb.WithdrawRequest{AccountNumber: 1, Amount: 100})
	require.NoError(t, err)
	streamHeader, err := stream.Header()
	require.NoError(t, err)
	for {
		if _, err := stream.Recv(); err != nil {
			require.True(t, errors.Is(err, io.EOF), err)
			break
		}
	}
	streamIDs := streamHeader.Get(server.CallIDHeader)
	require.Len(t, streamIDs, 1)
	assert.NotEqual(t, unaryIDs[0], streamIDs[0])

	completed = logs.FilterMessage("gRPC call completed").FilterField(zap.String("call_id", streamIDs[0]))
	require.Equal(t, 1, completed.Len())
	assert.Equal(t, pb.BankService_Withdraw_FullMethodName, completed.All()[0].ContextMap()["method"])
}

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prevPropagator := otel.GetTextMapPropagator()
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		otel.SetTextMapPropagator(prevPropagator)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func endedSpan(t *testing.T, recorder *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range recorder.Ended() {
		if span.Name() == name {
			return span
		}
	}
	t.Fatalf("no ended span named %s", name)
	return nil
}

func spanAttribute(span sdktrace.ReadOnlySpan, key attribute.Key) string {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestGRPCServer_ContinuesCallerTrace(t *testing.T) {
	recorder := recordSpans(t)
	conn := testutil.StartGRPC(t, testutil.Service{Name: "bank.BankService", Register: registerFixedBank})
	client := pb.NewBankServiceClient(conn)

	const (
		traceID      = "4bf92f3577b34da6a3ce929d0e0e4736"
		parentSpanID = "00f067aa0ba902b7"
	)
	ctx := metadata.AppendToOutgoingContext(context.Background(),
		"traceparent", "00-"+traceID+"-"+parentSpanID+"-01")

	_, err := client.GetBalance(ctx, &pb.BalanceCheckRequest{AccountNumber: 1})
	require.NoError(t, err)

	span := endedSpan(t, recorder, pb.BankService_GetBalance_FullMethodName)
	assert.Equal(t, traceID, span.SpanContext().TraceID().String())
	assert.Equal(t, parentSpanID, span.Parent().SpanID().String())
	assert.True(t, span.Parent().IsRemote())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Equal(t, "OK", spanAttribute(span, "rpc.grpc.status_code"))
	assert.Equal(t, otelcodes.Unset, span.Status().Code)
}

func TestGRPCServer_TracesFailedStream(t *testing.T) {
	recorder := recordSpans(t)
	conn := testutil.StartGRPC(t, testutil.Service{Name: "bank.BankService", Register: registerPanickingBank})
	client := pb.NewBankServiceClient(conn)

	stream, err := client.Withdraw(context.Background(), &pb.WithdrawRequest{AccountNumber: 1, Amount: 100})
	require.NoError(t, err)
	_, err = stream.Recv()
	require.Equal(t, codes.Internal, status.Code(err))

	span := endedSpan(t, recorder, pb.BankService_Withdraw_FullMethodName)
	// no traceparent was sent, so the server span starts a new trace
	assert.False(t, span.Parent().IsValid())
	assert.Equal(t, otelcodes.Error, span.Status().Code)
	assert.Equal(t, "Internal", spanAttribute(span, "rpc.grpc.status_code"))
}
