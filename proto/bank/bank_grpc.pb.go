package bank

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	BankService_GetBalance_FullMethodName  = "/bank.BankService/GetBalance"
	BankService_Withdraw_FullMethodName    = "/bank.BankService/Withdraw"
	BankService_CashDeposit_FullMethodName = "/bank.BankService/CashDeposit"
	FileService_Upload_FullMethodName      = "/bank.FileService/Upload"
)

// BankServiceClient is the client API for BankService service.
type BankServiceClient interface {
	GetBalance(ctx context.Context, in *BalanceCheckRequest, opts ...grpc.CallOption) (*Balance, error)
	Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Money], error)
	CashDeposit(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[DepositRequest, Balance], error)
}

type bankServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewBankServiceClient creates a client for BankService.
func NewBankServiceClient(cc grpc.ClientConnInterface) BankServiceClient {
	return &bankServiceClient{cc}
}

func (c *bankServiceClient) GetBalance(ctx context.Context, in *BalanceCheckRequest, opts ...grpc.CallOption) (*Balance, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(Balance)
	if err := c.cc.Invoke(ctx, BankService_GetBalance_FullMethodName, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *bankServiceClient) Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Money], error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	stream, err := c.cc.NewStream(ctx, &BankService_ServiceDesc.Streams[0], BankService_Withdraw_FullMethodName, cOpts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WithdrawRequest, Money]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *bankServiceClient) CashDeposit(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[DepositRequest, Balance], error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	stream, err := c.cc.NewStream(ctx, &BankService_ServiceDesc.Streams[1], BankService_CashDeposit_FullMethodName, cOpts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[DepositRequest, Balance]{ClientStream: stream}, nil
}

// BankService_WithdrawClient is the client stream of Withdraw.
type BankService_WithdrawClient = grpc.ServerStreamingClient[Money]

// BankService_CashDepositClient is the client stream of CashDeposit.
type BankService_CashDepositClient = grpc.ClientStreamingClient[DepositRequest, Balance]

// BankServiceServer is the server API for BankService service.
type BankServiceServer interface {
	GetBalance(context.Context, *BalanceCheckRequest) (*Balance, error)
	Withdraw(*WithdrawRequest, grpc.ServerStreamingServer[Money]) error
	CashDeposit(grpc.ClientStreamingServer[DepositRequest, Balance]) error
}

// UnimplementedBankServiceServer can be embedded to have forward compatible implementations.
type UnimplementedBankServiceServer struct{}

func (UnimplementedBankServiceServer) GetBalance(context.Context, *BalanceCheckRequest) (*Balance, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetBalance not implemented")
}

func (UnimplementedBankServiceServer) Withdraw(*WithdrawRequest, grpc.ServerStreamingServer[Money]) error {
	return status.Errorf(codes.Unimplemented, "method Withdraw not implemented")
}

func (UnimplementedBankServiceServer) CashDeposit(grpc.ClientStreamingServer[DepositRequest, Balance]) error {
	return status.Errorf(codes.Unimplemented, "method CashDeposit not implemented")
}

// BankService_WithdrawServer is the server stream of Withdraw.
type BankService_WithdrawServer = grpc.ServerStreamingServer[Money]

// BankService_CashDepositServer is the server stream of CashDeposit.
type BankService_CashDepositServer = grpc.ClientStreamingServer[DepositRequest, Balance]

// RegisterBankServiceServer registers srv with the gRPC service registrar.
func RegisterBankServiceServer(s grpc.ServiceRegistrar, srv BankServiceServer) {
	s.RegisterService(&BankService_ServiceDesc, srv)
}

func _BankService_GetBalance_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BalanceCheckRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BankServiceServer).GetBalance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: BankService_GetBalance_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BankServiceServer).GetBalance(ctx, req.(*BalanceCheckRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _BankService_Withdraw_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(WithdrawRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(BankServiceServer).Withdraw(m, &grpc.GenericServerStream[WithdrawRequest, Money]{ServerStream: stream})
}

func _BankService_CashDeposit_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(BankServiceServer).CashDeposit(&grpc.GenericServerStream[DepositRequest, Balance]{ServerStream: stream})
}

// BankService_ServiceDesc is the grpc.ServiceDesc for BankService service.
var BankService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "bank.BankService",
	HandlerType: (*BankServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetBalance",
			Handler:    _BankService_GetBalance_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Withdraw",
			Handler:       _BankService_Withdraw_Handler,
			ServerStreams: true,
		},
		{
			StreamName:    "CashDeposit",
			Handler:       _BankService_CashDeposit_Handler,
			ClientStreams: true,
		},
	},
	Metadata: "bank/bank.proto",
}

// FileServiceClient is the client API for FileService service.
type FileServiceClient interface {
	Upload(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[FileUploadRequest, FileUploadResponse], error)
}

type fileServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFileServiceClient creates a client for FileService.
func NewFileServiceClient(cc grpc.ClientConnInterface) FileServiceClient {
	return &fileServiceClient{cc}
}

func (c *fileServiceClient) Upload(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[FileUploadRequest, FileUploadResponse], error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	stream, err := c.cc.NewStream(ctx, &FileService_ServiceDesc.Streams[0], FileService_Upload_FullMethodName, cOpts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[FileUploadRequest, FileUploadResponse]{ClientStream: stream}, nil
}

// FileService_UploadClient is the client stream of Upload.
type FileService_UploadClient = grpc.ClientStreamingClient[FileUploadRequest, FileUploadResponse]

// FileServiceServer is the server API for FileService service.
type FileServiceServer interface {
	Upload(grpc.ClientStreamingServer[FileUploadRequest, FileUploadResponse]) error
}

// UnimplementedFileServiceServer can be embedded to have forward compatible implementations.
type UnimplementedFileServiceServer struct{}

func (UnimplementedFileServiceServer) Upload(grpc.ClientStreamingServer[FileUploadRequest, FileUploadResponse]) error {
	return status.Errorf(codes.Unimplemented, "method Upload not implemented")
}

// FileService_UploadServer is the server stream of Upload.
type FileService_UploadServer = grpc.ClientStreamingServer[FileUploadRequest, FileUploadResponse]

// RegisterFileServiceServer registers srv with the gRPC service registrar.
func RegisterFileServiceServer(s grpc.ServiceRegistrar, srv FileServiceServer) {
	s.RegisterService(&FileService_ServiceDesc, srv)
}

func _FileService_Upload_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(FileServiceServer).Upload(&grpc.GenericServerStream[FileUploadRequest, FileUploadResponse]{ServerStream: stream})
}

// FileService_ServiceDesc is the grpc.ServiceDesc for FileService service.
var FileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "bank.FileService",
	HandlerType: (*FileServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Upload",
			Handler:       _FileService_Upload_Handler,
			ClientStreams: true,
		},
	},
	Metadata: "bank/bank.proto",
}
