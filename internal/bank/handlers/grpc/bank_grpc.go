// Package grpc provides gRPC handlers for the bank service
package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Aidin1998/bankstream/internal/bank"
	"github.com/Aidin1998/bankstream/pkg/metrics"
	pb "github.com/Aidin1998/bankstream/proto/bank"
)

// BankHandler implements the gRPC bank service
type BankHandler struct {
	pb.UnimplementedBankServiceServer
	bankService *bank.Service
	logger      *zap.Logger
}

// NewBankHandler creates a new bank gRPC handler
func NewBankHandler(bankService *bank.Service, logger *zap.Logger) *BankHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BankHandler{
		bankService: bankService,
		logger:      logger.Named("bank_grpc"),
	}
}

// Register adds the handler to a gRPC server
func (h *BankHandler) Register(s grpc.ServiceRegistrar) {
	pb.RegisterBankServiceServer(s, h)
}

// GetBalance returns the balance of the requested account
func (h *BankHandler) GetBalance(ctx context.Context, req *pb.BalanceCheckRequest) (*pb.Balance, error) {
	amount := h.bankService.Balance(ctx, req.GetAccountNumber())
	return &pb.Balance{Amount: amount}, nil
}

// Withdraw streams the payout units of a withdrawal
func (h *BankHandler) Withdraw(req *pb.WithdrawRequest, stream grpc.ServerStreamingServer[pb.Money]) error {
	ctx := stream.Context()

	payout, err := h.bankService.Withdraw(ctx, req.GetAccountNumber(), req.GetAmount())
	if err != nil {
		if errors.Is(err, bank.ErrWithdrawLimitExceeded) {
			metrics.WithdrawalsRejected.Inc()
		}
		return h.handleError(err)
	}

	delivered, err := payout.Dispense(ctx, func(value int32) error {
		if err := stream.Send(&pb.Money{Value: value}); err != nil {
			return err
		}
		metrics.PayoutUnits.Inc()
		return nil
	})
	if err != nil {
		h.logger.Warn("Withdrawal interrupted",
			zap.Int32("account_number", req.GetAccountNumber()),
			zap.Int("delivered", delivered),
			zap.Int("units", payout.Units()),
			zap.Error(err))
		return h.handleError(err)
	}

	return nil
}

// CashDeposit sums a stream of deposits and replies with the total once the client
// closes its side of the stream
func (h *BankHandler) CashDeposit(stream grpc.ClientStreamingServer[pb.DepositRequest, pb.Balance]) error {
	till := h.bankService.OpenTill()

	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.logger.Warn("Deposit stream aborted",
				zap.Int("deposits", till.Count()),
				zap.Error(err))
			return h.handleError(err)
		}
		till.Add(req.GetAmount())
	}

	total, err := till.Total()
	if err != nil {
		return h.handleError(err)
	}
	metrics.Deposits.Inc()

	return stream.SendAndClose(&pb.Balance{Amount: total})
}

// handleError converts internal errors to gRPC status errors
func (h *BankHandler) handleError(err error) error {
	var limitErr *bank.LimitError
	switch {
	case errors.As(err, &limitErr):
		return status.Error(codes.FailedPrecondition, limitErr.Error())
	case errors.Is(err, bank.ErrBalanceOutOfRange):
		return status.Error(codes.OutOfRange, "balance out of range")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codes.Internal, fmt.Sprintf("internal error: %v", err))
}
