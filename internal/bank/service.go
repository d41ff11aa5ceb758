// Package bank implements the balance, withdrawal and deposit operations of the bank service.
package bank

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config holds the fixed amounts the service works with.
type Config struct {
	// Balance is reported for every account.
	Balance int32
	// MaxWithdraw is the largest amount a single withdrawal may request.
	MaxWithdraw int32
	// Denomination is the value of every payout unit.
	Denomination int32
	// PayoutInterval separates consecutive payout units.
	PayoutInterval time.Duration
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Balance:        100,
		MaxWithdraw:    1000,
		Denomination:   100,
		PayoutInterval: time.Second,
	}
}

// Service answers balance queries, dispenses withdrawals and opens deposit tills.
// It holds no per-account state, so a single instance serves all calls.
type Service struct {
	cfg    Config
	logger *zap.Logger
}

// NewService creates a new bank service
func NewService(cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.Denomination <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDenomination, cfg.Denomination)
	}
	if cfg.PayoutInterval < 0 {
		return nil, fmt.Errorf("payout interval must not be negative: %s", cfg.PayoutInterval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: logger.Named("bank")}, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// Balance returns the balance of an account.
func (s *Service) Balance(ctx context.Context, account int32) int32 {
	s.logger.Info("Requested balance for account", zap.Int32("account_number", account))
	return s.cfg.Balance
}

// Withdraw validates a withdrawal and returns the payout that will dispense it. The limit
// is checked before the payout exists, so a rejected withdrawal never dispenses anything.
func (s *Service) Withdraw(ctx context.Context, account, amount int32) (*Payout, error) {
	if amount > s.cfg.MaxWithdraw {
		s.logger.Warn("Withdrawal rejected",
			zap.Int32("account_number", account),
			zap.Int32("amount", amount),
			zap.Int32("max_withdraw", s.cfg.MaxWithdraw))
		return nil, &LimitError{Requested: amount, Max: s.cfg.MaxWithdraw}
	}

	// Integer division: the part of amount below one denomination is never paid out.
	var units int
	if amount > 0 {
		units = int(amount / s.cfg.Denomination)
	}

	s.logger.Debug("Withdrawal accepted",
		zap.Int32("account_number", account),
		zap.Int32("amount", amount),
		zap.Int("units", units))

	return newPayout(units, s.cfg.Denomination, s.cfg.PayoutInterval), nil
}

// OpenTill starts the aggregation of one deposit stream.
func (s *Service) OpenTill() *Till {
	return &Till{}
}
