package bank

import "fmt"

// Error types
var (
	ErrWithdrawLimitExceeded = fmt.Errorf("withdraw limit exceeded")
	ErrBalanceOutOfRange     = fmt.Errorf("balance out of range")
	ErrInvalidDenomination   = fmt.Errorf("denomination must be positive")
)

// LimitError reports a withdrawal above the configured maximum. Its message is the
// description returned to callers.
type LimitError struct {
	Requested int32
	Max       int32
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("Max withdraw %d", e.Max)
}

func (e *LimitError) Is(target error) bool {
	return target == ErrWithdrawLimitExceeded
}
