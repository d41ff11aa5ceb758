package bank

import (
	"fmt"
	"math"
)

// Till accumulates the deposits of one CashDeposit stream. The running sum is kept
// wider than the wire type so that only the final total is range checked.
type Till struct {
	sum   int64
	count int
}

// Add records one deposit.
func (t *Till) Add(amount int32) {
	t.sum += int64(amount)
	t.count++
}

// Count returns the number of deposits recorded.
func (t *Till) Count() int {
	return t.count
}

// Total returns the final balance of the stream.
func (t *Till) Total() (int32, error) {
	if t.sum > math.MaxInt32 || t.sum < math.MinInt32 {
		return 0, fmt.Errorf("%w: %d", ErrBalanceOutOfRange, t.sum)
	}
	return int32(t.sum), nil
}
