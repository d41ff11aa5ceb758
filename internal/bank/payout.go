package bank

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrPayoutConsumed is returned when a payout is dispensed a second time.
var ErrPayoutConsumed = fmt.Errorf("payout already dispensed")

// DeliverFunc hands one payout unit to the consumer. It blocks until the consumer has
// taken the unit, which is what keeps the payout from running ahead of a slow reader.
type DeliverFunc func(value int32) error

// Payout is the lazy sequence of units for one withdrawal. It is dispensed at most once.
type Payout struct {
	units        int
	denomination int32
	interval     time.Duration
	consumed     atomic.Bool
}

func newPayout(units int, denomination int32, interval time.Duration) *Payout {
	return &Payout{units: units, denomination: denomination, interval: interval}
}

// Units returns the number of units the payout will deliver.
func (p *Payout) Units() int {
	return p.units
}

// Denomination returns the value of each unit.
func (p *Payout) Denomination() int32 {
	return p.denomination
}

// Dispense delivers every unit in order, pausing for the payout interval after each
// delivery except the last. It stops at the first delivery error or when ctx ends and
// returns how many units were delivered.
func (p *Payout) Dispense(ctx context.Context, deliver DeliverFunc) (int, error) {
	if !p.consumed.CompareAndSwap(false, true) {
		return 0, ErrPayoutConsumed
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for i := 0; i < p.units; i++ {
		if i > 0 && p.interval > 0 {
			if timer == nil {
				timer = time.NewTimer(p.interval)
			} else {
				timer.Reset(p.interval)
			}
			select {
			case <-timer.C:
			case <-ctx.Done():
				return i, ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := deliver(p.denomination); err != nil {
			return i, err
		}
	}
	return p.units, nil
}
