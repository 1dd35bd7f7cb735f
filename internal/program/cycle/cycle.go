// Package cycle computes allowance cycles of a subscription.
//
// A cycle is the half-open interval [cycle_start, cycle_start+span) where span
// is the subscription timeframe scaled to clock seconds. Claims first move the
// cycle forward by whole spans until it contains the current time, resetting
// the withdrawn amount once per move, then charge the claim against what is
// left of max_amount. Unclaimed cycles never accumulate.
package cycle

import (
	"math"

	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/state"
)

// Span returns the cycle length in clock seconds for a timeframe expressed in
// units of unitSeconds.
func Span(timeframe uint64, unitSeconds int64) (int64, error) {
	if timeframe == 0 || unitSeconds <= 0 {
		return 0, program.InvalidSubscriptionTimeframe
	}
	if timeframe > uint64(math.MaxInt64/unitSeconds) {
		return 0, program.InvalidSubscriptionTimeframe
	}
	return int64(timeframe) * unitSeconds, nil
}

// Window returns the bounds of the subscription's recorded cycle.
func Window(sub *state.Subscription, unitSeconds int64) (start, end int64, err error) {
	span, err := Span(sub.SubscriptionTimeframe, unitSeconds)
	if err != nil {
		return 0, 0, err
	}
	if sub.CycleStart > math.MaxInt64-span {
		return 0, 0, program.InvalidSubscriptionTimeframe
	}
	return sub.CycleStart, sub.CycleStart + span, nil
}

// Advance returns a copy of sub whose cycle contains now. The second result
// reports whether the cycle moved. A clock behind cycle_start leaves the
// cycle untouched.
func Advance(sub *state.Subscription, now, unitSeconds int64) (*state.Subscription, bool, error) {
	start, end, err := Window(sub, unitSeconds)
	if err != nil {
		return nil, false, err
	}

	next := *sub
	if now < end {
		return &next, false, nil
	}

	span := end - start
	// now >= end > start: the unsigned difference is exact even for a negative start
	elapsed := uint64(now) - uint64(start)
	periods := elapsed / uint64(span)

	next.CycleStart = start + int64(periods*uint64(span))
	next.WithdrawnAmount = 0
	return &next, true, nil
}

// Result is the outcome of charging a claim against a subscription.
type Result struct {
	// Subscription is the updated record to persist
	Subscription *state.Subscription
	// Granted is the amount to transfer
	Granted uint64
	// RolledOver reports whether a new cycle was opened
	RolledOver bool
}

// Claim charges requested against the allowance of the cycle containing now.
// A zero request draws the whole remaining allowance. Requests above the
// remaining allowance fail with InvalidMaxAmount; sub is never modified.
func Claim(sub *state.Subscription, now int64, requested uint64, unitSeconds int64) (*Result, error) {
	next, rolled, err := Advance(sub, now, unitSeconds)
	if err != nil {
		return nil, err
	}

	remaining := next.Remaining()
	amount := requested
	if amount == 0 {
		amount = remaining
	}
	if amount == 0 || amount > remaining {
		return nil, program.InvalidMaxAmount
	}

	next.WithdrawnAmount += amount
	return &Result{Subscription: next, Granted: amount, RolledOver: rolled}, nil
}
