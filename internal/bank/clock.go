package bank

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/sysvar"
)

// slotsPerEpoch matches the host's default epoch schedule
const slotsPerEpoch = 432000

var sysvarOwner = solana.MustPublicKeyFromBase58("Sysvar1111111111111111111111111111111111111")

// ClockSource supplies the wall clock the bank publishes through the clock sysvar
type ClockSource func() time.Time

// FixedClock returns a ClockSource that always reports t
func FixedClock(t time.Time) ClockSource {
	return func() time.Time { return t }
}

// clockAccount builds the clock sysvar account for one instruction
func clockAccount(slot uint64, now time.Time) *program.AccountInfo {
	epoch := slot / slotsPerEpoch
	clock := &sysvar.Clock{
		Slot:                slot,
		EpochStartTimestamp: now.Unix(),
		Epoch:               epoch,
		LeaderScheduleEpoch: epoch + 1,
		UnixTimestamp:       now.Unix(),
	}
	return &program.AccountInfo{
		Key:      solana.SysVarClockPubkey,
		Owner:    sysvarOwner,
		Lamports: 1,
		Data:     clock.Pack(),
	}
}
