// Package sysvar decodes the host's clock sysvar account.
package sysvar

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/sollpay/sollpay-programs/internal/program"
)

// ClockLen is the size of the clock sysvar data
const ClockLen = 40

// Clock is the host's clock snapshot for the current slot.
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

// ClockFromAccount decodes the clock from its sysvar account, checking the key.
func ClockFromAccount(acc *program.AccountInfo) (*Clock, error) {
	if !acc.Key.Equals(solana.SysVarClockPubkey) {
		return nil, program.InvalidArgument
	}
	return UnpackClock(acc.Data)
}

// UnpackClock decodes clock sysvar data.
func UnpackClock(data []byte) (*Clock, error) {
	if len(data) < ClockLen {
		return nil, program.InvalidArgument
	}
	le := binary.LittleEndian
	return &Clock{
		Slot:                le.Uint64(data[0:8]),
		EpochStartTimestamp: int64(le.Uint64(data[8:16])),
		Epoch:               le.Uint64(data[16:24]),
		LeaderScheduleEpoch: le.Uint64(data[24:32]),
		UnixTimestamp:       int64(le.Uint64(data[32:40])),
	}, nil
}

// Pack encodes the clock as sysvar data
func (c *Clock) Pack() []byte {
	le := binary.LittleEndian
	buf := make([]byte, ClockLen)
	le.PutUint64(buf[0:8], c.Slot)
	le.PutUint64(buf[8:16], uint64(c.EpochStartTimestamp))
	le.PutUint64(buf[16:24], c.Epoch)
	le.PutUint64(buf[24:32], c.LeaderScheduleEpoch)
	le.PutUint64(buf[32:40], uint64(c.UnixTimestamp))
	return buf
}
