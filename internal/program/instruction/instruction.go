// Package instruction defines the wire format of the recurring payments
// program's instructions: one opcode byte followed by fixed-width
// little-endian fields.
package instruction

import (
	"encoding/binary"
	"fmt"

	"github.com/sollpay/sollpay-programs/internal/program"
)

// Opcode identifies an instruction on the wire
type Opcode uint8

const (
	OpCreatePlan         Opcode = 0
	OpCreateSubscription Opcode = 1
	OpClaim              Opcode = 2
)

// String returns the instruction name for the opcode
func (o Opcode) String() string {
	switch o {
	case OpCreatePlan:
		return "CreatePlan"
	case OpCreateSubscription:
		return "CreateSubscription"
	case OpClaim:
		return "Claim"
	default:
		return fmt.Sprintf("Opcode(%d)", uint8(o))
	}
}

// Instruction is a decoded program instruction.
type Instruction interface {
	Opcode() Opcode
	// Pack encodes the instruction into its wire form
	Pack() []byte
}

// CreatePlan creates a subscription plan.
//
// Accounts expected:
//
//  0. `[writable]` The plan account, owned by the program
//  1. `[signer]` The plan owner
//  2. `[]` The custody authority derived from the plan account and Nonce
//  3. `[]` The token mint the plan is denominated in
type CreatePlan struct {
	// Nonce used to derive the custody authority
	Nonce uint8 `json:"nonce"`
	// SubscriptionTimeframe is the cycle length in timeframe units
	SubscriptionTimeframe uint64 `json:"subscription_timeframe"`
	// MaxAmount is the most that can be withdrawn in one cycle
	MaxAmount uint64 `json:"max_amount"`
}

// CreateSubscription authorizes a subscription against a plan.
//
// Accounts expected:
//
//  0. `[writable]` The subscription account, owned by the program
//  1. `[]` The plan account
//  2. `[]` The token account funds are drawn from
//  3. `[]` The token program
//  4. `[]` The clock sysvar
//  5. `[]` The fee account
//  6. `[signer]` The owner of the token account
type CreateSubscription struct {
	SubscriptionTimeframe uint64 `json:"subscription_timeframe"`
	MaxAmount             uint64 `json:"max_amount"`
}

// Claim draws against the remaining allowance of the active cycle.
// A zero Amount claims the whole remaining allowance.
//
// Accounts expected:
//
//  0. `[writable]` The subscription account
//  1. `[]` The plan account
//  2. `[]` The clock sysvar
//  3. `[writable]` The source token account
//  4. `[writable]` The destination token account
//  5. `[]` The plan's custody authority
//  6. `[]` The token program
type Claim struct {
	Amount uint64 `json:"amount"`
}

func (*CreatePlan) Opcode() Opcode         { return OpCreatePlan }
func (*CreateSubscription) Opcode() Opcode { return OpCreateSubscription }
func (*Claim) Opcode() Opcode              { return OpClaim }

// Pack encodes the instruction
func (i *CreatePlan) Pack() []byte {
	buf := make([]byte, 1+1+8+8)
	buf[0] = byte(OpCreatePlan)
	buf[1] = i.Nonce
	binary.LittleEndian.PutUint64(buf[2:10], i.SubscriptionTimeframe)
	binary.LittleEndian.PutUint64(buf[10:18], i.MaxAmount)
	return buf
}

// Pack encodes the instruction
func (i *CreateSubscription) Pack() []byte {
	buf := make([]byte, 1+8+8)
	buf[0] = byte(OpCreateSubscription)
	binary.LittleEndian.PutUint64(buf[1:9], i.SubscriptionTimeframe)
	binary.LittleEndian.PutUint64(buf[9:17], i.MaxAmount)
	return buf
}

// Pack encodes the instruction. A zero amount is encoded without payload.
func (i *Claim) Pack() []byte {
	if i.Amount == 0 {
		return []byte{byte(OpClaim)}
	}
	buf := make([]byte, 1+8)
	buf[0] = byte(OpClaim)
	binary.LittleEndian.PutUint64(buf[1:], i.Amount)
	return buf
}

// Unpack decodes an instruction buffer. Bytes following a complete payload
// are ignored.
func Unpack(input []byte) (Instruction, error) {
	if len(input) == 0 {
		return nil, program.InvalidInstruction
	}
	tag, src := Opcode(input[0]), input[1:]

	switch tag {
	case OpCreatePlan:
		if len(src) < 1 {
			return nil, program.InvalidInstruction
		}
		nonce, src := src[0], src[1:]
		timeframe, src, err := unpackU64(src)
		if err != nil {
			return nil, err
		}
		maxAmount, _, err := unpackU64(src)
		if err != nil {
			return nil, err
		}
		return &CreatePlan{
			Nonce:                 nonce,
			SubscriptionTimeframe: timeframe,
			MaxAmount:             maxAmount,
		}, nil

	case OpCreateSubscription:
		timeframe, src, err := unpackU64(src)
		if err != nil {
			return nil, err
		}
		maxAmount, _, err := unpackU64(src)
		if err != nil {
			return nil, err
		}
		return &CreateSubscription{
			SubscriptionTimeframe: timeframe,
			MaxAmount:             maxAmount,
		}, nil

	case OpClaim:
		// The amount is optional: anything shorter than a full u64 is ignored.
		amount, _, err := unpackU64(src)
		if err != nil {
			return &Claim{}, nil
		}
		return &Claim{Amount: amount}, nil

	default:
		return nil, program.InvalidInstruction
	}
}

func unpackU64(input []byte) (uint64, []byte, error) {
	if len(input) < 8 {
		return 0, nil, program.InvalidInstruction
	}
	return binary.LittleEndian.Uint64(input[:8]), input[8:], nil
}
