package state

import (
	"github.com/gagliardetto/solana-go"

	"github.com/sollpay/sollpay-programs/internal/program"
)

// SubscriptionPlan is the template a payer creates for a family of subscriptions.
//
// Layout (114 bytes, little-endian):
//
//	[0]   is_initialized          1
//	[1]   nonce                   1
//	[2]   owner                  32
//	[34]  authority              32
//	[66]  token                  32
//	[98]  subscription_timeframe  8
//	[106] max_amount              8
type SubscriptionPlan struct {
	IsInitialized bool `json:"is_initialized"`
	// Nonce is the derivation salt of Authority
	Nonce     uint8            `json:"nonce"`
	Owner     solana.PublicKey `json:"owner"`
	Authority solana.PublicKey `json:"authority"`
	// Token is the mint the plan is denominated in
	Token                 solana.PublicKey `json:"token"`
	SubscriptionTimeframe uint64           `json:"subscription_timeframe"`
	MaxAmount             uint64           `json:"max_amount"`
}

// UnpackPlan decodes a plan record, rejecting malformed boolean tags.
func UnpackPlan(src []byte) (*SubscriptionPlan, error) {
	return unpackPlan(src, strict)
}

// UnpackPlanUnchecked decodes a plan record without validating boolean tags.
// It is used right before initialization so the caller can test
// IsInitialized itself.
func UnpackPlanUnchecked(src []byte) (*SubscriptionPlan, error) {
	return unpackPlan(src, unchecked)
}

func unpackPlan(src []byte, mode decodeMode) (*SubscriptionPlan, error) {
	if len(src) != PlanLen {
		return nil, program.InvalidAccountData
	}

	r := newRecordReader(src, mode)
	initialized, err := r.readBool()
	if err != nil {
		return nil, err
	}

	return &SubscriptionPlan{
		IsInitialized:         initialized,
		Nonce:                 r.readU8(),
		Owner:                 r.readKey(),
		Authority:             r.readKey(),
		Token:                 r.readKey(),
		SubscriptionTimeframe: r.readU64(),
		MaxAmount:             r.readU64(),
	}, nil
}

// Pack encodes the plan into dst, which must be exactly PlanLen bytes.
func (p *SubscriptionPlan) Pack(dst []byte) error {
	if len(dst) != PlanLen {
		return program.InvalidAccountData
	}

	w := &recordWriter{buf: dst}
	w.writeBool(p.IsInitialized)
	w.writeU8(p.Nonce)
	w.writeKey(p.Owner)
	w.writeKey(p.Authority)
	w.writeKey(p.Token)
	w.writeU64(p.SubscriptionTimeframe)
	w.writeU64(p.MaxAmount)
	return nil
}

// Bytes returns the encoded plan.
func (p *SubscriptionPlan) Bytes() []byte {
	buf := make([]byte, PlanLen)
	_ = p.Pack(buf)
	return buf
}
