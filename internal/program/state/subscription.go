package state

import (
	"github.com/gagliardetto/solana-go"

	"github.com/sollpay/sollpay-programs/internal/program"
)

// Subscription is one payer-to-payee authorization drawn against a plan.
//
// Layout (130 bytes, little-endian):
//
//	[0]   is_initialized             1
//	[1]   is_approved                1
//	[2]   subscription_plan_account 32
//	[34]  token_account             32
//	[66]  owner                     32
//	[98]  cycle_start (signed)       8
//	[106] subscription_timeframe     8
//	[114] max_amount                 8
//	[122] withdrawn_amount           8
type Subscription struct {
	IsInitialized bool `json:"is_initialized"`
	IsApproved    bool `json:"is_approved"`
	// SubscriptionPlanAccount is a lookup key for the governing plan
	SubscriptionPlanAccount solana.PublicKey `json:"subscription_plan_account"`
	// TokenAccount is where claims draw funds from
	TokenAccount solana.PublicKey `json:"token_account"`
	Owner        solana.PublicKey `json:"owner"`
	// CycleStart is the unix timestamp opening the active cycle
	CycleStart            int64  `json:"cycle_start"`
	SubscriptionTimeframe uint64 `json:"subscription_timeframe"`
	MaxAmount             uint64 `json:"max_amount"`
	// WithdrawnAmount accumulates within the active cycle only
	WithdrawnAmount uint64 `json:"withdrawn_amount"`
}

// UnpackSubscription decodes a subscription record, rejecting malformed boolean tags.
func UnpackSubscription(src []byte) (*Subscription, error) {
	return unpackSubscription(src, strict)
}

// UnpackSubscriptionUnchecked decodes a subscription record without validating
// boolean tags.
func UnpackSubscriptionUnchecked(src []byte) (*Subscription, error) {
	return unpackSubscription(src, unchecked)
}

func unpackSubscription(src []byte, mode decodeMode) (*Subscription, error) {
	if len(src) != SubscriptionLen {
		return nil, program.InvalidAccountData
	}

	r := newRecordReader(src, mode)
	initialized, err := r.readBool()
	if err != nil {
		return nil, err
	}
	approved, err := r.readBool()
	if err != nil {
		return nil, err
	}

	return &Subscription{
		IsInitialized:           initialized,
		IsApproved:              approved,
		SubscriptionPlanAccount: r.readKey(),
		TokenAccount:            r.readKey(),
		Owner:                   r.readKey(),
		CycleStart:              r.readI64(),
		SubscriptionTimeframe:   r.readU64(),
		MaxAmount:               r.readU64(),
		WithdrawnAmount:         r.readU64(),
	}, nil
}

// Pack encodes the subscription into dst, which must be exactly SubscriptionLen bytes.
func (s *Subscription) Pack(dst []byte) error {
	if len(dst) != SubscriptionLen {
		return program.InvalidAccountData
	}

	w := &recordWriter{buf: dst}
	w.writeBool(s.IsInitialized)
	w.writeBool(s.IsApproved)
	w.writeKey(s.SubscriptionPlanAccount)
	w.writeKey(s.TokenAccount)
	w.writeKey(s.Owner)
	w.writeI64(s.CycleStart)
	w.writeU64(s.SubscriptionTimeframe)
	w.writeU64(s.MaxAmount)
	w.writeU64(s.WithdrawnAmount)
	return nil
}

// Bytes returns the encoded subscription.
func (s *Subscription) Bytes() []byte {
	buf := make([]byte, SubscriptionLen)
	_ = s.Pack(buf)
	return buf
}

// Remaining returns the allowance left in the active cycle.
func (s *Subscription) Remaining() uint64 {
	if s.WithdrawnAmount >= s.MaxAmount {
		return 0
	}
	return s.MaxAmount - s.WithdrawnAmount
}
