// Package processor is the program entry point: it decodes an instruction and
// runs the matching state transition against the accounts supplied by the host.
package processor

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/instruction"
	"github.com/sollpay/sollpay-programs/internal/program/token"
)

// Options configures a Processor
type Options struct {
	// TokenProgramID is the only token program claims may transfer through
	TokenProgramID solana.PublicKey

	// ScaleShift is applied to the plan terms before comparing them with the
	// terms supplied to CreateSubscription: plan.x >> ScaleShift == supplied.
	// Zero requires an exact match.
	ScaleShift uint

	// TimeUnitSeconds is the number of clock seconds in one timeframe unit
	TimeUnitSeconds int64

	// CycleOpenOffset back-dates the first cycle of a new subscription
	CycleOpenOffset int64

	Logger zerolog.Logger

	// Transferer moves tokens on behalf of the program
	Transferer token.Transferer
}

// Processor executes program instructions. It holds no mutable state and is
// safe for concurrent use; the host serializes access to accounts.
type Processor struct {
	opts Options
	log  zerolog.Logger
}

// New creates a processor
func New(opts Options) *Processor {
	if opts.TimeUnitSeconds <= 0 {
		opts.TimeUnitSeconds = 1
	}
	if opts.TokenProgramID.IsZero() {
		opts.TokenProgramID = solana.TokenProgramID
	}
	if opts.CycleOpenOffset < 0 {
		opts.CycleOpenOffset = 0
	}
	return &Processor{
		opts: opts,
		log:  opts.Logger.With().Str("component", "processor").Logger(),
	}
}

// TokenProgramID returns the token program the processor accepts
func (p *Processor) TokenProgramID() solana.PublicKey {
	return p.opts.TokenProgramID
}

// Process decodes data and applies it to accounts. Account data is only
// written once every check of the transition has passed; on error the host
// must discard all account changes.
func (p *Processor) Process(ctx context.Context, programID solana.PublicKey, accounts []*program.AccountInfo, data []byte) error {
	ix, err := instruction.Unpack(data)
	if err != nil {
		p.log.Warn().Err(err).Int("len", len(data)).Msg("rejecting instruction data")
		return err
	}

	log := p.log.With().Str("instruction", ix.Opcode().String()).Logger()
	log.Debug().Msg("processing")

	it := program.NewAccountIter(accounts)
	switch ix := ix.(type) {
	case *instruction.CreatePlan:
		err = p.createPlan(programID, it, ix)
	case *instruction.CreateSubscription:
		err = p.createSubscription(programID, it, ix)
	case *instruction.Claim:
		err = p.claim(ctx, programID, it, ix, log)
	default:
		err = program.InvalidInstruction
	}

	if err != nil {
		log.Warn().Err(err).Str("code", errorName(err)).Msg("instruction failed")
		return err
	}
	return nil
}

func errorName(err error) string {
	var perr program.Error
	if errors.As(err, &perr) {
		return perr.String()
	}
	return "host"
}

// nextAccounts pulls n accounts off the iterator
func nextAccounts(it *program.AccountIter, n int) ([]*program.AccountInfo, error) {
	out := make([]*program.AccountInfo, n)
	for i := range out {
		acc, err := it.Next()
		if err != nil {
			return nil, err
		}
		out[i] = acc
	}
	return out, nil
}

// checkRecordAccount verifies that acc is a program-owned record account
func checkRecordAccount(programID solana.PublicKey, acc *program.AccountInfo, writable bool) error {
	if !acc.Owner.Equals(programID) {
		return program.IncorrectProgramID
	}
	if writable && !acc.IsWritable {
		return program.InvalidArgument
	}
	return nil
}
