package bank

import (
	"context"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/authority"
	"github.com/sollpay/sollpay-programs/internal/program/token"
)

// tokenProgram is the bank's implementation of the token transfer
// collaborator. It edits the token account handles of the running
// instruction, so its effects commit or roll back with the instruction.
type tokenProgram struct {
	id  solana.PublicKey
	log zerolog.Logger

	// moved is the amount transferred by the running instruction
	moved uint64
}

func (tp *tokenProgram) reset() {
	tp.moved = 0
}

// Transfer implements token.Transferer
func (tp *tokenProgram) Transfer(ctx context.Context, programID solana.PublicKey, t *token.Transfer) error {
	if !t.TokenProgram.Key.Equals(tp.id) {
		return program.IncorrectTokenProgramID
	}
	if !t.Source.IsWritable || !t.Destination.IsWritable {
		return program.InvalidArgument
	}

	src, err := token.UnpackAccount(t.Source, tp.id)
	if err != nil {
		return err
	}
	dst, err := token.UnpackAccount(t.Destination, tp.id)
	if err != nil {
		return err
	}
	if !src.Mint.Equals(dst.Mint) {
		return program.InvalidTokenAccount
	}

	signed := t.Authority.IsSigner || authority.Verify(programID, t.Authority.Key, t.SignerSeeds)
	if !signed {
		return program.MissingRequiredSignature
	}

	switch {
	case src.Owner.Equals(t.Authority.Key):
	case src.Delegate != nil && src.Delegate.Equals(t.Authority.Key):
		if src.DelegatedAmount < t.Amount {
			return program.InsufficientFunds
		}
		src.DelegatedAmount -= t.Amount
		if src.DelegatedAmount == 0 {
			src.Delegate = nil
		}
	default:
		return program.InvalidArgument
	}

	if src.Amount < t.Amount {
		return program.InsufficientFunds
	}
	if dst.Amount > math.MaxUint64-t.Amount {
		return program.InvalidArgument
	}

	if t.Source.Key.Equals(t.Destination.Key) {
		srcData, err := token.Encode(src)
		if err != nil {
			return err
		}
		copy(t.Source.Data, srcData)
	} else {
		src.Amount -= t.Amount
		dst.Amount += t.Amount
		srcData, err := token.Encode(src)
		if err != nil {
			return err
		}
		dstData, err := token.Encode(dst)
		if err != nil {
			return err
		}
		copy(t.Source.Data, srcData)
		copy(t.Destination.Data, dstData)
	}

	tp.moved += t.Amount
	tp.log.Debug().
		Stringer("source", t.Source.Key).
		Stringer("destination", t.Destination.Key).
		Uint64("amount", t.Amount).
		Msg("transfer")
	return nil
}
