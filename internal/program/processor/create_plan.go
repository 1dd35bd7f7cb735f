package processor

import (
	"github.com/gagliardetto/solana-go"

	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/authority"
	"github.com/sollpay/sollpay-programs/internal/program/cycle"
	"github.com/sollpay/sollpay-programs/internal/program/instruction"
	"github.com/sollpay/sollpay-programs/internal/program/state"
)

// createPlan initializes a plan record.
//
// Accounts: plan (writable), owner (signer), authority, token mint.
func (p *Processor) createPlan(programID solana.PublicKey, it *program.AccountIter, ix *instruction.CreatePlan) error {
	accs, err := nextAccounts(it, 4)
	if err != nil {
		return err
	}
	planAcc, ownerAcc, authorityAcc, mintAcc := accs[0], accs[1], accs[2], accs[3]

	if err := checkRecordAccount(programID, planAcc, true); err != nil {
		return err
	}
	if !ownerAcc.IsSigner {
		return program.MissingRequiredSignature
	}
	if _, err := cycle.Span(ix.SubscriptionTimeframe, p.opts.TimeUnitSeconds); err != nil {
		return err
	}
	if ix.MaxAmount == 0 {
		return program.InvalidMaxAmount
	}

	current, err := state.UnpackPlanUnchecked(planAcc.Data)
	if err != nil {
		return err
	}
	if current.IsInitialized {
		return program.AccountAlreadyInitialized
	}

	auth, err := authority.Derive(programID, planAcc.Key, ix.Nonce)
	if err != nil {
		return err
	}
	if !auth.Matches(authorityAcc.Key) {
		return program.InvalidProgramAddress
	}

	plan := &state.SubscriptionPlan{
		IsInitialized:         true,
		Nonce:                 auth.Nonce,
		Owner:                 ownerAcc.Key,
		Authority:             auth.Address,
		Token:                 mintAcc.Key,
		SubscriptionTimeframe: ix.SubscriptionTimeframe,
		MaxAmount:             ix.MaxAmount,
	}
	return plan.Pack(planAcc.Data)
}
