package processor

import (
	"github.com/gagliardetto/solana-go"

	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/cycle"
	"github.com/sollpay/sollpay-programs/internal/program/instruction"
	"github.com/sollpay/sollpay-programs/internal/program/state"
	"github.com/sollpay/sollpay-programs/internal/program/sysvar"
	"github.com/sollpay/sollpay-programs/internal/program/token"
)

// createSubscription initializes a subscription against an existing plan.
// The supplied terms must agree with the plan's after scaling.
//
// Accounts: subscription (writable), plan, token account, token program,
// clock sysvar, fee account, token account owner (signer). The fee account is
// accepted but not used.
func (p *Processor) createSubscription(programID solana.PublicKey, it *program.AccountIter, ix *instruction.CreateSubscription) error {
	accs, err := nextAccounts(it, 7)
	if err != nil {
		return err
	}
	subAcc, planAcc, tokenAcc, tokenProgramAcc, clockAcc, payerAcc := accs[0], accs[1], accs[2], accs[3], accs[4], accs[6]

	if err := checkRecordAccount(programID, subAcc, true); err != nil {
		return err
	}
	current, err := state.UnpackSubscriptionUnchecked(subAcc.Data)
	if err != nil {
		return err
	}
	if current.IsInitialized {
		return program.AccountAlreadyInitialized
	}

	if err := checkRecordAccount(programID, planAcc, false); err != nil {
		return err
	}
	plan, err := state.UnpackPlan(planAcc.Data)
	if err != nil {
		return err
	}
	if !plan.IsInitialized {
		return program.UninitializedAccount
	}

	if !tokenProgramAcc.Key.Equals(p.opts.TokenProgramID) {
		return program.IncorrectTokenProgramID
	}
	tokenAccount, err := token.UnpackAccount(tokenAcc, p.opts.TokenProgramID)
	if err != nil {
		return err
	}
	if !tokenAccount.Mint.Equals(plan.Token) {
		return program.InvalidTokenAccount
	}
	if !payerAcc.IsSigner || !payerAcc.Key.Equals(tokenAccount.Owner) {
		return program.MissingRequiredSignature
	}

	if plan.SubscriptionTimeframe>>p.opts.ScaleShift != ix.SubscriptionTimeframe {
		return program.InvalidSubscriptionTimeframe
	}
	if plan.MaxAmount>>p.opts.ScaleShift != ix.MaxAmount {
		return program.InvalidMaxAmount
	}
	if _, err := cycle.Span(ix.SubscriptionTimeframe, p.opts.TimeUnitSeconds); err != nil {
		return err
	}
	if ix.MaxAmount == 0 {
		return program.InvalidMaxAmount
	}

	clock, err := sysvar.ClockFromAccount(clockAcc)
	if err != nil {
		return err
	}

	sub := &state.Subscription{
		IsInitialized:           true,
		IsApproved:              true,
		SubscriptionPlanAccount: planAcc.Key,
		TokenAccount:            tokenAcc.Key,
		Owner:                   plan.Owner,
		CycleStart:              clock.UnixTimestamp - p.opts.CycleOpenOffset,
		SubscriptionTimeframe:   ix.SubscriptionTimeframe,
		MaxAmount:               ix.MaxAmount,
		WithdrawnAmount:         0,
	}
	return sub.Pack(subAcc.Data)
}
