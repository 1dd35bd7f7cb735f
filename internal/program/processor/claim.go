package processor

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/authority"
	"github.com/sollpay/sollpay-programs/internal/program/cycle"
	"github.com/sollpay/sollpay-programs/internal/program/instruction"
	"github.com/sollpay/sollpay-programs/internal/program/state"
	"github.com/sollpay/sollpay-programs/internal/program/sysvar"
	"github.com/sollpay/sollpay-programs/internal/program/token"
)

// claim draws from the subscription's token account into the destination,
// bounded by the allowance of the current cycle.
//
// Accounts: subscription (writable), plan, clock sysvar, source token account
// (writable), destination token account (writable), plan authority, token
// program.
func (p *Processor) claim(ctx context.Context, programID solana.PublicKey, it *program.AccountIter, ix *instruction.Claim, log zerolog.Logger) error {
	accs, err := nextAccounts(it, 7)
	if err != nil {
		return err
	}
	subAcc, planAcc, clockAcc := accs[0], accs[1], accs[2]
	sourceAcc, destinationAcc, authorityAcc, tokenProgramAcc := accs[3], accs[4], accs[5], accs[6]

	if err := checkRecordAccount(programID, subAcc, true); err != nil {
		return err
	}
	sub, err := state.UnpackSubscription(subAcc.Data)
	if err != nil {
		return err
	}
	if !sub.IsInitialized {
		return program.UninitializedAccount
	}
	if !sub.IsApproved {
		return program.SubscriptionNotApproved
	}

	if !planAcc.Key.Equals(sub.SubscriptionPlanAccount) {
		return program.InvalidSubscriptionPlan
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

	auth := authority.FromPlan(plan.Authority, plan.Nonce)
	if !auth.Matches(authorityAcc.Key) {
		return program.InvalidProgramAddress
	}

	if !tokenProgramAcc.Key.Equals(p.opts.TokenProgramID) {
		return program.IncorrectTokenProgramID
	}
	if !sourceAcc.Key.Equals(sub.TokenAccount) {
		return program.InvalidTokenAccount
	}
	if !sourceAcc.IsWritable || !destinationAcc.IsWritable {
		return program.InvalidArgument
	}
	src, err := token.UnpackAccount(sourceAcc, p.opts.TokenProgramID)
	if err != nil {
		return err
	}
	dst, err := token.UnpackAccount(destinationAcc, p.opts.TokenProgramID)
	if err != nil {
		return err
	}
	if !src.Mint.Equals(plan.Token) || !dst.Mint.Equals(plan.Token) {
		return program.InvalidTokenAccount
	}
	// proceeds only go to the subscription owner
	if !dst.Owner.Equals(sub.Owner) {
		return program.InvalidTokenAccount
	}

	clock, err := sysvar.ClockFromAccount(clockAcc)
	if err != nil {
		return err
	}

	res, err := cycle.Claim(sub, clock.UnixTimestamp, ix.Amount, p.opts.TimeUnitSeconds)
	if err != nil {
		return err
	}

	if p.opts.Transferer == nil {
		return program.InvalidArgument
	}
	err = p.opts.Transferer.Transfer(ctx, programID, &token.Transfer{
		TokenProgram: tokenProgramAcc,
		Source:       sourceAcc,
		Destination:  destinationAcc,
		Authority:    authorityAcc,
		Amount:       res.Granted,
		SignerSeeds:  auth.SignerSeeds(planAcc.Key),
	})
	if err != nil {
		return err
	}

	log.Debug().
		Uint64("granted", res.Granted).
		Bool("rolled_over", res.RolledOver).
		Int64("cycle_start", res.Subscription.CycleStart).
		Uint64("withdrawn", res.Subscription.WithdrawnAmount).
		Msg("claim charged")

	return res.Subscription.Pack(subAcc.Data)
}
