package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/sollpay/sollpay-programs/internal/bank"
	"github.com/sollpay/sollpay-programs/internal/program/authority"
	"github.com/sollpay/sollpay-programs/internal/program/instruction"
	"github.com/sollpay/sollpay-programs/internal/program/state"
	"github.com/sollpay/sollpay-programs/internal/storage/accountstore"
)

type receiptOutput struct {
	Slot        uint64             `json:"slot"`
	UnixTime    int64              `json:"unix_time"`
	Instruction string             `json:"instruction"`
	Transferred uint64             `json:"transferred,omitempty"`
	Modified    []solana.PublicKey `json:"modified"`
	Duration    string             `json:"duration"`
}

func newReceiptOutput(r *bank.Receipt) receiptOutput {
	return receiptOutput{
		Slot:        r.Slot,
		UnixTime:    r.UnixTime,
		Instruction: r.Instruction,
		Transferred: r.Transferred,
		Modified:    r.Modified,
		Duration:    r.Duration.Round(time.Microsecond).String(),
	}
}

// ensureRecordAccount allocates a program-owned record account if missing
func ensureRecordAccount(ctx context.Context, l *ledger, key solana.PublicKey, space int) error {
	_, err := l.bank.Account(ctx, key)
	if errors.Is(err, accountstore.ErrAccountNotFound) {
		return l.bank.CreateAccount(ctx, key, l.bank.ProgramID(), space)
	}
	return err
}

func newLedgerCreatePlanCmd(opts *ledgerOptions) *cobra.Command {
	var (
		plan, owner, mint    solana.PublicKey
		nonce                uint8
		timeframe, maxAmount uint64
	)
	cmd := &cobra.Command{
		Use:   "create-plan",
		Short: "Execute CreatePlan",
		Long: `Execute CreatePlan. The plan account is allocated when it does not exist.
Without --nonce the first valid authority nonce is searched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				programID := l.bank.ProgramID()

				var (
					auth authority.Authority
					err  error
				)
				if cmd.Flags().Changed("nonce") {
					auth, err = authority.Derive(programID, plan, nonce)
				} else {
					auth, err = authority.Find(programID, plan)
				}
				if err != nil {
					return err
				}

				if err := ensureRecordAccount(ctx, l, plan, state.PlanLen); err != nil {
					return err
				}

				r, err := l.bank.Execute(ctx, instruction.NewCreatePlanInstruction(
					programID, plan, owner, auth.Address, mint, auth.Nonce, timeframe, maxAmount))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), struct {
					receiptOutput
					Authority solana.PublicKey `json:"authority"`
					Nonce     uint8            `json:"nonce"`
				}{newReceiptOutput(r), auth.Address, auth.Nonce})
			})
		},
	}
	pubkeyFlag(cmd, &plan, "plan", "plan account", true)
	pubkeyFlag(cmd, &owner, "owner", "plan owner", true)
	pubkeyFlag(cmd, &mint, "mint", "token mint of the plan", true)
	cmd.Flags().Uint8Var(&nonce, "nonce", 0, "authority derivation nonce (default: search)")
	cmd.Flags().Uint64Var(&timeframe, "timeframe", 0, "cycle length in timeframe units")
	cmd.Flags().Uint64Var(&maxAmount, "max-amount", 0, "allowance per cycle")
	_ = cmd.MarkFlagRequired("timeframe")
	_ = cmd.MarkFlagRequired("max-amount")
	return cmd
}

func newLedgerCreateSubscriptionCmd(opts *ledgerOptions) *cobra.Command {
	var (
		subscription, plan, tokenAccount, fee, payer solana.PublicKey
		timeframe, maxAmount                         uint64
	)
	cmd := &cobra.Command{
		Use:   "create-subscription",
		Short: "Execute CreateSubscription",
		Long: `Execute CreateSubscription. The subscription account is allocated when it
does not exist. The fee account defaults to the token account. The payer
must own the token account and signs the subscription.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				if err := ensureRecordAccount(ctx, l, subscription, state.SubscriptionLen); err != nil {
					return err
				}
				feeAccount := fee
				if feeAccount.IsZero() {
					feeAccount = tokenAccount
				}

				r, err := l.bank.Execute(ctx, instruction.NewCreateSubscriptionInstruction(
					l.bank.ProgramID(), subscription, plan, tokenAccount, l.bank.TokenProgramID(), feeAccount, payer, timeframe, maxAmount))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), newReceiptOutput(r))
			})
		},
	}
	pubkeyFlag(cmd, &subscription, "subscription", "subscription account", true)
	pubkeyFlag(cmd, &plan, "plan", "plan account", true)
	pubkeyFlag(cmd, &tokenAccount, "token-account", "token account claims draw from", true)
	pubkeyFlag(cmd, &fee, "fee", "fee account", false)
	pubkeyFlag(cmd, &payer, "payer", "owner of the token account, signs the subscription", true)
	cmd.Flags().Uint64Var(&timeframe, "timeframe", 0, "cycle length as agreed by the subscriber")
	cmd.Flags().Uint64Var(&maxAmount, "max-amount", 0, "allowance per cycle as agreed by the subscriber")
	_ = cmd.MarkFlagRequired("timeframe")
	_ = cmd.MarkFlagRequired("max-amount")
	return cmd
}

func newLedgerClaimCmd(opts *ledgerOptions) *cobra.Command {
	var (
		subscription, destination solana.PublicKey
		amount                    uint64
	)
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Execute Claim",
		Long: `Execute Claim. The plan, source token account and custody authority are
read from the stored subscription and plan records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				subAcc, err := l.bank.Account(ctx, subscription)
				if err != nil {
					return fmt.Errorf("subscription %s: %w", subscription, err)
				}
				sub, err := state.UnpackSubscription(subAcc.Data)
				if err != nil {
					return fmt.Errorf("subscription %s: %w", subscription, err)
				}
				planAcc, err := l.bank.Account(ctx, sub.SubscriptionPlanAccount)
				if err != nil {
					return fmt.Errorf("plan %s: %w", sub.SubscriptionPlanAccount, err)
				}
				plan, err := state.UnpackPlan(planAcc.Data)
				if err != nil {
					return fmt.Errorf("plan %s: %w", sub.SubscriptionPlanAccount, err)
				}

				r, err := l.bank.Execute(ctx, instruction.NewClaimInstruction(
					l.bank.ProgramID(), subscription, sub.SubscriptionPlanAccount, sub.TokenAccount,
					destination, plan.Authority, l.bank.TokenProgramID(), amount))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), newReceiptOutput(r))
			})
		},
	}
	pubkeyFlag(cmd, &subscription, "subscription", "subscription account", true)
	pubkeyFlag(cmd, &destination, "destination", "token account receiving the claim", true)
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to claim (0 claims the remaining allowance)")
	return cmd
}
