package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/sollpay/sollpay-programs/internal/program/state"
	"github.com/sollpay/sollpay-programs/internal/program/token"
	"github.com/sollpay/sollpay-programs/internal/storage/accountstore"
	"github.com/sollpay/sollpay-programs/internal/storage/history"
)

type accountOutput struct {
	Key        solana.PublicKey `json:"key"`
	Owner      solana.PublicKey `json:"owner"`
	Lamports   uint64           `json:"lamports"`
	Executable bool             `json:"executable,omitempty"`
	Slot       uint64           `json:"slot"`
	Size       int              `json:"size"`
	Kind       string           `json:"kind"`
	Decoded    any              `json:"decoded,omitempty"`
}

// describeAccount decodes records of the program and the token program
func describeAccount(l *ledger, acc *accountstore.Account) accountOutput {
	out := accountOutput{
		Key:        acc.Key,
		Owner:      acc.Owner,
		Lamports:   acc.Lamports,
		Executable: acc.Executable,
		Slot:       acc.Slot,
		Size:       len(acc.Data),
		Kind:       "raw",
	}

	switch {
	case acc.Owner.Equals(l.bank.TokenProgramID()):
		if ta, err := token.Decode(acc.Data); err == nil {
			out.Kind, out.Decoded = "token_account", ta
		}
	case acc.Owner.Equals(l.bank.ProgramID()) && len(acc.Data) == state.PlanLen:
		out.Kind = "plan"
		if p, err := state.UnpackPlanUnchecked(acc.Data); err == nil {
			out.Decoded = p
		}
	case acc.Owner.Equals(l.bank.ProgramID()) && len(acc.Data) == state.SubscriptionLen:
		out.Kind = "subscription"
		if s, err := state.UnpackSubscriptionUnchecked(acc.Data); err == nil {
			out.Decoded = s
		}
	}
	return out
}

func newLedgerShowCmd(opts *ledgerOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "show [address]",
		Short: "Show one stored account, or all of them with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("pass either an address or --all")
			}
			return opts.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				if all {
					var accounts []accountOutput
					err := l.bank.ForEachAccount(ctx, func(acc *accountstore.Account) bool {
						accounts = append(accounts, describeAccount(l, acc))
						return true
					})
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), accounts)
				}

				key, err := solana.PublicKeyFromBase58(args[0])
				if err != nil {
					return fmt.Errorf("invalid address %q: %w", args[0], err)
				}
				acc, err := l.bank.Account(ctx, key)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), describeAccount(l, acc))
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "show every stored account")
	return cmd
}

type historyOutput struct {
	ID          int64            `json:"id"`
	Slot        uint64           `json:"slot"`
	UnixTime    int64            `json:"unix_time"`
	Instruction string           `json:"instruction"`
	Account     solana.PublicKey `json:"account"`
	Amount      uint64           `json:"amount,omitempty"`
	Success     bool             `json:"success"`
	Error       string           `json:"error,omitempty"`
	Duration    string           `json:"duration"`
}

func newLedgerHistoryCmd(opts *ledgerOptions) *cobra.Command {
	var (
		account solana.PublicKey
		failed  bool
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List executed instructions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				if l.history == nil {
					return errors.New("history is disabled in the configuration")
				}
				filter := history.Filter{FailedOnly: failed, Limit: limit}
				if !account.IsZero() {
					filter.Account = &account
				}
				entries, err := l.history.List(ctx, filter)
				if err != nil {
					return err
				}
				out := make([]historyOutput, 0, len(entries))
				for _, e := range entries {
					out = append(out, historyOutput{
						ID:          e.ID,
						Slot:        e.Slot,
						UnixTime:    e.UnixTime,
						Instruction: e.Instruction,
						Account:     e.Account,
						Amount:      e.Amount,
						Success:     e.Success,
						Error:       e.Error,
						Duration:    e.Duration.String(),
					})
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	pubkeyFlag(cmd, &account, "account", "only instructions targeting this account", false)
	cmd.Flags().BoolVar(&failed, "failed", false, "only failed instructions")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries")
	return cmd
}
