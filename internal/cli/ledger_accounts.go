package cli

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func newLedgerCreateAccountCmd(opts *ledgerOptions) *cobra.Command {
	var (
		key   solana.PublicKey
		owner solana.PublicKey
		space int
	)
	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Allocate a zeroed account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				o := owner
				if o.IsZero() {
					o = l.bank.ProgramID()
				}
				if err := l.bank.CreateAccount(ctx, key, o, space); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d bytes, owner %s)\n", key, space, o)
				return nil
			})
		},
	}
	pubkeyFlag(cmd, &key, "key", "account address", true)
	pubkeyFlag(cmd, &owner, "owner", "owning program (default: the configured program id)", false)
	cmd.Flags().IntVar(&space, "space", 0, "data size in bytes")
	return cmd
}

func newLedgerCreateTokenAccountCmd(opts *ledgerOptions) *cobra.Command {
	var (
		key, mint, owner solana.PublicKey
		amount           uint64
	)
	cmd := &cobra.Command{
		Use:   "create-token-account",
		Short: "Create an initialized token account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				if err := l.bank.CreateTokenAccount(ctx, key, mint, owner, amount); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created token account %s (mint %s, owner %s, amount %d)\n", key, mint, owner, amount)
				return nil
			})
		},
	}
	pubkeyFlag(cmd, &key, "key", "token account address", true)
	pubkeyFlag(cmd, &mint, "mint", "token mint", true)
	pubkeyFlag(cmd, &owner, "owner", "token account owner", true)
	cmd.Flags().Uint64Var(&amount, "amount", 0, "initial balance")
	return cmd
}

func newLedgerMintToCmd(opts *ledgerOptions) *cobra.Command {
	var (
		key    solana.PublicKey
		amount uint64
	)
	cmd := &cobra.Command{
		Use:   "mint-to",
		Short: "Credit tokens to a token account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				if err := l.bank.MintTo(ctx, key, amount); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "minted %d to %s\n", amount, key)
				return nil
			})
		},
	}
	pubkeyFlag(cmd, &key, "key", "token account address", true)
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to credit")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newLedgerApproveCmd(opts *ledgerOptions) *cobra.Command {
	var (
		key, owner, delegate solana.PublicKey
		amount               uint64
	)
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Delegate spending of a token account",
		Long: `Approve lets delegate transfer up to amount out of the token account.
Claims transfer through the plan's custody authority, so it is the usual
delegate. An amount of 0 revokes the delegation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount != 0 && delegate.IsZero() {
				return fmt.Errorf("--delegate is required unless --amount is 0")
			}
			return opts.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				if err := l.bank.Approve(ctx, key, owner, delegate, amount); err != nil {
					return err
				}
				if amount == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "revoked delegation of %s\n", key)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "approved %s to spend %d from %s\n", delegate, amount, key)
				}
				return nil
			})
		},
	}
	pubkeyFlag(cmd, &key, "key", "token account address", true)
	pubkeyFlag(cmd, &owner, "owner", "token account owner", true)
	pubkeyFlag(cmd, &delegate, "delegate", "delegate allowed to transfer", false)
	cmd.Flags().Uint64Var(&amount, "amount", 0, "delegated amount (0 revokes)")
	return cmd
}
