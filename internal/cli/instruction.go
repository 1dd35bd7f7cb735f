package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sollpay/sollpay-programs/internal/program/instruction"
)

type decodedInstruction struct {
	Instruction string                  `json:"instruction"`
	Opcode      uint8                   `json:"opcode"`
	Args        instruction.Instruction `json:"args"`
}

func newInstructionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instruction",
		Short: "Encode and decode instruction data",
	}
	cmd.AddCommand(newInstructionEncodeCmd(), newInstructionDecodeCmd())
	return cmd
}

func newInstructionEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode instruction data as hex",
	}

	emit := func(cmd *cobra.Command, ix instruction.Instruction) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(ix.Pack()))
		return err
	}

	var plan instruction.CreatePlan
	planCmd := &cobra.Command{
		Use:   "create-plan",
		Short: "Encode a CreatePlan instruction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, &plan)
		},
	}
	planCmd.Flags().Uint8Var(&plan.Nonce, "nonce", 0, "authority derivation nonce")
	planCmd.Flags().Uint64Var(&plan.SubscriptionTimeframe, "timeframe", 0, "cycle length in timeframe units")
	planCmd.Flags().Uint64Var(&plan.MaxAmount, "max-amount", 0, "allowance per cycle")
	_ = planCmd.MarkFlagRequired("nonce")
	_ = planCmd.MarkFlagRequired("timeframe")
	_ = planCmd.MarkFlagRequired("max-amount")

	var sub instruction.CreateSubscription
	subCmd := &cobra.Command{
		Use:   "create-subscription",
		Short: "Encode a CreateSubscription instruction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, &sub)
		},
	}
	subCmd.Flags().Uint64Var(&sub.SubscriptionTimeframe, "timeframe", 0, "cycle length as agreed by the subscriber")
	subCmd.Flags().Uint64Var(&sub.MaxAmount, "max-amount", 0, "allowance per cycle as agreed by the subscriber")
	_ = subCmd.MarkFlagRequired("timeframe")
	_ = subCmd.MarkFlagRequired("max-amount")

	var claim instruction.Claim
	claimCmd := &cobra.Command{
		Use:   "claim",
		Short: "Encode a Claim instruction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, &claim)
		},
	}
	claimCmd.Flags().Uint64Var(&claim.Amount, "amount", 0, "amount to claim (0 claims the remaining allowance)")

	cmd.AddCommand(planCmd, subCmd, claimCmd)
	return cmd
}

func newInstructionDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <data>",
		Short: "Decode hex (or base64:...) instruction data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeBytes(args[0])
			if err != nil {
				return fmt.Errorf("invalid instruction data: %w", err)
			}
			ix, err := instruction.Unpack(data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), decodedInstruction{
				Instruction: ix.Opcode().String(),
				Opcode:      uint8(ix.Opcode()),
				Args:        ix,
			})
		},
	}
}
