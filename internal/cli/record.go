package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sollpay/sollpay-programs/internal/program/state"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Inspect plan and subscription records",
	}

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode hex (or base64:...) record data",
	}

	var unchecked bool
	decodeCmd.PersistentFlags().BoolVar(&unchecked, "unchecked", false, "accept any non-zero boolean tag")

	planCmd := &cobra.Command{
		Use:   "plan <data>",
		Short: "Decode a plan record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeBytes(args[0])
			if err != nil {
				return fmt.Errorf("invalid record data: %w", err)
			}
			unpack := state.UnpackPlan
			if unchecked {
				unpack = state.UnpackPlanUnchecked
			}
			plan, err := unpack(data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		},
	}

	subCmd := &cobra.Command{
		Use:   "subscription <data>",
		Short: "Decode a subscription record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeBytes(args[0])
			if err != nil {
				return fmt.Errorf("invalid record data: %w", err)
			}
			unpack := state.UnpackSubscription
			if unchecked {
				unpack = state.UnpackSubscriptionUnchecked
			}
			sub, err := unpack(data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sub)
		},
	}

	decodeCmd.AddCommand(planCmd, subCmd)
	cmd.AddCommand(decodeCmd)
	return cmd
}
