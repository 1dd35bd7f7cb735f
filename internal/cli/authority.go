package cli

import (
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/sollpay/sollpay-programs/internal/program/authority"
)

type authorityOutput struct {
	Plan      solana.PublicKey `json:"plan"`
	ProgramID solana.PublicKey `json:"program_id"`
	Authority solana.PublicKey `json:"authority"`
	Nonce     uint8            `json:"nonce"`
}

func newAuthorityCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authority",
		Short: "Derive the custody authority of a plan",
	}

	var (
		programID solana.PublicKey
		plan      solana.PublicKey
		nonce     uint8
	)

	// resolveProgram falls back to the configured program id
	resolveProgram := func() (solana.PublicKey, error) {
		if !programID.IsZero() {
			return programID, nil
		}
		cfg, err := opts.loadConfig()
		if err != nil {
			return solana.PublicKey{}, err
		}
		return cfg.ProgramID(), nil
	}

	deriveCmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive the authority for a plan and nonce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := resolveProgram()
			if err != nil {
				return err
			}
			auth, err := authority.Derive(pid, plan, nonce)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), authorityOutput{Plan: plan, ProgramID: pid, Authority: auth.Address, Nonce: auth.Nonce})
		},
	}
	pubkeyFlag(deriveCmd, &programID, "program", "program id (default from configuration)", false)
	pubkeyFlag(deriveCmd, &plan, "plan", "plan account", true)
	deriveCmd.Flags().Uint8Var(&nonce, "nonce", 0, "derivation nonce")
	_ = deriveCmd.MarkFlagRequired("nonce")

	findCmd := &cobra.Command{
		Use:   "find",
		Short: "Find the first valid nonce and authority for a plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := resolveProgram()
			if err != nil {
				return err
			}
			auth, err := authority.Find(pid, plan)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), authorityOutput{Plan: plan, ProgramID: pid, Authority: auth.Address, Nonce: auth.Nonce})
		},
	}
	pubkeyFlag(findCmd, &programID, "program", "program id (default from configuration)", false)
	pubkeyFlag(findCmd, &plan, "plan", "plan account", true)

	cmd.AddCommand(deriveCmd, findCmd)
	return cmd
}
