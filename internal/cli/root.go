package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sollpay/sollpay-programs/internal/config"
)

// Version is the release version reported by the version command
var Version = "0.1.0-dev"

// rootOptions holds the global flags
type rootOptions struct {
	configFile string
	debug      bool
}

// NewRootCmd builds the sollpay command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "sollpay",
		Short: "sollpay - recurring capped-withdrawal payments",
		Long: `sollpay manages subscription plans, subscriptions and claims of the
recurring payment program. It can encode instructions for submission to a
cluster and run them against a local single-node ledger.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable normally suppressed debug logging")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(opts),
		newAuthorityCmd(opts),
		newInstructionCmd(),
		newRecordCmd(),
		newLedgerCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration named by --conf, or sollpay.toml in the
// working directory when present.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadConfig(o.configFile)
	} else {
		cfg, err = config.LoadDefaultConfig()
	}
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}
