package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenctl/internal/config"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/tokenforge/tokenctl/cmd.Version=1.2.3" .
var Version = "0.3.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	networkFlag string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "tokenctl",
	Short: "Deploy and interact with an ERC-20 token on a test network",
	Long: `tokenctl is a terminal walkthrough for test-network tokens.

  Deploy a minimal ERC-20 from a compiler artifact, connect a wallet
  session, check balances, and submit transfers, all against public
  testnets (Sepolia by default). The "panel" command opens an interactive
  front end for the same operations.

Typical flow:
  tokenctl wallet add deployer --key 0x...
  tokenctl deploy --artifact Token.json --supply 1000000
  tokenctl connect
  tokenctl panel`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// TOKENCTL_CONFIG_DIR env var seeds the --config flag default.
	if envDir := os.Getenv("TOKENCTL_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.tokenctl)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "test network (default: configured network)")

	rootCmd.AddCommand(
		walletCmd,
		networkCmd,
		connectCmd,
		disconnectCmd,
		statusCmd,
		deployCmd,
		balanceCmd,
		transferCmd,
		blockCmd,
		panelCmd,
	)
}
