package cmd

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenctl/internal/chain"
	"github.com/tokenforge/tokenctl/internal/config"
	"github.com/tokenforge/tokenctl/internal/contract"
	"github.com/tokenforge/tokenctl/internal/ui"
)

var (
	deployArtifact  string
	deploySupply    string
	deployDecimals  int
	deployRecipient string
	deployName      string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the token contract to the test network",
	Long: `Deploy the token contract from a Hardhat or Foundry artifact.

The constructor mints the full initial supply to --recipient (default: the
connected wallet). The deployed address is remembered, so balance, transfer
and panel work without flags afterwards.

Example:
  tokenctl deploy --artifact artifacts/Token.json --supply 1000000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deployArtifact == "" {
			return fmt.Errorf("--artifact is required")
		}
		if deploySupply == "" {
			return fmt.Errorf("--supply is required")
		}

		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		session, marker, err := connectedSession()
		if err != nil {
			return err
		}
		defer session.Disconnect()

		art, err := contract.LoadArtifact(deployArtifact)
		if err != nil {
			return err
		}

		supply, err := contract.ParseAmount(deploySupply, deployDecimals)
		if err != nil {
			return err
		}

		recipient := deployRecipient
		if recipient == "" {
			recipient = marker.Address
		}

		rpcURL, err := pickRPC(n)
		if err != nil {
			return err
		}
		client := chain.NewClient(rpcURL)
		signer, err := session.Signer()
		if err != nil {
			return err
		}

		if !ui.Confirm(fmt.Sprintf("Deploy to %s, minting %s units to %s?",
			n.DisplayName, deploySupply, ui.TruncateAddr(recipient))) {
			return nil
		}

		ctx := cmd.Context()
		deployer := contract.NewDeployer(client, signer, big.NewInt(n.ChainID))
		hash, err := deployer.Deploy(ctx, art, supply, recipient)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("submitted deployment " + ui.Addr(hash)))

		sp := ui.NewSpinner("waiting for the deployment to be mined")
		sp.Start()
		waitCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
		defer cancel()
		receipt, err := client.AwaitReceipt(waitCtx, hash)
		sp.Stop()
		if err != nil {
			return err
		}

		name := deployName
		if name == "" {
			name = "token"
		}
		if err := cfg.RememberContract(config.ContractEntry{
			Name:    name,
			Network: n.Name,
			Address: receipt.ContractAddress,
		}); err != nil {
			return fmt.Errorf("remembering contract: %w", err)
		}

		fmt.Println(ui.KeyValueBlock("Deployed", [][2]string{
			{"Contract", ui.Addr(receipt.ContractAddress)},
			{"Block", fmt.Sprintf("%d", receipt.BlockNumber)},
			{"Gas used", fmt.Sprintf("%d", receipt.GasUsed)},
			{"Explorer", n.Explorer + "/address/" + receipt.ContractAddress},
		}))
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVar(&deployArtifact, "artifact", "", "path to the compiler artifact JSON")
	deployCmd.Flags().StringVar(&deploySupply, "supply", "", "initial supply in token units")
	deployCmd.Flags().IntVar(&deployDecimals, "decimals", 18, "token decimals used to scale --supply")
	deployCmd.Flags().StringVar(&deployRecipient, "recipient", "", "initial supply recipient (default: connected wallet)")
	deployCmd.Flags().StringVar(&deployName, "name", "", "name to remember the contract under")
}
