package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenctl/internal/chain"
	"github.com/tokenforge/tokenctl/internal/contract"
	"github.com/tokenforge/tokenctl/internal/controller"
	"github.com/tokenforge/tokenctl/internal/ui"
	"github.com/tokenforge/tokenctl/internal/wallet"
)

var (
	panelContract string
	panelWallet   string
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the interactive token panel",
	Long: `Open the interactive token panel.

The panel is the front end of the walkthrough: connect or disconnect the
wallet session, check the balance, and submit transfers, with the latest
block hash shown for orientation. The transfer action is disabled while a
transfer is in flight, and a confirmed transfer refreshes the balance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		address, err := resolveContract(panelContract, n)
		if err != nil {
			return err
		}

		rpcURL, err := pickRPC(n)
		if err != nil {
			return err
		}
		client := chain.NewClient(rpcURL)

		ctx := cmd.Context()
		fetcher := contract.NewFetcher(cfg.ExplorerAPIKey)
		abi, err := fetcher.ResolveInterface(ctx, client, n.ExplorerAPI, address)
		if err != nil {
			return err
		}
		binding, err := contract.Bind(abi, address, client)
		if err != nil {
			return err
		}

		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		session := wallet.NewSession(mgr)
		defer session.Disconnect()

		// The panel's session signs through the binding; reads work either way.
		token, err := contract.NewToken(ctx, binding.WithSessionSigner(session, big.NewInt(n.ChainID)))
		if err != nil {
			return err
		}

		walletName := panelWallet
		if walletName == "" {
			if marker, ok := wallet.LoadSessionMarker(); ok {
				walletName = marker.Wallet
			} else {
				walletName = cfg.DefaultWallet
			}
		}

		ctrl := controller.New(session, token, blockHashReader{client: client})

		program := ui.NewPanel(ui.PanelDeps{
			Controller:    ctrl,
			Client:        client,
			TokenName:     token.Name(),
			TokenSymbol:   token.Symbol(),
			TokenDecimals: token.Decimals(),
			Network:       n.DisplayName,
			ContractAddr:  address,
			WalletName:    walletName,
		})
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("panel: %w", err)
		}
		return nil
	},
}

func init() {
	panelCmd.Flags().StringVarP(&panelContract, "contract", "c", "", "token contract (address or remembered name)")
	panelCmd.Flags().StringVarP(&panelWallet, "wallet", "w", "", "wallet to connect from the panel")
}
