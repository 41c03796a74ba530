package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenctl/internal/ui"
	"github.com/tokenforge/tokenctl/internal/wallet"
)

var (
	walletKey     string
	walletAddress string
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
	Long: `Manage wallets.

A signing wallet (added with --key) can connect a session and submit
transfers; a watch-only wallet (added with --address) can only be read.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		switch {
		case walletKey != "":
			key := walletKey
			if key == "-" {
				// read interactively so the key stays out of shell history
				key = ui.PromptInput("private key")
			}
			if err := mgr.AddWithKey(name, key); err != nil {
				return err
			}
		case walletAddress != "":
			if !common.IsHexAddress(walletAddress) {
				return fmt.Errorf("malformed address %q", walletAddress)
			}
			if err := mgr.AddWatchOnly(name, walletAddress); err != nil {
				return err
			}
		default:
			return fmt.Errorf("pass --key for a signing wallet or --address for watch-only")
		}

		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("added %s wallet %q (%s)", w.Type, name, ui.TruncateAddr(w.Address))))

		if mgr.Default() != nil && mgr.Default().Name == name {
			fmt.Println(ui.StyleMeta.Render("  now the default wallet"))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		wallets := mgr.List()
		if len(wallets) == 0 {
			fmt.Println(ui.StyleMeta.Render("no wallets yet, add one with `tokenctl wallet add`"))
			return nil
		}
		for _, w := range wallets {
			mark := "  "
			if w.IsDefault {
				mark = ui.StyleSuccess.Render("* ")
			}
			fmt.Printf("%s%-16s %s  %s\n", mark, w.Name, ui.Addr(w.Address), ui.StyleMeta.Render(w.Type))
		}
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.Confirm(fmt.Sprintf("Remove wallet %q and its key?", name)) {
			return nil
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		// A removed wallet cannot stay the connected session.
		if marker, ok := wallet.LoadSessionMarker(); ok && marker.Wallet == name {
			_ = wallet.ClearSessionMarker()
		}
		fmt.Println(ui.Success("removed " + name))
		return nil
	},
}

var walletDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Mark a wallet as the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.SetDefault(args[0]); err != nil {
			return err
		}
		fmt.Println(ui.Success("default wallet: " + args[0]))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKey, "key", "", "hex private key, or - to prompt (stored in the OS keychain)")
	walletAddCmd.Flags().StringVar(&walletAddress, "address", "", "address for a watch-only wallet")
	walletAddCmd.MarkFlagsMutuallyExclusive("key", "address")

	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletDefaultCmd)
}
