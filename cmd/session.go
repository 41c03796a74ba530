package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenctl/internal/ui"
	"github.com/tokenforge/tokenctl/internal/wallet"
)

var connectWallet string

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a wallet session",
	Long: `Connect a wallet session.

Unlocks the wallet's key from the OS keychain to prove the session can
sign, then records the session so later commands (transfer, panel) use it.
A failed connect leaves no session behind; fix the cause and retry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		name := connectWallet
		if name == "" {
			name = cfg.DefaultWallet
		}

		session := wallet.NewSession(mgr)
		addr, err := session.Connect(name)
		if err != nil {
			return err
		}
		defer session.Disconnect()

		if name == "" {
			// Default wallet was resolved inside the session; record the
			// concrete name so the marker stays valid if the default changes.
			if w := mgr.Default(); w != nil {
				name = w.Name
			}
		}
		if err := wallet.SaveSessionMarker(name, addr); err != nil {
			return fmt.Errorf("recording session: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("connected %q as %s", name, ui.Addr(addr))))
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the wallet session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wallet.ClearSessionMarker(); err != nil {
			return err
		}
		fmt.Println(ui.Success("disconnected"))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and contract status",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}

		pairs := [][2]string{
			{"Network", ui.StyleNetwork.Render(n.DisplayName)},
		}
		if marker, ok := wallet.LoadSessionMarker(); ok {
			pairs = append(pairs,
				[2]string{"Session", ui.StyleSuccess.Render("connected")},
				[2]string{"Wallet", marker.Wallet},
				[2]string{"Address", ui.Addr(marker.Address)},
			)
		} else {
			pairs = append(pairs, [2]string{"Session", ui.StyleMeta.Render("disconnected")})
		}
		if entry, ok := cfg.FindContract(""); ok {
			pairs = append(pairs, [2]string{"Contract", ui.Addr(entry.Address) + ui.StyleMeta.Render(" ("+entry.Name+")")})
		}

		fmt.Println(ui.KeyValueBlock("tokenctl status", pairs))
		return nil
	},
}

func init() {
	connectCmd.Flags().StringVarP(&connectWallet, "wallet", "w", "", "wallet to connect (default: configured default)")
}
