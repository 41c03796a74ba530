package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenctl/internal/contract"
	"github.com/tokenforge/tokenctl/internal/ui"
	"github.com/tokenforge/tokenctl/internal/wallet"
)

var (
	balanceContract string
	balanceAccount  string
)

var balanceCmd = &cobra.Command{
	Use:   "balance [account]",
	Short: "Check the token balance of an account",
	Long: `Check the token balance of an account.

Reads need no signing session: pass any account address, or omit it to use
the connected wallet's address.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account := balanceAccount
		if len(args) == 1 {
			account = args[0]
		}
		if account == "" {
			marker, ok := wallet.LoadSessionMarker()
			if !ok {
				return fmt.Errorf("no account given and no session connected")
			}
			account = marker.Address
		}
		if !common.IsHexAddress(account) {
			return fmt.Errorf("malformed account address %q", account)
		}

		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		address, err := resolveContract(balanceContract, n)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		token, _, err := bindToken(ctx, n, address, nil)
		if err != nil {
			return err
		}

		bal, err := token.BalanceOf(ctx, account)
		if err != nil {
			return err
		}

		amount := contract.FormatAmount(bal, token.Decimals())
		symbol := token.Symbol()
		fmt.Printf("%s  %s %s\n", ui.Addr(ui.TruncateAddr(account)), ui.Val(amount), ui.StyleMeta.Render(symbol))
		if verbose {
			fmt.Println(ui.StyleMeta.Render("  raw: " + bal.Dec()))
		}
		return nil
	},
}

func init() {
	balanceCmd.Flags().StringVarP(&balanceContract, "contract", "c", "", "token contract (address or remembered name)")
	balanceCmd.Flags().StringVar(&balanceAccount, "account", "", "account to query (default: connected wallet)")
}
