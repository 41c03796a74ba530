package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenctl/internal/contract"
	"github.com/tokenforge/tokenctl/internal/ui"
)

var (
	transferContract string
	transferWait     bool
)

var transferCmd = &cobra.Command{
	Use:   "transfer <recipient> <amount>",
	Short: "Transfer tokens to a recipient",
	Long: `Transfer tokens from the connected wallet to a recipient.

The amount is in token units ("1.5" with 18 decimals transfers
1500000000000000000 base units). Submission is acknowledged with the
transaction hash; pass --wait to additionally poll until it is mined.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipient, amountStr := args[0], args[1]
		if !common.IsHexAddress(recipient) {
			return fmt.Errorf("malformed recipient address %q", recipient)
		}

		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		address, err := resolveContract(transferContract, n)
		if err != nil {
			return err
		}

		session, _, err := connectedSession()
		if err != nil {
			return err
		}
		defer session.Disconnect()

		ctx := cmd.Context()
		token, client, err := bindToken(ctx, n, address, session)
		if err != nil {
			return err
		}

		amount, err := contract.ParseAmount(amountStr, token.Decimals())
		if err != nil {
			return err
		}

		symbol := token.Symbol()
		if !ui.Confirm(fmt.Sprintf("Transfer %s %s to %s on %s?",
			amountStr, symbol, ui.TruncateAddr(recipient), n.DisplayName)) {
			return nil
		}

		hash, err := token.Transfer(ctx, recipient, amount)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("submitted " + ui.Addr(hash)))
		fmt.Println(ui.StyleMeta.Render("  " + n.Explorer + "/tx/" + hash))

		if !transferWait {
			return nil
		}

		sp := ui.NewSpinner("waiting for confirmation")
		sp.Start()
		waitCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
		defer cancel()
		receipt, err := client.AwaitReceipt(waitCtx, hash)
		if err != nil {
			sp.Stop()
			return err
		}
		sp.StopWithMsg(ui.Success(fmt.Sprintf("confirmed in block %d (gas %d)", receipt.BlockNumber, receipt.GasUsed)))
		return nil
	},
}

func init() {
	transferCmd.Flags().StringVarP(&transferContract, "contract", "c", "", "token contract (address or remembered name)")
	transferCmd.Flags().BoolVar(&transferWait, "wait", false, "poll until the transfer is mined")
}
