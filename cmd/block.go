package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenctl/internal/chain"
	"github.com/tokenforge/tokenctl/internal/ui"
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Show the latest block of the test network",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		rpcURL, err := pickRPC(n)
		if err != nil {
			return err
		}

		b, err := chain.NewClient(rpcURL).GetLatestBlock(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock(n.DisplayName, [][2]string{
			{"Number", fmt.Sprintf("%d", b.Number)},
			{"Hash", ui.Addr(b.Hash)},
		}))
		return nil
	},
}
