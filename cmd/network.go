package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenctl/internal/chain"
	"github.com/tokenforge/tokenctl/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show supported test networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported test networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, n := range chain.NewRegistry().All() {
			mark := "  "
			name := fmt.Sprintf("%-18s", n.Name)
			if n.Name == cfg.DefaultNetwork {
				mark = ui.StyleSuccess.Render("* ")
				name = ui.StyleSelected.Render(name)
			}
			fmt.Printf("%s%s %s  %s\n",
				mark,
				name,
				ui.StyleNetwork.Render(n.DisplayName),
				ui.StyleMeta.Render(fmt.Sprintf("chain %d · %s", n.ChainID, n.NativeCurrency)),
			)
			if verbose {
				fmt.Printf("    %s\n", ui.StyleMeta.Render("rpc: "+n.RPCs[0]))
				if n.FaucetURL != "" {
					fmt.Printf("    %s\n", ui.StyleMeta.Render("faucet: "+n.FaucetURL))
				}
			}
		}
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default test network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q", args[0])
		}
		cfg.DefaultNetwork = n.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("default network: " + n.Name))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
