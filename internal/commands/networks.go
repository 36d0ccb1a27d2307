package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/port402/x402-curl/internal/output"
	"github.com/port402/x402-curl/internal/tokens"
)

var networksJSON bool

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List networks x402-curl can pay on",
	Long: `List the payment networks x402-curl recognizes, with their CAIP-2
identifiers, default token and block explorer.

Examples:
  x402-curl networks
  x402-curl networks --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if networksJSON {
			return output.PrintJSON(cmd.OutOrStdout(), tokens.ListNetworks())
		}
		return printNetworks(cmd.OutOrStdout(), tokens.ListNetworks())
	},
}

func init() {
	networksCmd.Flags().BoolVar(&networksJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(networksCmd)
}

var chainTitles = map[string]string{"evm": "EVM", "solana": "Solana"}

// printNetworks renders entries grouped by chain. Entries arrive sorted by chain.
func printNetworks(w io.Writer, entries []tokens.Network) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	chain := ""
	for _, n := range entries {
		if n.Chain != chain {
			chain = n.Chain
			fmt.Fprintf(tw, "\n%s\n", chainTitles[chain])
		}

		token := n.Token
		if token == "" {
			token = "-"
		}
		note := ""
		if n.IsTestnet {
			note = "testnet"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", n.Name, n.ID, token, tokens.GetExplorerHost(n.ID), note)
	}
	return tw.Flush()
}
