// Command brane is a thin CLI over the brane SDK: read-only queries against
// an Ethereum JSON-RPC endpoint, and an interactive "sign and send" flow for
// a locally held private key.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rpcURL           string
	endpointFilePath string
	chainFlag        string
)

var rootCmd = &cobra.Command{
	Use:   "brane",
	Short: "brane - Ethereum JSON-RPC client SDK CLI",
	Long:  `A command-line front end for the brane Ethereum JSON-RPC client SDK.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", "", "HTTP RPC endpoint URL")
	rootCmd.PersistentFlags().StringVar(&endpointFilePath, "endpoints", "", "YAML file of named RPC endpoint profiles")
	rootCmd.PersistentFlags().StringVar(&chainFlag, "chain", "mainnet", "chain profile name: mainnet, sepolia, holesky, optimism, base")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(sendCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
