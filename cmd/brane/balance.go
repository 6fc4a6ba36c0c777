package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/branehq/brane"
)

func balanceCmd() *cobra.Command {
	var block string
	cmd := &cobra.Command{
		Use:   "balance [address]",
		Short: "Query an address's ether balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(args[0], block)
		},
	}
	cmd.Flags().StringVar(&block, "block", "latest", "block tag: latest, pending, earliest, or a hex block number")
	return cmd
}

func runBalance(address, block string) error {
	client, err := newHTTPClient()
	if err != nil {
		return err
	}

	reader := brane.NewReader(client)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	balance, err := reader.GetBalance(ctx, address, block)
	if err != nil {
		return fmt.Errorf("eth_getBalance failed: %w", err)
	}
	fmt.Printf("%s wei\n", balance.String())
	return nil
}
