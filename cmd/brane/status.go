package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/branehq/brane"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report chain id and current block height for the configured endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
	return cmd
}

func runStatus() error {
	client, err := newHTTPClient()
	if err != nil {
		return err
	}
	profile, err := resolveChainProfile()
	if err != nil {
		return err
	}

	reader := brane.NewReader(client)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chainID, err := reader.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("eth_chainId failed: %w", err)
	}
	height, err := reader.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("eth_blockNumber failed: %w", err)
	}

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Chain", "Chain ID", "Block Height", "getLogs Cap")
	tbl.WithHeaderFormatter(headerFmt)
	tbl.AddRow(profile.Name, chainID.String(), height, profile.MaxGetLogsBlockRange)
	tbl.Print()
	return nil
}
