package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/branehq/brane"
	"github.com/branehq/brane/ecdsasigner"
)

func sendCmd() *cobra.Command {
	var (
		to           string
		valueWei     string
		gasLimit     uint64
		tipGwei      float64
		feeCapGwei   float64
		legacy       bool
		gasPriceGwei float64
		yes          bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Sign and broadcast a transaction using a locally entered private key",
		Long: `Reads a private key from stdin without echoing it, builds a transaction
against the configured endpoint, prints a summary, and asks for confirmation
before broadcasting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(sendParams{
				to:           to,
				valueWei:     valueWei,
				gasLimit:     gasLimit,
				tipGwei:      tipGwei,
				feeCapGwei:   feeCapGwei,
				legacy:       legacy,
				gasPriceGwei: gasPriceGwei,
				skipConfirm:  yes,
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient address (required)")
	cmd.Flags().StringVar(&valueWei, "value", "0", "amount to send, in wei")
	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", 21000, "gas limit")
	cmd.Flags().Float64Var(&tipGwei, "tip-gwei", 1, "EIP-1559 priority fee, in gwei")
	cmd.Flags().Float64Var(&feeCapGwei, "fee-cap-gwei", 30, "EIP-1559 max fee per gas, in gwei")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "send a legacy transaction instead of EIP-1559")
	cmd.Flags().Float64Var(&gasPriceGwei, "gas-price-gwei", 20, "legacy gas price, in gwei (only with --legacy)")
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	cmd.MarkFlagRequired("to")

	return cmd
}

type sendParams struct {
	to           string
	valueWei     string
	gasLimit     uint64
	tipGwei      float64
	feeCapGwei   float64
	legacy       bool
	gasPriceGwei float64
	skipConfirm  bool
}

func runSend(p sendParams) error {
	privHex, err := readPrivateKeyHex()
	if err != nil {
		return err
	}
	privBytes, err := hex.DecodeString(strings.TrimPrefix(privHex, "0x"))
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}

	signer, err := ecdsasigner.New(privBytes)
	if err != nil {
		return fmt.Errorf("failed to derive signer: %w", err)
	}

	client, err := newHTTPClient()
	if err != nil {
		return err
	}
	profile, err := resolveChainProfile()
	if err != nil {
		return err
	}

	value, ok := new(big.Int).SetString(p.valueWei, 10)
	if !ok {
		return fmt.Errorf("invalid --value %q", p.valueWei)
	}
	to := common.HexToAddress(p.to)

	fmt.Printf("\nFrom:    %s\n", signer.Address().Hex())
	fmt.Printf("To:      %s\n", to.Hex())
	fmt.Printf("Value:   %s wei\n", value.String())
	fmt.Printf("Chain:   %s (id %s)\n", profile.Name, profile.ChainID.String())
	fmt.Printf("GasLimit %d\n\n", p.gasLimit)

	if !p.skipConfirm && !confirm("Broadcast this transaction?") {
		fmt.Println("aborted")
		return nil
	}

	s := brane.NewSigner(client, signer, profile.ChainID.Int64())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var txHash common.Hash
	if p.legacy {
		gasPrice := gweiToWei(p.gasPriceGwei)
		txHash, err = s.SendLegacy(ctx, gasPrice, p.gasLimit, &to, value, nil)
	} else {
		tip := gweiToWei(p.tipGwei)
		feeCap := gweiToWei(p.feeCapGwei)
		txHash, err = s.SendDynamicFee(ctx, tip, feeCap, p.gasLimit, &to, value, nil, nil)
	}
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	fmt.Printf("broadcast: %s\n", txHash.Hex())
	return nil
}

func gweiToWei(gwei float64) *big.Int {
	wei := new(big.Float).Mul(big.NewFloat(gwei), big.NewFloat(1e9))
	out, _ := wei.Int(nil)
	return out
}

// readPrivateKeyHex reads a hex-encoded private key from stdin without
// echoing it to the terminal.
func readPrivateKeyHex() (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Print("Private key: ")
	keyBytes, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	key := strings.TrimSpace(string(keyBytes))
	if key == "" {
		return "", fmt.Errorf("private key cannot be empty")
	}
	return key, nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}
