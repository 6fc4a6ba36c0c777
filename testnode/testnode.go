// Package testnode wraps the non-standard JSON-RPC methods exposed by local
// development nodes (anvil, Hardhat Network) for test setup: balance
// overrides, snapshot/revert, and account impersonation. Every method here
// is a pure passthrough — no local state, no retries beyond what the
// underlying transport already does.
package testnode

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/hexutil"
)

// Caller is the minimal transport surface testnode needs. Both
// transport.HTTPClient and transport.WSClient satisfy it.
type Caller interface {
	Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error)
}

// Flavor selects which method-name prefix a development node expects.
// Anvil and Hardhat Network implement the same test RPC surface under
// different namespaces.
type Flavor string

const (
	Anvil   Flavor = "anvil"
	Hardhat Flavor = "hardhat"
)

// Helper issues test-node-only RPC methods against a Caller.
type Helper struct {
	client Caller
	flavor Flavor
}

// New returns a Helper that issues methods namespaced for flavor.
func New(client Caller, flavor Flavor) *Helper {
	return &Helper{client: client, flavor: flavor}
}

func (h *Helper) method(name string) string {
	return fmt.Sprintf("%s_%s", h.flavor, name)
}

// SetBalance overrides an account's balance, in wei.
func (h *Helper) SetBalance(ctx context.Context, address string, wei *big.Int) error {
	_, err := h.client.Call(ctx, h.method("setBalance"), []interface{}{
		address,
		hexutil.Encode(wei.Bytes(), true),
	})
	if err != nil {
		return braneerr.TransportError(err)
	}
	return nil
}

// Snapshot takes a state snapshot and returns its id, usable with Revert.
func (h *Helper) Snapshot(ctx context.Context) (string, error) {
	result, err := h.client.Call(ctx, "evm_snapshot", nil)
	if err != nil {
		return "", braneerr.TransportError(err)
	}
	var id string
	if err := json.Unmarshal(result, &id); err != nil {
		return "", braneerr.SerializationError("failed to parse evm_snapshot result", err)
	}
	return id, nil
}

// Revert restores the state captured by Snapshot, consuming the snapshot id.
func (h *Helper) Revert(ctx context.Context, snapshotID string) (bool, error) {
	result, err := h.client.Call(ctx, "evm_revert", []interface{}{snapshotID})
	if err != nil {
		return false, braneerr.TransportError(err)
	}
	var reverted bool
	if err := json.Unmarshal(result, &reverted); err != nil {
		return false, braneerr.SerializationError("failed to parse evm_revert result", err)
	}
	return reverted, nil
}

// ImpersonateAccount makes the node accept eth_sendTransaction/eth_sign
// requests from address without a private key.
func (h *Helper) ImpersonateAccount(ctx context.Context, address string) error {
	_, err := h.client.Call(ctx, h.method("impersonateAccount"), []interface{}{address})
	if err != nil {
		return braneerr.TransportError(err)
	}
	return nil
}

// StopImpersonatingAccount undoes ImpersonateAccount.
func (h *Helper) StopImpersonatingAccount(ctx context.Context, address string) error {
	_, err := h.client.Call(ctx, h.method("stopImpersonatingAccount"), []interface{}{address})
	if err != nil {
		return braneerr.TransportError(err)
	}
	return nil
}

// Mine advances the chain by the given number of blocks immediately.
func (h *Helper) Mine(ctx context.Context, blocks uint64) error {
	_, err := h.client.Call(ctx, h.method("mine"), []interface{}{
		fmt.Sprintf("0x%x", blocks),
	})
	if err != nil {
		return braneerr.TransportError(err)
	}
	return nil
}

// SetNextBlockTimestamp sets the timestamp the next mined block will carry.
func (h *Helper) SetNextBlockTimestamp(ctx context.Context, unixSeconds uint64) error {
	_, err := h.client.Call(ctx, "evm_setNextBlockTimestamp", []interface{}{
		hexutil.Encode(big.NewInt(int64(unixSeconds)).Bytes(), true),
	})
	if err != nil {
		return braneerr.TransportError(err)
	}
	return nil
}
