// Package brane is the facade this module is named for: Reader, Signer,
// and Tester wrap the transport/tx/testnode packages behind a small
// surface so callers don't have to wire JSON-RPC method names and
// transaction envelopes by hand for the common cases. Anything the facade
// doesn't cover is still reachable directly through the packages it
// delegates to.
package brane

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/testnode"
	"github.com/branehq/brane/tx"
)

// Caller is the transport surface Reader and Signer need: a single
// request/response round trip. transport.HTTPClient and transport.WSClient
// both satisfy it.
type Caller interface {
	Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error)
}

// Reader is a read-only view over an Ethereum JSON-RPC endpoint.
//
// Contract:
//   - Every method issues exactly one RPC call (no implicit retries beyond
//     whatever the underlying Caller already does).
//   - Every method is safe for concurrent use if the underlying Caller is.
type Reader struct {
	client Caller
}

// NewReader wraps client for read-only use.
func NewReader(client Caller) *Reader {
	return &Reader{client: client}
}

// ChainID returns the connected node's chain id.
func (r *Reader) ChainID(ctx context.Context) (*big.Int, error) {
	var hex string
	if err := r.call(ctx, "eth_chainId", nil, &hex); err != nil {
		return nil, err
	}
	return decodeQuantity(hex)
}

// BlockNumber returns the current block height.
func (r *Reader) BlockNumber(ctx context.Context) (uint64, error) {
	var hex string
	if err := r.call(ctx, "eth_blockNumber", nil, &hex); err != nil {
		return 0, err
	}
	n, err := decodeQuantity(hex)
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GetBalance returns address's balance, in wei, at the given block tag
// ("latest", "pending", "earliest", or a hex block number).
func (r *Reader) GetBalance(ctx context.Context, address, block string) (*big.Int, error) {
	var hex string
	if err := r.call(ctx, "eth_getBalance", []interface{}{address, block}, &hex); err != nil {
		return nil, err
	}
	return decodeQuantity(hex)
}

// GetTransactionCount returns address's nonce at the given block tag.
func (r *Reader) GetTransactionCount(ctx context.Context, address, block string) (uint64, error) {
	var hex string
	if err := r.call(ctx, "eth_getTransactionCount", []interface{}{address, block}, &hex); err != nil {
		return 0, err
	}
	n, err := decodeQuantity(hex)
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Call performs an eth_call against callMsg (a JSON-RPC call object: at
// least "to", optionally "from"/"data"/"value"/"gas"/"gasPrice") at the
// given block tag, returning the raw return data. An RPC error carrying
// revert data is surfaced as a *braneerr.Error of Kind Revert rather than
// the raw RpcError.
func (r *Reader) Call(ctx context.Context, callMsg map[string]interface{}, block string) ([]byte, error) {
	var hex string
	if err := r.call(ctx, "eth_call", []interface{}{callMsg, block}, &hex); err != nil {
		return nil, braneerr.DecodeRevert(err)
	}
	return hexutil.Decode(hex)
}

// EstimateGas estimates the gas a transaction described by callMsg would
// consume. Like Call, a revert is surfaced as Kind Revert.
func (r *Reader) EstimateGas(ctx context.Context, callMsg map[string]interface{}) (uint64, error) {
	var hex string
	if err := r.call(ctx, "eth_estimateGas", []interface{}{callMsg}, &hex); err != nil {
		return 0, braneerr.DecodeRevert(err)
	}
	n, err := decodeQuantity(hex)
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GetTransactionReceipt returns the raw receipt JSON for txHash, or nil if
// the transaction isn't mined yet.
func (r *Reader) GetTransactionReceipt(ctx context.Context, txHash string) (json.RawMessage, error) {
	result, err := r.client.Call(ctx, "eth_getTransactionReceipt", []interface{}{txHash})
	if err != nil {
		return nil, wrapCallErr(err)
	}
	return result, nil
}

// GetLogs returns the raw eth_getLogs result for filter (a JSON-RPC filter
// object: "fromBlock", "toBlock", "address", "topics").
func (r *Reader) GetLogs(ctx context.Context, filter map[string]interface{}) (json.RawMessage, error) {
	result, err := r.client.Call(ctx, "eth_getLogs", []interface{}{filter})
	if err != nil {
		return nil, wrapCallErr(err)
	}
	return result, nil
}

func (r *Reader) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	result, err := r.client.Call(ctx, method, params)
	if err != nil {
		return wrapCallErr(err)
	}
	if err := json.Unmarshal(result, out); err != nil {
		return braneerr.SerializationError(fmt.Sprintf("failed to parse %s result", method), err)
	}
	return nil
}

// wrapCallErr normalizes a Caller error into the braneerr taxonomy. A
// Caller that already returns a *braneerr.Error (every transport in this
// module does) is passed through untouched so its Kind survives; anything
// else gets wrapped as a TransportError.
func wrapCallErr(err error) error {
	if _, ok := err.(*braneerr.Error); ok {
		return err
	}
	return braneerr.TransportError(err)
}

func decodeQuantity(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(trimHexPrefix(s), 16)
	if !ok {
		return nil, braneerr.SerializationError(fmt.Sprintf("invalid quantity %q", s), nil)
	}
	return n, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// Signer builds, signs, and broadcasts transactions against a connected
// node. It composes a Reader for the nonce/chain-id lookups it needs, a
// tx.Builder for assembly, and a tx.Signer for the actual signature.
//
// Contract:
//   - Send* methods fetch a fresh nonce via eth_getTransactionCount(pending)
//     before broadcasting; callers managing their own nonce sequencing
//     should use tx.Builder directly instead.
type Signer struct {
	reader  *Reader
	client  Caller
	signer  tx.Signer
	builder *tx.Builder
}

// NewSigner wraps client, signer, and chainID together for convenient
// send methods.
func NewSigner(client Caller, signer tx.Signer, chainID int64) *Signer {
	return &Signer{
		reader:  NewReader(client),
		client:  client,
		signer:  signer,
		builder: tx.NewBuilder(chainID),
	}
}

// Address returns the address this Signer signs for.
func (s *Signer) Address() common.Address {
	return s.signer.Address()
}

// SendDynamicFee builds, signs, and broadcasts an EIP-1559 transaction,
// fetching the next pending nonce automatically. It returns the
// transaction hash.
func (s *Signer) SendDynamicFee(
	ctx context.Context,
	tipCap, feeCap *big.Int,
	gasLimit uint64,
	to *common.Address,
	value *big.Int,
	data []byte,
	accessList tx.AccessList,
) (common.Hash, error) {
	nonce, err := s.reader.GetTransactionCount(ctx, s.signer.Address().Hex(), "pending")
	if err != nil {
		return common.Hash{}, err
	}

	dtx := s.builder.DynamicFee(nonce, tipCap, feeCap, gasLimit, to, value, data, accessList)
	env, err := tx.SignDynamicFee(s.signer, dtx)
	if err != nil {
		return common.Hash{}, err
	}
	return s.broadcast(ctx, env)
}

// SendLegacy builds, signs, and broadcasts a legacy transaction, fetching
// the next pending nonce automatically. It returns the transaction hash.
func (s *Signer) SendLegacy(
	ctx context.Context,
	gasPrice *big.Int,
	gasLimit uint64,
	to *common.Address,
	value *big.Int,
	data []byte,
) (common.Hash, error) {
	nonce, err := s.reader.GetTransactionCount(ctx, s.signer.Address().Hex(), "pending")
	if err != nil {
		return common.Hash{}, err
	}

	ltx := s.builder.Legacy(nonce, gasPrice, gasLimit, to, value, data)
	env, err := tx.SignLegacy(s.signer, ltx, s.builder.ChainID())
	if err != nil {
		return common.Hash{}, err
	}
	return s.broadcast(ctx, env)
}

func (s *Signer) broadcast(ctx context.Context, envelope []byte) (common.Hash, error) {
	var txHash string
	result, err := s.client.Call(ctx, "eth_sendRawTransaction", []interface{}{hexutil.Encode(envelope)})
	if err != nil {
		return common.Hash{}, braneerr.DecodeRevert(wrapCallErr(err))
	}
	if err := json.Unmarshal(result, &txHash); err != nil {
		return common.Hash{}, braneerr.SerializationError("failed to parse eth_sendRawTransaction result", err)
	}
	return common.HexToHash(txHash), nil
}

// Tester is a thin alias over testnode.Helper, kept here so callers wiring
// up a Reader/Signer pair for integration tests can reach snapshot/revert/
// impersonate helpers off the same import.
type Tester = testnode.Helper

// NewTester wraps client for test-node-only RPC methods.
func NewTester(client testnode.Caller, flavor testnode.Flavor) *Tester {
	return testnode.New(client, flavor)
}
