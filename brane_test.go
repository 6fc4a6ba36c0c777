package brane

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"testing"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/ecdsasigner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrivateKeyHex = "4c0883a69102937d6231471b5dbb1522d741beb41cdbd3d8a78f8e9e74d62aa"

type fakeCaller struct {
	responses map[string]json.RawMessage
	errs      map[string]error
	calls     []string
	lastTo    *common.Address
}

func (f *fakeCaller) Call(_ context.Context, method string, params []interface{}) (json.RawMessage, error) {
	f.calls = append(f.calls, method)
	if err, ok := f.errs[method]; ok {
		return nil, err
	}
	if resp, ok := f.responses[method]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("fakeCaller: no stubbed response for %s", method)
}

func quantityResponse(n uint64) json.RawMessage {
	b, _ := json.Marshal(fmt.Sprintf("0x%x", n))
	return b
}

func stringResponse(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func TestReaderChainID(t *testing.T) {
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_chainId": quantityResponse(1),
	}}
	r := NewReader(client)

	chainID, err := r.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), chainID)
}

func TestReaderBlockNumber(t *testing.T) {
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_blockNumber": quantityResponse(12345),
	}}
	r := NewReader(client)

	n, err := r.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), n)
}

func TestReaderGetBalance(t *testing.T) {
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_getBalance": quantityResponse(1_000_000_000_000_000_000),
	}}
	r := NewReader(client)

	bal, err := r.GetBalance(context.Background(), "0x1111111111111111111111111111111111111111", "latest")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000_000_000_000), bal)
}

func TestReaderGetTransactionCount(t *testing.T) {
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_getTransactionCount": quantityResponse(7),
	}}
	r := NewReader(client)

	n, err := r.GetTransactionCount(context.Background(), "0x1111111111111111111111111111111111111111", "pending")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
}

func TestReaderCallDecodesHexReturnData(t *testing.T) {
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_call": stringResponse("0xdeadbeef"),
	}}
	r := NewReader(client)

	out, err := r.Call(context.Background(), map[string]interface{}{"to": "0x1111111111111111111111111111111111111111"}, "latest")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", hex.EncodeToString(out))
}

func TestReaderEstimateGas(t *testing.T) {
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_estimateGas": quantityResponse(21000),
	}}
	r := NewReader(client)

	gas, err := r.EstimateGas(context.Background(), map[string]interface{}{"to": "0x1111111111111111111111111111111111111111"})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)
}

func TestReaderPropagatesTransportError(t *testing.T) {
	client := &fakeCaller{errs: map[string]error{
		"eth_chainId": assert.AnError,
	}}
	r := NewReader(client)

	_, err := r.ChainID(context.Background())
	require.Error(t, err)
	assert.True(t, braneerr.Is(err, braneerr.KindTransportError))
}

func TestReaderGetTransactionReceiptReturnsRawJSON(t *testing.T) {
	raw := json.RawMessage(`{"status":"0x1","blockNumber":"0x10"}`)
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_getTransactionReceipt": raw,
	}}
	r := NewReader(client)

	out, err := r.GetTransactionReceipt(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestReaderGetLogsReturnsRawJSON(t *testing.T) {
	raw := json.RawMessage(`[{"address":"0x1111111111111111111111111111111111111111"}]`)
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_getLogs": raw,
	}}
	r := NewReader(client)

	out, err := r.GetLogs(context.Background(), map[string]interface{}{"fromBlock": "0x0", "toBlock": "latest"})
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func newTestSigner(t *testing.T) *ecdsasigner.Signer {
	t.Helper()
	privBytes, err := hex.DecodeString(testPrivateKeyHex)
	require.NoError(t, err)
	s, err := ecdsasigner.New(privBytes)
	require.NoError(t, err)
	return s
}

func TestSignerSendLegacyFetchesNonceAndBroadcasts(t *testing.T) {
	txHash := "0x" + "11"
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_getTransactionCount": quantityResponse(3),
		"eth_sendRawTransaction":  stringResponse(txHash),
	}}
	signer := newTestSigner(t)
	s := NewSigner(client, signer, 1)

	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	hash, err := s.SendLegacy(context.Background(), big.NewInt(20_000_000_000), 21000, &to, big.NewInt(1), nil)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(txHash), hash)
	assert.Contains(t, client.calls, "eth_getTransactionCount")
	assert.Contains(t, client.calls, "eth_sendRawTransaction")
}

func TestSignerSendDynamicFeeFetchesNonceAndBroadcasts(t *testing.T) {
	txHash := "0x" + "22"
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_getTransactionCount": quantityResponse(5),
		"eth_sendRawTransaction":  stringResponse(txHash),
	}}
	signer := newTestSigner(t)
	s := NewSigner(client, signer, 1)

	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	hash, err := s.SendDynamicFee(context.Background(), big.NewInt(1_000_000_000), big.NewInt(20_000_000_000), 21000, &to, big.NewInt(1), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(txHash), hash)
}

func TestSignerAddressMatchesUnderlyingSigner(t *testing.T) {
	signer := newTestSigner(t)
	s := NewSigner(&fakeCaller{}, signer, 1)
	assert.Equal(t, signer.Address(), s.Address())
}

func TestSignerSendLegacyPropagatesNonceLookupError(t *testing.T) {
	client := &fakeCaller{errs: map[string]error{
		"eth_getTransactionCount": assert.AnError,
	}}
	signer := newTestSigner(t)
	s := NewSigner(client, signer, 1)

	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	_, err := s.SendLegacy(context.Background(), big.NewInt(1), 21000, &to, big.NewInt(0), nil)
	require.Error(t, err)
}

// standardRevertData is the wire encoding of `revert("boom")`: the
// Error(string) selector followed by the ABI-encoded reason string.
const standardRevertData = "08c379a000000000000000000000000000000000000000000000000000000000000000200000000000000000000000000000000000000000000000000000000000000004626f6f6d00000000000000000000000000000000000000000000000000000000"

func revertRPCError() error {
	data, _ := json.Marshal("0x" + standardRevertData)
	return braneerr.RpcError(3, "execution reverted", data)
}

func TestReaderCallSurfacesDecodedRevertReason(t *testing.T) {
	client := &fakeCaller{errs: map[string]error{
		"eth_call": revertRPCError(),
	}}
	r := NewReader(client)

	_, err := r.Call(context.Background(), map[string]interface{}{"to": "0x1111111111111111111111111111111111111111"}, "latest")
	require.Error(t, err)
	require.True(t, braneerr.Is(err, braneerr.KindRevert))

	var be *braneerr.Error
	require.ErrorAs(t, err, &be)
	assert.True(t, be.HasRevertReason)
	assert.Equal(t, "boom", be.RevertReason)
}

func TestReaderEstimateGasSurfacesRevertWithoutSelector(t *testing.T) {
	data, _ := json.Marshal("0xdeadbeef")
	client := &fakeCaller{errs: map[string]error{
		"eth_estimateGas": braneerr.RpcError(3, "execution reverted", data),
	}}
	r := NewReader(client)

	_, err := r.EstimateGas(context.Background(), map[string]interface{}{"to": "0x1111111111111111111111111111111111111111"})
	require.Error(t, err)
	require.True(t, braneerr.Is(err, braneerr.KindRevert))

	var be *braneerr.Error
	require.ErrorAs(t, err, &be)
	assert.False(t, be.HasRevertReason)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, be.Data)
}

func TestSignerBroadcastSurfacesDecodedRevertReason(t *testing.T) {
	client := &fakeCaller{responses: map[string]json.RawMessage{
		"eth_getTransactionCount": quantityResponse(0),
	}, errs: map[string]error{
		"eth_sendRawTransaction": revertRPCError(),
	}}
	signer := newTestSigner(t)
	s := NewSigner(client, signer, 1)

	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	_, err := s.SendLegacy(context.Background(), big.NewInt(1), 21000, &to, big.NewInt(0), nil)
	require.Error(t, err)
	require.True(t, braneerr.Is(err, braneerr.KindRevert))

	var be *braneerr.Error
	require.ErrorAs(t, err, &be)
	assert.True(t, be.HasRevertReason)
	assert.Equal(t, "boom", be.RevertReason)
}

func TestReaderRpcErrorWithoutDataIsNotRevert(t *testing.T) {
	client := &fakeCaller{errs: map[string]error{
		"eth_call": braneerr.RpcError(-32602, "invalid params", nil),
	}}
	r := NewReader(client)

	_, err := r.Call(context.Background(), map[string]interface{}{"to": "0x1111111111111111111111111111111111111111"}, "latest")
	require.Error(t, err)
	assert.True(t, braneerr.Is(err, braneerr.KindRpcError))
	assert.False(t, braneerr.Is(err, braneerr.KindRevert))
}
