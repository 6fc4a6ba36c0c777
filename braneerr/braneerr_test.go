package braneerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStringsAreStable(t *testing.T) {
	assert.Equal(t, "TooManyInFlight", KindTooManyInFlight.String())
	assert.Equal(t, "Eip712::CyclicDependency", KindEip712CyclicDependency.String())
	assert.Equal(t, "Revert", KindRevert.String())
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := TooManyInFlight()
	assert.True(t, errors.Is(err, TooManyInFlight()))
	assert.False(t, errors.Is(err, RequestTimeout()))
}

func TestIsHelperUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("dial: %w", ConnectionLost())
	assert.True(t, Is(wrapped, KindConnectionLost))
	assert.False(t, Is(wrapped, KindRequestTimeout))
}

func TestRpcErrorCarriesPayload(t *testing.T) {
	err := RpcError(3, "execution reverted", []byte{0xde, 0xad})
	require.Equal(t, KindRpcError, err.Kind)
	assert.Equal(t, int64(3), err.Code)
	assert.Contains(t, err.Error(), "execution reverted")
}

func TestRevertWithAndWithoutReason(t *testing.T) {
	reason := "insufficient balance"
	withReason := Revert(&reason, nil)
	assert.Contains(t, withReason.Error(), "insufficient balance")

	withoutReason := Revert(nil, []byte{0x01, 0x02, 0x03})
	assert.Contains(t, withoutReason.Error(), "3 bytes")
}

func TestEip712VariantsCarryContext(t *testing.T) {
	unknown := Eip712UnknownType("Ghost")
	assert.Equal(t, "Ghost", unknown.TypeName)

	invalid := Eip712InvalidValue("uint8", "value exceeds 8 bits")
	assert.Equal(t, "uint8", invalid.TypeName)
	assert.Equal(t, "value exceeds 8 bits", invalid.Reason)
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := TransportError(cause)
	assert.ErrorIs(t, err, cause)
}

// standardRevertHex is `revert("boom")` encoded as the Error(string)
// selector followed by its ABI-encoded argument.
const standardRevertHex = "08c379a000000000000000000000000000000000000000000000000000000000000000200000000000000000000000000000000000000000000000000000000000000004626f6f6d00000000000000000000000000000000000000000000000000000000"

func TestDecodeRevertDecodesStandardSelector(t *testing.T) {
	data, _ := json.Marshal("0x" + standardRevertHex)
	err := DecodeRevert(RpcError(3, "execution reverted", data))

	require.Equal(t, KindRevert, err.(*Error).Kind)
	assert.True(t, err.(*Error).HasRevertReason)
	assert.Equal(t, "boom", err.(*Error).RevertReason)
}

func TestDecodeRevertWithoutSelectorKeepsRawData(t *testing.T) {
	data, _ := json.Marshal("0xdeadbeef")
	err := DecodeRevert(RpcError(3, "execution reverted", data))

	e := err.(*Error)
	require.Equal(t, KindRevert, e.Kind)
	assert.False(t, e.HasRevertReason)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, e.Data)
}

func TestDecodeRevertLeavesNonRevertErrorsAlone(t *testing.T) {
	original := RpcError(-32602, "invalid params", nil)
	assert.Same(t, original, DecodeRevert(original))

	connLost := ConnectionLost()
	assert.Same(t, connLost, DecodeRevert(connLost))
}

func TestPropagationClassification(t *testing.T) {
	assert.Equal(t, PropagationLocal, KindConnectionLost.Propagation())
	assert.Equal(t, PropagationSurfaced, KindTooManyInFlight.Propagation())
	assert.Equal(t, PropagationSurfaced, KindRequestTimeout.Propagation())
}
