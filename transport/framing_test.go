package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branehq/brane/braneerr"
)

func TestDecodeFrameResponse(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":7,"result":"0x1"}`)
	frame, err := decodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, frameResponse, frame.kind)
	assert.Equal(t, int64(7), frame.response.ID)
	assert.Equal(t, `"0x1"`, string(frame.response.Result))
	assert.Nil(t, frame.response.Err)
}

func TestDecodeFrameResponseWithError(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":7,"error":{"code":3,"message":"execution reverted","data":"0xdeadbeef"}}`)
	frame, err := decodeFrame(raw)
	require.NoError(t, err)
	require.NotNil(t, frame.response.Err)
	assert.Equal(t, int64(3), frame.response.Err.Code)
	assert.Equal(t, "execution reverted", frame.response.Err.Message)
	assert.Equal(t, `"0xdeadbeef"`, string(frame.response.Err.Data))
}

func TestDecodeFrameNotification(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","method":"eth_subscription","params":{"subscription":"0xabc","result":{"number":"0x1"}}}`)
	frame, err := decodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, frameNotification, frame.kind)
	assert.Equal(t, "0xabc", frame.subID)
	assert.JSONEq(t, `{"number":"0x1"}`, string(frame.notifPayload))
}

func TestDecodeFrameMalformedJSON(t *testing.T) {
	_, err := decodeFrame([]byte(`{not json`))
	require.Error(t, err)
	assert.True(t, braneerr.Is(err, braneerr.KindProtocolError))
}

func TestDecodeFrameUnrecognizedShape(t *testing.T) {
	_, err := decodeFrame([]byte(`{"jsonrpc":"2.0","foo":"bar"}`))
	require.Error(t, err)
	assert.True(t, braneerr.Is(err, braneerr.KindProtocolError))
}

func TestDecodeFrameMalformedNotificationParams(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","method":"eth_subscription","params":"not-an-object"}`)
	_, err := decodeFrame(raw)
	require.Error(t, err)
	assert.True(t, braneerr.Is(err, braneerr.KindProtocolError))
}
