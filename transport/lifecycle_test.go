package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branehq/brane/braneerr"
)

func TestSendAsyncResolvesViaFuture(t *testing.T) {
	srv := newWSTestServer(t, func(t *testing.T, conn *websocket.Conn) {
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req Request
			require.NoError(t, json.Unmarshal(msg, &req))
			if err := writeJSONRPCResult(conn, req.ID, "0x2a"); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	c, err := NewWSClient(wsURL(t, srv), DefaultWSConfig())
	require.NoError(t, err)
	defer c.Close()

	future, err := c.SendAsync("eth_blockNumber", nil, 0)
	require.NoError(t, err)

	result, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `"0x2a"`, string(result))
}

func TestSendAsyncBatchResolvesInRequestOrder(t *testing.T) {
	srv := newWSTestServer(t, func(t *testing.T, conn *websocket.Conn) {
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req Request
			require.NoError(t, json.Unmarshal(msg, &req))
			if err := writeJSONRPCResult(conn, req.ID, req.Method); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	c, err := NewWSClient(wsURL(t, srv), DefaultWSConfig())
	require.NoError(t, err)
	defer c.Close()

	methods := []string{"eth_chainId", "eth_blockNumber", "eth_gasPrice"}
	futures, err := c.SendAsyncBatch(methods, make([][]interface{}, len(methods)), 0)
	require.NoError(t, err)

	for i, f := range futures {
		result, err := f.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `"`+methods[i]+`"`, string(result))
	}
}

func TestSendTimesOutWhenServerNeverReplies(t *testing.T) {
	srv := newWSTestServer(t, func(t *testing.T, conn *websocket.Conn) {
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	c, err := NewWSClient(wsURL(t, srv), DefaultWSConfig())
	require.NoError(t, err)
	defer c.Close()

	future, err := c.SendAsync("eth_call", nil, 50*time.Millisecond)
	require.NoError(t, err)

	_, err = future.Wait(context.Background())
	require.Error(t, err)
	assert.True(t, braneerr.Is(err, braneerr.KindRequestTimeout))
}

func TestSubscribeThenUnsubscribeClosesChannel(t *testing.T) {
	srv := newWSTestServer(t, func(t *testing.T, conn *websocket.Conn) {
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req Request
			require.NoError(t, json.Unmarshal(msg, &req))
			if req.Method == "eth_unsubscribe" {
				if err := writeJSONRPCResult(conn, req.ID, true); err != nil {
					return
				}
				continue
			}
			if err := writeJSONRPCResult(conn, req.ID, "0xsub1"); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	c, err := NewWSClient(wsURL(t, srv), DefaultWSConfig())
	require.NoError(t, err)
	defer c.Close()

	ch, subID, err := c.Subscribe(context.Background(), "eth_subscribe", []interface{}{"newHeads"})
	require.NoError(t, err)
	require.Equal(t, "0xsub1", subID)

	require.NoError(t, c.Unsubscribe(context.Background(), "eth_unsubscribe", subID))

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should close once unsubscribed")
	case <-time.After(2 * time.Second):
		t.Fatal("channel never closed after Unsubscribe")
	}
}
