package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/branehq/brane/braneerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRPCServer(t *testing.T, handler func(req Request) (interface{}, *RPCError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, rpcErr := handler(req)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestHTTPCallHappyPath(t *testing.T) {
	srv := jsonRPCServer(t, func(req Request) (interface{}, *RPCError) {
		assert.Equal(t, "eth_chainId", req.Method)
		return "0x1", nil
	})
	defer srv.Close()

	c, err := NewHTTPClient([]string{srv.URL}, 2*time.Second)
	require.NoError(t, err)
	defer c.Close()

	result, err := c.Call(context.Background(), "eth_chainId", nil)
	require.NoError(t, err)
	assert.Equal(t, `"0x1"`, string(result))
}

func TestHTTPCallSurfacesRPCError(t *testing.T) {
	srv := jsonRPCServer(t, func(req Request) (interface{}, *RPCError) {
		return nil, &RPCError{Code: 3, Message: "execution reverted"}
	})
	defer srv.Close()

	c, err := NewHTTPClient([]string{srv.URL}, 2*time.Second)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Call(context.Background(), "eth_call", nil)
	require.Error(t, err)
	assert.True(t, braneerr.Is(err, braneerr.KindRpcError))
}

func TestHTTPCallFailsOverToSecondEndpoint(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	good := jsonRPCServer(t, func(req Request) (interface{}, *RPCError) {
		return "0x2a", nil
	})
	defer good.Close()

	c, err := NewHTTPClient([]string{bad.URL, good.URL}, 2*time.Second)
	require.NoError(t, err)
	defer c.Close()

	result, err := c.Call(context.Background(), "eth_blockNumber", nil)
	require.NoError(t, err)
	assert.Equal(t, `"0x2a"`, string(result))
}

func TestHTTPCallBatchPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqs []Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqs))

		resp := make([]map[string]interface{}, len(reqs))
		for i, req := range reqs {
			resp[i] = map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  fmt.Sprintf("0x%d", i),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c, err := NewHTTPClient([]string{srv.URL}, 2*time.Second)
	require.NoError(t, err)
	defer c.Close()

	results, err := c.CallBatch(context.Background(),
		[]string{"eth_chainId", "eth_blockNumber", "eth_gasPrice"},
		[][]interface{}{nil, nil, nil},
	)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, `"0x0"`, string(results[0]))
	assert.Equal(t, `"0x1"`, string(results[1]))
	assert.Equal(t, `"0x2"`, string(results[2]))
}

func TestHealthTrackerCircuitBreaker(t *testing.T) {
	h := NewCircuitBreakerHealthTracker()
	assert.True(t, h.IsHealthy("a"))

	h.RecordFailure("a", assertError{})
	h.RecordFailure("a", assertError{})
	h.RecordFailure("a", assertError{})
	assert.False(t, h.IsHealthy("a"))

	h.Reset("a")
	assert.True(t, h.IsHealthy("a"))
}

type assertError struct{}

func (assertError) Error() string { return "boom" }
