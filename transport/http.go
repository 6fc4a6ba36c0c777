package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/transport/metrics"
)

// HTTPClient is the JSON-RPC over HTTP transport (C11): one POST per call,
// a shared connection pool, and round-robin failover across endpoints with
// circuit-breaker health tracking. No slot table is needed — the HTTP
// response is naturally correlated to its request.
type HTTPClient struct {
	endpoints []string
	health    HealthTracker
	client    *http.Client
	requestID atomic.Int64
	hooks     metrics.Hooks

	mu      sync.Mutex
	nextIdx int
}

// HTTPOption configures an HTTPClient at construction.
type HTTPOption func(*HTTPClient)

func WithHealthTracker(h HealthTracker) HTTPOption {
	return func(c *HTTPClient) { c.health = h }
}

func WithHooks(h metrics.Hooks) HTTPOption {
	return func(c *HTTPClient) { c.hooks = h }
}

// NewHTTPClient builds an HTTPClient over the given endpoints with the
// given connect/read timeout applied to every request.
func NewHTTPClient(endpoints []string, timeout time.Duration, opts ...HTTPOption) (*HTTPClient, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("transport: at least one RPC endpoint is required")
	}
	c := &HTTPClient{
		endpoints: endpoints,
		health:    NewCircuitBreakerHealthTracker(),
		client:    &http.Client{Timeout: timeout},
		hooks:     metrics.NoOp{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the underlying connection pool.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// Call executes one JSON-RPC request, trying each endpoint in round-robin,
// health-aware order until one succeeds or all are exhausted.
func (c *HTTPClient) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	c.hooks.OnRequestStarted(method)
	start := time.Now()

	attempted := make(map[string]bool, len(c.endpoints))
	var lastErr error

	for len(attempted) < len(c.endpoints) {
		endpoint := c.nextHealthyEndpoint(attempted)
		if endpoint == "" {
			break
		}
		attempted[endpoint] = true

		result, err := c.callEndpoint(ctx, endpoint, method, params)
		if err == nil {
			c.hooks.OnRequestCompleted(method, time.Since(start))
			return result, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = braneerr.TransportError(fmt.Errorf("no endpoints configured"))
	}
	return nil, lastErr
}

// CallBatch sends one request per item to a single chosen endpoint (HTTP
// batch requests are a wire-level array of the same frame shape used for
// single calls); results preserve request order.
func (c *HTTPClient) CallBatch(ctx context.Context, methods []string, paramsList [][]interface{}) ([]json.RawMessage, error) {
	if len(methods) != len(paramsList) {
		return nil, braneerr.SerializationError("CallBatch: method/params count mismatch", nil)
	}
	if len(methods) == 0 {
		return []json.RawMessage{}, nil
	}

	attempted := make(map[string]bool, len(c.endpoints))
	var lastErr error

	for len(attempted) < len(c.endpoints) {
		endpoint := c.nextHealthyEndpoint(attempted)
		if endpoint == "" {
			break
		}
		attempted[endpoint] = true

		results, err := c.callBatchEndpoint(ctx, endpoint, methods, paramsList)
		if err == nil {
			return results, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = braneerr.TransportError(fmt.Errorf("no endpoints configured"))
	}
	return nil, lastErr
}

func (c *HTTPClient) callEndpoint(ctx context.Context, endpoint, method string, params []interface{}) (json.RawMessage, error) {
	start := time.Now()
	id := c.requestID.Add(1)

	body, err := json.Marshal(newRequest(id, method, params))
	if err != nil {
		return nil, braneerr.SerializationError("marshal request", err)
	}

	respBody, status, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.health.RecordFailure(endpoint, err)
		return nil, braneerr.TransportError(err)
	}
	if status != http.StatusOK {
		err := fmt.Errorf("HTTP %d", status)
		c.health.RecordFailure(endpoint, err)
		return nil, braneerr.TransportError(err)
	}

	frame, err := decodeFrame(respBody)
	if err != nil {
		c.health.RecordFailure(endpoint, err)
		return nil, err
	}
	if frame.kind != frameResponse {
		err := braneerr.ProtocolError("HTTP response was not a JSON-RPC response frame")
		c.health.RecordFailure(endpoint, err)
		return nil, err
	}
	if frame.response.Err != nil {
		rpcErr := braneerr.RpcError(int64(frame.response.Err.Code), frame.response.Err.Message, frame.response.Err.Data)
		c.health.RecordFailure(endpoint, rpcErr)
		return nil, rpcErr
	}

	c.health.RecordSuccess(endpoint, time.Since(start).Milliseconds())
	return frame.response.Result, nil
}

func (c *HTTPClient) callBatchEndpoint(ctx context.Context, endpoint string, methods []string, paramsList [][]interface{}) ([]json.RawMessage, error) {
	start := time.Now()

	reqs := make([]Request, len(methods))
	for i, m := range methods {
		id := c.requestID.Add(1)
		reqs[i] = newRequest(id, m, paramsList[i])
	}

	body, err := json.Marshal(reqs)
	if err != nil {
		return nil, braneerr.SerializationError("marshal batch request", err)
	}

	respBody, status, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.health.RecordFailure(endpoint, err)
		return nil, braneerr.TransportError(err)
	}
	if status != http.StatusOK {
		err := fmt.Errorf("HTTP %d", status)
		c.health.RecordFailure(endpoint, err)
		return nil, braneerr.TransportError(err)
	}

	var raw []rawFrame
	if err := json.Unmarshal(respBody, &raw); err != nil {
		parseErr := braneerr.ProtocolError("malformed batch response: " + err.Error())
		c.health.RecordFailure(endpoint, parseErr)
		return nil, parseErr
	}

	byID := make(map[int64]rawFrame, len(raw))
	for _, f := range raw {
		if f.ID != nil {
			byID[*f.ID] = f
		}
	}

	results := make([]json.RawMessage, len(reqs))
	for i, req := range reqs {
		f, ok := byID[req.ID]
		if !ok || f.Error != nil {
			results[i] = nil
			continue
		}
		results[i] = f.Result
	}

	c.health.RecordSuccess(endpoint, time.Since(start).Milliseconds())
	return results, nil
}

func (c *HTTPClient) post(ctx context.Context, endpoint string, body []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBody, resp.StatusCode, nil
}

// nextHealthyEndpoint picks the next unattempted, healthy endpoint in
// round-robin order, falling back to any unattempted endpoint if none are
// currently healthy.
func (c *HTTPClient) nextHealthyEndpoint(attempted map[string]bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := 0; i < len(c.endpoints); i++ {
		idx := (c.nextIdx + i) % len(c.endpoints)
		endpoint := c.endpoints[idx]
		if attempted[endpoint] {
			continue
		}
		if c.health.IsHealthy(endpoint) {
			c.nextIdx = (idx + 1) % len(c.endpoints)
			return endpoint
		}
	}
	for _, endpoint := range c.endpoints {
		if !attempted[endpoint] {
			return endpoint
		}
	}
	return ""
}
