package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/transport/internal/ringbuffer"
	"github.com/branehq/brane/transport/internal/slottable"
	"github.com/branehq/brane/transport/metrics"
)

// Future is the handle returned by SendAsync: it resolves exactly once,
// either with a decoded result or with an error (RequestTimeout,
// ConnectionLost, an RpcError, or a codec error).
type Future struct {
	done chan struct{}
	res  json.RawMessage
	err  error
}

// Wait blocks the calling goroutine until the future resolves or ctx is
// cancelled. This is the only suspension point SendAsync's caller needs;
// nothing here runs on the I/O goroutine.
func (f *Future) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(res interface{}, err error) {
	if err == nil {
		if raw, ok := res.(json.RawMessage); ok {
			f.res = raw
		}
	} else {
		f.err = err
	}
	close(f.done)
}

// SendAsync allocates a slot, serializes and enqueues the request, arms the
// timeout, and returns immediately with a Future. A zero timeout uses the
// connection's configured default.
func (c *WSClient) SendAsync(method string, params []interface{}, timeout time.Duration) (*Future, error) {
	if c.connState() != metrics.StateConnected {
		return nil, braneerr.NotConnected()
	}

	id := c.idGen.Add(1)
	future := newFuture()
	c.hooks.OnRequestStarted(method)
	start := time.Now()

	if timeout <= 0 {
		timeout = c.cfg.DefaultTimeout
	}

	err := c.slots.Allocate(id, slottable.Handle{
		Method:    method,
		AllocedAt: start,
		Complete: func(result interface{}, callErr error) {
			if callErr != nil {
				if braneerr.Is(callErr, braneerr.KindRequestTimeout) {
					c.hooks.OnRequestTimeout(method)
				}
			} else {
				c.hooks.OnRequestCompleted(method, time.Since(start))
			}
			future.resolve(result, callErr)
		},
	})
	if err != nil {
		c.hooks.OnBackpressure(metrics.BackpressureSlotTable)
		return nil, err
	}

	payload, marshalErr := json.Marshal(newRequest(id, method, params))
	if marshalErr != nil {
		c.slots.Free(id)
		return nil, braneerr.SerializationError("marshal request", marshalErr)
	}

	if pushErr := c.ring.Push(ringbuffer.Item{Kind: ringbuffer.KindFrame, Payload: payload}); pushErr != nil {
		c.slots.Free(id)
		c.hooks.OnBackpressure(metrics.BackpressureRingBuffer)
		return nil, pushErr
	}

	c.armTimeout(id, timeout)
	return future, nil
}

func (c *WSClient) armTimeout(id int64, timeout time.Duration) {
	time.AfterFunc(timeout, func() {
		c.slots.Timeout(id)
	})
}

// Send drives the wait on the caller's own goroutine — never on the I/O
// goroutine — by blocking on the Future returned from SendAsync.
func (c *WSClient) Send(ctx context.Context, method string, params []interface{}, timeout time.Duration) (json.RawMessage, error) {
	future, err := c.SendAsync(method, params, timeout)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// Call sends a request with the connection's default timeout. It gives
// WSClient the same shape as HTTPClient.Call so callers that only need
// request/response semantics (not subscriptions) can treat either transport
// interchangeably.
func (c *WSClient) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	return c.Send(ctx, method, params, 0)
}

// SendAsyncBatch calls SendAsync once per request and returns one Future per
// request in request order. It stops at the first request that fails and
// returns that error with the futures issued so far (later entries are nil).
func (c *WSClient) SendAsyncBatch(methods []string, paramsList [][]interface{}, timeout time.Duration) ([]*Future, error) {
	futures := make([]*Future, len(methods))
	for i, m := range methods {
		f, err := c.SendAsync(m, paramsList[i], timeout)
		if err != nil {
			return futures, err
		}
		futures[i] = f
	}
	return futures, nil
}

// Subscribe issues an eth_subscribe-style call and binds the returned
// subscription id to a freshly registered Notification channel.
func (c *WSClient) Subscribe(ctx context.Context, method string, params []interface{}) (<-chan Notification, string, error) {
	result, err := c.Send(ctx, method, params, 0)
	if err != nil {
		return nil, "", err
	}

	var subID string
	if err := json.Unmarshal(result, &subID); err != nil {
		return nil, "", braneerr.SerializationError("parse subscription id", err)
	}

	return c.subs.register(subID), subID, nil
}

// Unsubscribe issues the matching un-subscription call and removes the
// local registry entry. Idempotent: unsubscribing an already-removed id
// succeeds without error.
func (c *WSClient) Unsubscribe(ctx context.Context, unsubscribeMethod, subID string) error {
	c.subs.unregister(subID)
	_, err := c.Send(ctx, unsubscribeMethod, []interface{}{subID}, 0)
	if err != nil {
		// Server-side unsubscribe errors are swallowed; the local
		// registry entry is already gone.
		return nil
	}
	return nil
}
