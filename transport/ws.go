// Package transport implements the WebSocket and HTTP JSON-RPC transports:
// the request correlator, outbound event queue, connection state machine,
// subscription registry, and retry policy described for the Ethereum
// JSON-RPC client core.
package transport

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/transport/internal/ringbuffer"
	"github.com/branehq/brane/transport/internal/slottable"
	"github.com/branehq/brane/transport/metrics"
)

// WSConfig holds the configuration keys recognized by the WebSocket
// transport.
type WSConfig struct {
	SlotCapacity       int           // power of two, default 65536
	RingCapacity       int           // power of two, default 4096
	WaitStrategy       ringbuffer.WaitStrategy
	WriteIdle          time.Duration // 0 disables
	ReadIdle           time.Duration // 0 disables
	DefaultTimeout     time.Duration
	BaseReconnectDelay time.Duration
	MaxReconnectDelay  time.Duration
	Hooks              metrics.Hooks
}

// DefaultWSConfig returns the spec's documented defaults.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		SlotCapacity:       65536,
		RingCapacity:       4096,
		WaitStrategy:       ringbuffer.Yielding{},
		WriteIdle:          30 * time.Second,
		ReadIdle:           60 * time.Second,
		DefaultTimeout:     10 * time.Second,
		BaseReconnectDelay: 500 * time.Millisecond,
		MaxReconnectDelay:  30 * time.Second,
		Hooks:              metrics.NoOp{},
	}
}

// WSClient is the WebSocket JSON-RPC transport: one I/O goroutine pair
// (reader, writer) owns the socket; callers never touch it directly.
type WSClient struct {
	url    string
	dialer *websocket.Dialer
	cfg    WSConfig

	connMu     sync.Mutex
	conn       *websocket.Conn
	generation atomic.Int64 // bumped on every successful dial

	state   atomic.Int32 // metrics.ConnState
	slots   *slottable.Table
	ring    *ringbuffer.Buffer
	subs    *subscriptionRegistry
	idGen   atomic.Int64
	hooks   metrics.Hooks
	closeCh chan struct{}
	closed  atomic.Bool

	lastReadAt  atomic.Int64 // unix nano
	lastWriteAt atomic.Int64 // unix nano

	reconnecting atomic.Bool
}

// NewWSClient dials url and starts the I/O goroutines.
func NewWSClient(url string, cfg WSConfig) (*WSClient, error) {
	if cfg.SlotCapacity == 0 {
		def := DefaultWSConfig()
		cfg.SlotCapacity = def.SlotCapacity
		cfg.RingCapacity = def.RingCapacity
		cfg.WaitStrategy = def.WaitStrategy
		cfg.WriteIdle = def.WriteIdle
		cfg.ReadIdle = def.ReadIdle
		cfg.DefaultTimeout = def.DefaultTimeout
		cfg.BaseReconnectDelay = def.BaseReconnectDelay
		cfg.MaxReconnectDelay = def.MaxReconnectDelay
	}
	if cfg.Hooks == nil {
		cfg.Hooks = metrics.NoOp{}
	}

	c := &WSClient{
		url:     url,
		dialer:  websocket.DefaultDialer,
		cfg:     cfg,
		slots:   slottable.NewTable(cfg.SlotCapacity),
		ring:    ringbuffer.New(cfg.RingCapacity, cfg.WaitStrategy),
		subs:    newSubscriptionRegistry(),
		hooks:   cfg.Hooks,
		closeCh: make(chan struct{}),
	}
	c.ring.OnSaturation(func(fillRatio float64) { c.hooks.OnRingBufferSaturation(fillRatio) })
	c.setState(metrics.StateConnecting)

	conn, gen, err := c.dial()
	if err != nil {
		return nil, braneerr.TransportError(err)
	}
	c.setState(metrics.StateConnected)

	go c.readLoop(conn, gen)
	go c.writeLoop()
	go c.idleMonitor()

	return c, nil
}

func (c *WSClient) connState() metrics.ConnState {
	return metrics.ConnState(c.state.Load())
}

func (c *WSClient) setState(s metrics.ConnState) {
	from := metrics.ConnState(c.state.Swap(int32(s)))
	if from != s {
		c.hooks.OnConnectionStateChange(from, s)
	}
}

// dial opens a new socket and installs it as the current connection,
// closing whatever connection it replaces. The socket is exclusively owned
// by this state machine at any moment: dial never leaves two live sockets
// outstanding, even across a read_idle-triggered reconnect where the old
// socket was never actually broken. It returns the new connection and the
// generation it was installed under, which I/O goroutines spawned against
// it must present back to onIOError.
func (c *WSClient) dial() (*websocket.Conn, int64, error) {
	conn, _, err := c.dialer.Dial(c.url, nil)
	if err != nil {
		return nil, 0, err
	}
	c.connMu.Lock()
	old := c.conn
	c.conn = conn
	c.connMu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	gen := c.generation.Add(1)

	now := time.Now().UnixNano()
	c.lastReadAt.Store(now)
	c.lastWriteAt.Store(now)
	return conn, gen, nil
}

func (c *WSClient) currentConn() *websocket.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn
}

// currentConnGen returns the live connection together with the generation
// it was dialed under, read as one atomic snapshot so a caller can tell
// whether a later I/O failure against it is stale.
func (c *WSClient) currentConnGen() (*websocket.Conn, int64) {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	return conn, c.generation.Load()
}

// onIOError reports an I/O failure from a goroutine that was spawned
// against generation gen. If the live connection has since moved past gen,
// the failure came from a connection this state machine already retired
// (dial closed it, or a fresher reconnect replaced it) and must not
// re-trigger reconnection: the slots and subscriptions it would fail are
// already serving the current connection.
func (c *WSClient) onIOError(gen int64) {
	if c.generation.Load() != gen {
		return
	}
	c.triggerReconnect()
}

// Close transitions to Closed (terminal) and releases the socket. Idempotent.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.closeCh)
	c.setState(metrics.StateClosed)
	c.ring.Close()

	conn := c.currentConn()
	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return conn.Close()
	}
	return nil
}

// triggerReconnect moves Connected -> Reconnecting exactly once per episode,
// failing every pending slot and marking every subscription stale, then
// runs the backoff-and-redial loop in the background.
func (c *WSClient) triggerReconnect() {
	if c.closed.Load() {
		return
	}
	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	c.setState(metrics.StateReconnecting)
	c.slots.FailAllWithConnectionLost()
	c.subs.markAllStale()

	go c.reconnectLoop()
}

func (c *WSClient) reconnectLoop() {
	defer c.reconnecting.Store(false)

	delay := c.cfg.BaseReconnectDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	maxDelay := c.cfg.MaxReconnectDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	for {
		select {
		case <-c.closeCh:
			return
		case <-time.After(jitter(delay)):
			conn, gen, err := c.dial()
			if err != nil {
				delay *= 2
				if delay > maxDelay {
					delay = maxDelay
				}
				continue
			}
			c.setState(metrics.StateConnected)
			go c.readLoop(conn, gen)
			return
		}
	}
}

func jitter(d time.Duration) time.Duration {
	return d + time.Duration(rand.Int63n(int64(d)/4+1))
}

// readLoop owns conn for its entire lifetime: gorilla/websocket allows only
// one reader per connection, and a new readLoop is spawned per generation
// by dial's caller rather than this loop refetching the current connection
// mid-read. gen lets onIOError tell a genuine break in conn apart from conn
// having already been retired out from under this goroutine.
func (c *WSClient) readLoop(conn *websocket.Conn, gen int64) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.onIOError(gen)
			return
		}
		c.lastReadAt.Store(time.Now().UnixNano())

		frame, err := decodeFrame(msg)
		if err != nil {
			// Malformed single-frame input is skipped; the connection is
			// kept alive.
			continue
		}

		switch frame.kind {
		case frameResponse:
			var result interface{}
			var callErr error
			if frame.response.Err != nil {
				callErr = braneerr.RpcError(int64(frame.response.Err.Code), frame.response.Err.Message, frame.response.Err.Data)
			} else {
				result = frame.response.Result
			}
			c.slots.Complete(frame.response.ID, result, callErr)
		case frameNotification:
			c.subs.deliver(frame.subID, frame.notifPayload)
		}

		select {
		case <-c.closeCh:
			return
		default:
		}
	}
}

// writeLoop is spawned once and outlives every reconnect: it re-reads the
// current connection each iteration instead of being respawned per
// generation, since gorilla/websocket only forbids concurrent writers on
// the same conn, not a writer that outlives one.
func (c *WSClient) writeLoop() {
	for {
		item, ok := c.ring.Pop()
		if !ok {
			return
		}
		conn, gen := c.currentConnGen()
		if conn == nil {
			return
		}

		switch item.Kind {
		case ringbuffer.KindFrame:
			if err := conn.WriteMessage(websocket.TextMessage, item.Payload); err != nil {
				c.onIOError(gen)
				continue
			}
		case ringbuffer.KindPing:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.onIOError(gen)
				continue
			}
		case ringbuffer.KindClose:
			return
		}
		c.lastWriteAt.Store(time.Now().UnixNano())

		select {
		case <-c.closeCh:
			return
		default:
		}
	}
}

// idleMonitor enforces the two idle timeouts: write_idle triggers an
// outbound ping, read_idle treats silence as a broken connection.
func (c *WSClient) idleMonitor() {
	tick := c.cfg.WriteIdle
	if c.cfg.ReadIdle > 0 && (tick == 0 || c.cfg.ReadIdle < tick) {
		tick = c.cfg.ReadIdle
	}
	if tick <= 0 {
		return
	}
	interval := tick / 4
	if interval <= 0 {
		interval = tick
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closeCh:
			return
		case <-ticker.C:
			now := time.Now().UnixNano()
			if c.cfg.WriteIdle > 0 && time.Duration(now-c.lastWriteAt.Load()) >= c.cfg.WriteIdle {
				_ = c.ring.Push(ringbuffer.Item{Kind: ringbuffer.KindPing})
			}
			if c.cfg.ReadIdle > 0 && time.Duration(now-c.lastReadAt.Load()) >= c.cfg.ReadIdle {
				c.triggerReconnect()
			}
		}
	}
}
