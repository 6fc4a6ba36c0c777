// Package ringbuffer implements the bounded multi-producer single-consumer
// outbound event queue: many caller goroutines enqueue frames, one I/O
// goroutine drains them in FIFO order.
package ringbuffer

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/branehq/brane/braneerr"
)

// Item is one queued unit of work: an encoded frame to write, or a control
// message (ping, close, subscription-register).
type Item struct {
	Kind    ItemKind
	Payload []byte
}

type ItemKind int

const (
	KindFrame ItemKind = iota
	KindPing
	KindClose
	KindSubscriptionRegister
)

// WaitStrategy governs how the consumer waits for new items. Producers never
// wait: Push fails fast when the buffer is full. The zero value of every
// strategy is ready to use.
type WaitStrategy interface {
	// WaitForItem blocks (by whatever means the strategy implements) until
	// notified that the buffer may be non-empty, or until the ready channel
	// closes.
	WaitForItem(ready <-chan struct{})
	// Notify is a no-op in every strategy in this package, and Buffer does
	// not call it: a parked consumer is woken through the ready channel.
	Notify()
}

// BusySpin never parks; the consumer's goroutine spins checking the buffer.
// Reserved for dedicated-core deployments — burns a full CPU core.
type BusySpin struct{}

func (BusySpin) WaitForItem(ready <-chan struct{}) {}
func (BusySpin) Notify()                           {}

// Yielding spins but yields the scheduler slice between checks. This is the
// default: low latency without pinning a whole core.
type Yielding struct{}

func (Yielding) WaitForItem(ready <-chan struct{}) {
	runtime.Gosched()
}
func (Yielding) Notify() {}

// LiteBlocking parks the consumer goroutine on a channel after a short spin
// budget, trading a little latency for much lower idle CPU use.
type LiteBlocking struct {
	spins int
	n     int
}

func NewLiteBlocking(spinBudget int) *LiteBlocking {
	return &LiteBlocking{spins: spinBudget}
}

func (l *LiteBlocking) WaitForItem(ready <-chan struct{}) {
	if l.n < l.spins {
		l.n++
		runtime.Gosched()
		return
	}
	l.n = 0
	<-ready
}
func (l *LiteBlocking) Notify() {}

// Blocking parks the consumer on the ready channel immediately; lowest idle
// CPU, highest wake latency.
type Blocking struct{}

func (Blocking) WaitForItem(ready <-chan struct{}) {
	<-ready
}
func (Blocking) Notify() {}

// Buffer is the bounded MPSC ring. Capacity must be a power of two.
type Buffer struct {
	mu       sync.Mutex
	items    []Item
	head     int // next slot to read
	tail     int // next slot to write
	count    int
	mask     int
	strategy WaitStrategy
	ready    chan struct{}
	closed   atomic.Bool

	saturationHook func(fillRatio float64)
}

// New builds a Buffer with the given power-of-two capacity and wait
// strategy. A nil strategy defaults to Yielding, matching spec default.
func New(capacity int, strategy WaitStrategy) *Buffer {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("ringbuffer: capacity must be a power of two")
	}
	if strategy == nil {
		strategy = Yielding{}
	}
	return &Buffer{
		items:    make([]Item, capacity),
		mask:     capacity - 1,
		strategy: strategy,
		ready:    make(chan struct{}, 1),
	}
}

// OnSaturation installs a hook invoked on every successful Push with the
// buffer's fill ratio after the push (0.0 to 1.0).
func (b *Buffer) OnSaturation(hook func(fillRatio float64)) {
	b.mu.Lock()
	b.saturationHook = hook
	b.mu.Unlock()
}

// Push enqueues item, failing fast with braneerr.RingBufferSaturated() if
// the buffer is full. Producers never block.
func (b *Buffer) Push(item Item) error {
	b.mu.Lock()
	if b.count == len(b.items) {
		b.mu.Unlock()
		return braneerr.RingBufferSaturated()
	}
	b.items[b.tail] = item
	b.tail = (b.tail + 1) & b.mask
	b.count++
	fillRatio := float64(b.count) / float64(len(b.items))
	hook := b.saturationHook
	b.mu.Unlock()

	if hook != nil {
		hook(fillRatio)
	}
	b.wake()
	return nil
}

// Pop removes and returns the oldest item, waiting per the configured
// WaitStrategy when empty. It returns false if the buffer was closed via
// Close and drained.
func (b *Buffer) Pop() (Item, bool) {
	for {
		b.mu.Lock()
		if b.count > 0 {
			item := b.items[b.head]
			b.items[b.head] = Item{}
			b.head = (b.head + 1) & b.mask
			b.count--
			b.mu.Unlock()
			return item, true
		}
		closed := b.closed.Load()
		b.mu.Unlock()
		if closed {
			return Item{}, false
		}
		b.strategy.WaitForItem(b.ready)
	}
}

func (b *Buffer) wake() {
	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// Close marks the buffer closed: Pop drains whatever remains, then returns
// false instead of waiting forever.
func (b *Buffer) Close() {
	b.closed.Store(true)
	b.wake()
}

// Len reports the current item count, for diagnostics and tests.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
