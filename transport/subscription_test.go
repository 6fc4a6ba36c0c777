package transport

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSubscriptionRegistryDeliversInOrder is the direct regression test for
// the ordering bug: notifications delivered in sequence from the reader
// must reach the consumer channel in that same sequence. Spawning one
// goroutine per notification (the old default) gave no such guarantee; the
// per-subscription worker does. n equals the consumer channel's buffer, since
// the test reads only after delivering and the worker discards notifications
// once that buffer is full.
func TestSubscriptionRegistryDeliversInOrder(t *testing.T) {
	r := newSubscriptionRegistry()
	ch := r.register("sub1")

	const n = 256
	for i := 0; i < n; i++ {
		r.deliver("sub1", json.RawMessage(fmt.Sprintf("%d", i)))
	}

	for i := 0; i < n; i++ {
		select {
		case notif := <-ch:
			require.Equal(t, fmt.Sprintf("%d", i), string(notif.Result))
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for notification %d", i)
		}
	}
}

func TestSubscriptionRegistryDeliverIgnoresUnknownID(t *testing.T) {
	r := newSubscriptionRegistry()
	ch := r.register("sub1")

	r.deliver("sub-does-not-exist", json.RawMessage(`1`))

	select {
	case notif := <-ch:
		t.Fatalf("unexpected delivery for unregistered id: %+v", notif)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriptionRegistryUnregisterClosesChannel(t *testing.T) {
	r := newSubscriptionRegistry()
	ch := r.register("sub1")

	r.unregister("sub1")

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel never closed after unregister")
	}
}

func TestSubscriptionRegistryUnregisterIsIdempotent(t *testing.T) {
	r := newSubscriptionRegistry()
	r.register("sub1")

	assert.NotPanics(t, func() {
		r.unregister("sub1")
		r.unregister("sub1")
	})
}

// TestSubscriptionRegistryMarkAllStalePreservesOrderBeforeSentinel proves
// the lost sentinel is delivered through the same per-subscription inbox as
// ordinary notifications, so a reconnect can never reorder it ahead of
// notifications the reader already handed off.
func TestSubscriptionRegistryMarkAllStalePreservesOrderBeforeSentinel(t *testing.T) {
	r := newSubscriptionRegistry()
	ch := r.register("sub1")

	r.deliver("sub1", json.RawMessage(`1`))
	r.deliver("sub1", json.RawMessage(`2`))
	r.markAllStale()

	n1 := <-ch
	assert.Equal(t, "1", string(n1.Result))
	n2 := <-ch
	assert.Equal(t, "2", string(n2.Result))
	lost := <-ch
	assert.True(t, lost.Lost)

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after the lost sentinel")
}

func TestSubscriptionRegistryMarkAllStaleClearsRegistry(t *testing.T) {
	r := newSubscriptionRegistry()
	r.register("sub1")
	r.register("sub2")

	r.markAllStale()

	r.mu.Lock()
	n := len(r.subs)
	r.mu.Unlock()
	assert.Equal(t, 0, n)
}
