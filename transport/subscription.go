package transport

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

// Notification is one delivery to a subscription consumer: either a decoded
// eth_subscription result, or — exactly once, as the final delivery before
// the channel closes — a lost-connection sentinel (spec.md §5.5: prior
// subscriptions are never silently replayed across a reconnect).
type Notification struct {
	Result json.RawMessage
	Lost   bool
}

// subscription pairs the channel a consumer reads from with an inbox only
// the registry writes to. A single worker goroutine drains the inbox into
// the channel, so deliveries for this subscription reach the consumer in
// the order the wire produced them; nothing about a slow consumer or
// scheduler timing can reorder them, since there is exactly one goroutine
// moving items from inbox to ch at any moment.
type subscription struct {
	ch          chan Notification
	inbox       chan Notification
	inboxClosed atomic.Bool
}

func newSubscription() *subscription {
	sub := &subscription{
		ch:    make(chan Notification, 256),
		inbox: make(chan Notification, 256),
	}
	go sub.run()
	return sub
}

// run is the per-subscription ordered delivery worker: it is the only
// writer of ch, so sends onto ch preserve inbox's FIFO order regardless of
// how deliver or markAllStale happen to be scheduled.
func (s *subscription) run() {
	defer close(s.ch)
	for n := range s.inbox {
		select {
		case s.ch <- n:
		default:
		}
	}
}

// closeInbox closes inbox exactly once, letting run drain whatever is
// already queued before it closes ch.
func (s *subscription) closeInbox() {
	if s.inboxClosed.CompareAndSwap(false, true) {
		close(s.inbox)
	}
}

// subscriptionRegistry binds server-assigned subscription ids to consumer
// channels. Delivery never happens on the calling (I/O) goroutine: deliver
// only enqueues onto the subscription's inbox, so a slow consumer can never
// stall the reader.
type subscriptionRegistry struct {
	mu   sync.Mutex
	subs map[string]*subscription
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{
		subs: make(map[string]*subscription),
	}
}

// register creates (or replaces) the channel for subID, with a buffer sized
// to absorb a reasonable burst; a full channel means the consumer dropped
// behind, and its notification is discarded rather than blocking dispatch.
func (r *subscriptionRegistry) register(subID string) <-chan Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := newSubscription()
	r.subs[subID] = sub
	return sub.ch
}

// deliver enqueues result onto subID's inbox without blocking the I/O
// goroutine calling it. Unknown subscription ids are silently ignored
// (server closed it, or it was never ours).
func (r *subscriptionRegistry) deliver(subID string, result json.RawMessage) {
	r.mu.Lock()
	sub, ok := r.subs[subID]
	r.mu.Unlock()
	if !ok {
		return
	}
	select {
	case sub.inbox <- Notification{Result: result}:
	default:
	}
}

// unregister removes subID's subscription and retires its inbox, letting
// the delivery worker finish draining whatever was already queued before it
// closes the consumer-facing channel. Idempotent: a second call for the
// same id is a no-op, matching unsubscribe semantics.
func (r *subscriptionRegistry) unregister(subID string) {
	r.mu.Lock()
	sub, ok := r.subs[subID]
	if ok {
		delete(r.subs, subID)
	}
	r.mu.Unlock()
	if ok {
		sub.closeInbox()
	}
}

// markAllStale delivers the lost-connection sentinel to every registered
// subscription, then retires each inbox and clears the registry. Called on
// the Connected -> Reconnecting transition; per spec.md §4.7, subscriptions
// are never automatically re-established, so every consumer must resubscribe.
func (r *subscriptionRegistry) markAllStale() {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]*subscription)
	r.mu.Unlock()

	for _, sub := range subs {
		sub := sub
		select {
		case sub.inbox <- Notification{Lost: true}:
			sub.closeInbox()
		default:
			// Consumer is backed up; deliver the sentinel without blocking
			// the reconnect path and close once it lands.
			go func() {
				sub.inbox <- Notification{Lost: true}
				sub.closeInbox()
			}()
		}
	}
}
