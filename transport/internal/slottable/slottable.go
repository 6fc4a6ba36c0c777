// Package slottable implements the request correlator: a fixed-size,
// power-of-two array mapping in-flight request ids to response handles.
package slottable

import (
	"sync"
	"time"

	"github.com/branehq/brane/braneerr"
)

// Handle is the per-request completion sink. Complete is called exactly
// once per allocated slot, either with a decoded result/error or with
// braneerr.RequestTimeout()/braneerr.ConnectionLost() on the timeout and
// reconnect paths respectively.
type Handle struct {
	Method    string
	AllocedAt time.Time
	Complete  func(result interface{}, err error)
}

type slot struct {
	occupied bool
	id       int64
	handle   Handle
}

// Table is the fixed-size slot array. N must be a power of two; this is
// checked once at construction (a programmer error, not a runtime
// condition), so NewTable panics on a bad size rather than returning an error.
type Table struct {
	mu    sync.Mutex
	slots []slot
	mask  uint64

	lateResponses uint64
}

// NewTable builds a Table of capacity n, which must be a power of two.
func NewTable(n int) *Table {
	if n <= 0 || n&(n-1) != 0 {
		panic("slottable: capacity must be a power of two")
	}
	return &Table{
		slots: make([]slot, n),
		mask:  uint64(n - 1),
	}
}

func (t *Table) index(id int64) uint64 {
	return uint64(id) & t.mask
}

// Allocate reserves the slot for id. It fails fast with
// braneerr.TooManyInFlight() if the slot is already occupied — there is no
// blocking wait for a slot to free up.
func (t *Table) Allocate(id int64, h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.index(id)
	if t.slots[idx].occupied {
		return braneerr.TooManyInFlight()
	}
	t.slots[idx] = slot{occupied: true, id: id, handle: h}
	return nil
}

// Complete resolves the slot holding id with a response value, clearing the
// slot before returning control to the caller (the slot is reusable the
// instant this call returns). A response for an id whose slot is already
// empty (a late response after timeout) is dropped silently and counted.
func (t *Table) Complete(id int64, result interface{}, err error) {
	t.mu.Lock()
	idx := t.index(id)
	s := t.slots[idx]
	if !s.occupied || s.id != id {
		t.lateResponses++
		t.mu.Unlock()
		return
	}
	t.slots[idx] = slot{}
	t.mu.Unlock()

	s.handle.Complete(result, err)
}

// Timeout completes id's slot with braneerr.RequestTimeout() only if the
// slot still holds this exact id's handle at the moment the timer fires
// (it may have already been completed by a response).
func (t *Table) Timeout(id int64) {
	t.Complete(id, nil, braneerr.RequestTimeout())
}

// FailAllWithConnectionLost completes every currently occupied slot with
// braneerr.ConnectionLost() and clears the table, used when the connection
// transitions from Connected to Reconnecting.
func (t *Table) FailAllWithConnectionLost() {
	t.mu.Lock()
	occupied := make([]slot, 0, len(t.slots))
	for i, s := range t.slots {
		if s.occupied {
			occupied = append(occupied, s)
			t.slots[i] = slot{}
		}
	}
	t.mu.Unlock()

	for _, s := range occupied {
		s.handle.Complete(nil, braneerr.ConnectionLost())
	}
}

// Free clears id's slot without invoking its handle, used when a request
// fails before it was ever enqueued (serialization or backpressure) and the
// caller's Future was never handed out.
func (t *Table) Free(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.index(id)
	if t.slots[idx].occupied && t.slots[idx].id == id {
		t.slots[idx] = slot{}
	}
}

// Stats reports current table occupancy for diagnostics and tests.
type Stats struct {
	Capacity      int
	InFlight      int
	LateResponses uint64
}

func (t *Table) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	inFlight := 0
	for _, s := range t.slots {
		if s.occupied {
			inFlight++
		}
	}
	return Stats{
		Capacity:      len(t.slots),
		InFlight:      inFlight,
		LateResponses: t.lateResponses,
	}
}
