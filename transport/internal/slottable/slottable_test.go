package slottable

import (
	"testing"
	"time"

	"github.com/branehq/brane/braneerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, resultCh chan interface{}, errCh chan error) Handle {
	t.Helper()
	return Handle{
		Method:    "eth_call",
		AllocedAt: time.Now(),
		Complete: func(result interface{}, err error) {
			resultCh <- result
			errCh <- err
		},
	}
}

func TestAllocateAndCompleteClearsSlot(t *testing.T) {
	tbl := NewTable(4)
	resultCh := make(chan interface{}, 1)
	errCh := make(chan error, 1)

	require.NoError(t, tbl.Allocate(1, handle(t, resultCh, errCh)))
	assert.Equal(t, 1, tbl.Stats().InFlight)

	tbl.Complete(1, "0xdeadbeef", nil)
	assert.Equal(t, "0xdeadbeef", <-resultCh)
	assert.NoError(t, <-errCh)
	assert.Equal(t, 0, tbl.Stats().InFlight)
}

func TestTooManyInFlightOnCollision(t *testing.T) {
	tbl := NewTable(4)
	resultCh := make(chan interface{}, 1)
	errCh := make(chan error, 1)

	require.NoError(t, tbl.Allocate(1, handle(t, resultCh, errCh)))
	err := tbl.Allocate(5, handle(t, resultCh, errCh)) // 5 & 3 == 1, collides
	require.Error(t, err)
	assert.True(t, braneerr.Is(err, braneerr.KindTooManyInFlight))
}

func TestLateResponseDroppedSilently(t *testing.T) {
	tbl := NewTable(4)
	resultCh := make(chan interface{}, 1)
	errCh := make(chan error, 1)

	require.NoError(t, tbl.Allocate(2, handle(t, resultCh, errCh)))
	tbl.Timeout(2)
	assert.Error(t, <-errCh) // RequestTimeout

	// A second completion for the same id after the slot was cleared must
	// be dropped silently rather than delivered or panicking.
	tbl.Complete(2, "late", nil)
	select {
	case <-resultCh:
		t.Fatal("late response should not be delivered")
	default:
	}
	assert.Equal(t, uint64(1), tbl.Stats().LateResponses)
}

func TestFailAllWithConnectionLost(t *testing.T) {
	tbl := NewTable(4)
	var resultChs, errChs []chan error
	for i := int64(0); i < 3; i++ {
		rc := make(chan interface{}, 1)
		ec := make(chan error, 1)
		require.NoError(t, tbl.Allocate(i, handle(t, rc, ec)))
		errChs = append(errChs, ec)
		_ = resultChs
	}

	tbl.FailAllWithConnectionLost()
	for _, ec := range errChs {
		err := <-ec
		assert.True(t, braneerr.Is(err, braneerr.KindConnectionLost))
	}
	assert.Equal(t, 0, tbl.Stats().InFlight)
}

func TestSlotReusableImmediatelyAfterComplete(t *testing.T) {
	tbl := NewTable(2)
	rc := make(chan interface{}, 1)
	ec := make(chan error, 1)
	require.NoError(t, tbl.Allocate(0, handle(t, rc, ec)))
	tbl.Complete(0, "ok", nil)
	<-rc
	<-ec

	require.NoError(t, tbl.Allocate(0, handle(t, rc, ec)))
}
