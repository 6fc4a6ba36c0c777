package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/branehq/brane/braneerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransientClassification(t *testing.T) {
	p := DefaultRetryPolicy()
	p.TransientServerCodes = map[int64]bool{-32005: true}

	assert.True(t, p.IsTransient(braneerr.ConnectionLost()))
	assert.True(t, p.IsTransient(braneerr.RequestTimeout()))
	assert.True(t, p.IsTransient(braneerr.RpcError(-32005, "gateway overloaded", nil)))
	assert.False(t, p.IsTransient(braneerr.RpcError(3, "execution reverted", nil)))
	assert.False(t, p.IsTransient(braneerr.AbiEncoding(errors.New("bad width"))))
	assert.False(t, p.IsTransient(nil))
}

func TestExecuteStopsOnNonTransientError(t *testing.T) {
	p := DefaultRetryPolicy()
	calls := 0
	err := p.Execute(context.Background(), func() error {
		calls++
		return braneerr.RpcError(3, "execution reverted", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteRetriesTransientUpToAttempts(t *testing.T) {
	p := DefaultRetryPolicy()
	p.Attempts = 3
	p.BaseDelay = time.Millisecond
	p.MaxDelay = 5 * time.Millisecond

	calls := 0
	err := p.Execute(context.Background(), func() error {
		calls++
		return braneerr.ConnectionLost()
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteSucceedsAfterTransientRetry(t *testing.T) {
	p := DefaultRetryPolicy()
	p.Attempts = 3
	p.BaseDelay = time.Millisecond

	calls := 0
	err := p.Execute(context.Background(), func() error {
		calls++
		if calls < 2 {
			return braneerr.ConnectionLost()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestExecuteRespectsContextCancellation(t *testing.T) {
	p := DefaultRetryPolicy()
	p.Attempts = 5
	p.BaseDelay = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	err := p.Execute(ctx, func() error {
		calls++
		return braneerr.ConnectionLost()
	})
	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2)
}
