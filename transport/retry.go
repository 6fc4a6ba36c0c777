package transport

import (
	"context"
	"math/rand"
	"time"

	"github.com/branehq/brane/braneerr"
)

// RetryPolicy configures the classifier-driven retry scheduler: up to
// Attempts tries total, backoff growing from BaseDelay by Multiplier each
// attempt (1.0 for linear, >1.0 for exponential) and capped at MaxDelay,
// with a random jitter fraction drawn from [JitterMin, JitterMax] applied
// to each computed delay.
type RetryPolicy struct {
	Attempts   int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	JitterMin  float64
	JitterMax  float64

	// TransientServerCodes are JSON-RPC error codes treated as transient in
	// addition to connection-level errors (e.g. gateway-overload codes).
	TransientServerCodes map[int64]bool
}

// DefaultRetryPolicy matches spec.md §4.12's defaults: 3 attempts,
// exponential backoff from 100ms doubling up to 5s, and a jitter fraction
// drawn from [0, 0.25].
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:   3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		JitterMin:  0,
		JitterMax:  0.25,
	}
}

// IsTransient classifies err as retryable: connection-level errors (reset,
// timeout, refusal, lost) or an RpcError whose code is in the configured
// transient set. Every other error, including all codec errors and
// non-matching RpcErrors, is non-transient. The classifier is pure — it
// never sleeps or mutates state.
func (p RetryPolicy) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if braneerr.Is(err, braneerr.KindConnectionLost) ||
		braneerr.Is(err, braneerr.KindNotConnected) ||
		braneerr.Is(err, braneerr.KindTransportError) ||
		braneerr.Is(err, braneerr.KindRequestTimeout) {
		return true
	}
	if be, ok := err.(*braneerr.Error); ok && be.Kind == braneerr.KindRpcError {
		return p.TransientServerCodes[be.Code]
	}
	return false
}

// delay computes the backoff duration for attempt n (0-indexed), with
// jitter applied.
func (p RetryPolicy) delay(n int) time.Duration {
	d := float64(p.BaseDelay)
	mult := p.Multiplier
	if mult <= 0 {
		mult = 1.0
	}
	for i := 0; i < n; i++ {
		d *= mult
	}
	if maxd := float64(p.MaxDelay); p.MaxDelay > 0 && d > maxd {
		d = maxd
	}
	jitterRange := p.JitterMax - p.JitterMin
	var jitter float64
	if jitterRange > 0 {
		jitter = p.JitterMin + rand.Float64()*jitterRange
	} else {
		jitter = p.JitterMin
	}
	return time.Duration(d * (1 + jitter))
}

// Execute runs fn up to p.Attempts times, sleeping p.delay(n) between
// attempts, stopping early on the first non-transient error (per
// IsTransient) or on success. ctx cancellation aborts the wait between
// attempts.
func (p RetryPolicy) Execute(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !p.IsTransient(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}
	return lastErr
}
