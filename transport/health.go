package transport

import (
	"sync"
	"time"
)

// EndpointHealth is the circuit-breaker state tracked per HTTP endpoint.
type EndpointHealth struct {
	Endpoint        string
	TotalCalls      int64
	SuccessfulCalls int64
	FailedCalls     int64
	AvgLatencyMs    int64
	LastSuccess     int64 // unix seconds
	LastFailure     int64 // unix seconds
	CircuitOpen     bool
}

// HealthTracker selects and scores endpoints for HTTP failover.
type HealthTracker interface {
	RecordSuccess(endpoint string, durationMs int64)
	RecordFailure(endpoint string, err error)
	IsHealthy(endpoint string) bool
	Reset(endpoint string)
}

// CircuitBreakerHealthTracker opens an endpoint's circuit after consecutive
// failures and closes it again after consecutive successes once the open
// window elapses, matching the failover discipline on the HTTP path.
type CircuitBreakerHealthTracker struct {
	mu     sync.RWMutex
	health map[string]*EndpointHealth

	failureThreshold  int
	successThreshold  int
	circuitOpenWindow time.Duration

	now func() time.Time
}

// NewCircuitBreakerHealthTracker builds a tracker with the standard
// thresholds: open after 3 consecutive failures, close after 2 consecutive
// successes once 30s have elapsed since the last failure.
func NewCircuitBreakerHealthTracker() *CircuitBreakerHealthTracker {
	return &CircuitBreakerHealthTracker{
		health:            make(map[string]*EndpointHealth),
		failureThreshold:  3,
		successThreshold:  2,
		circuitOpenWindow: 30 * time.Second,
		now:               time.Now,
	}
}

func (t *CircuitBreakerHealthTracker) getOrCreate(endpoint string) *EndpointHealth {
	h, ok := t.health[endpoint]
	if !ok {
		h = &EndpointHealth{Endpoint: endpoint}
		t.health[endpoint] = h
	}
	return h
}

func (t *CircuitBreakerHealthTracker) RecordSuccess(endpoint string, durationMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.getOrCreate(endpoint)
	h.TotalCalls++
	h.SuccessfulCalls++
	h.LastSuccess = t.now().Unix()

	if h.AvgLatencyMs == 0 {
		h.AvgLatencyMs = durationMs
	} else {
		h.AvgLatencyMs = (h.AvgLatencyMs*9 + durationMs) / 10
	}

	if h.CircuitOpen && h.SuccessfulCalls-h.FailedCalls >= int64(t.successThreshold) {
		h.CircuitOpen = false
	}
}

func (t *CircuitBreakerHealthTracker) RecordFailure(endpoint string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.getOrCreate(endpoint)
	h.TotalCalls++
	h.FailedCalls++
	h.LastFailure = t.now().Unix()

	if h.FailedCalls-h.SuccessfulCalls >= int64(t.failureThreshold) {
		h.CircuitOpen = true
	}
}

func (t *CircuitBreakerHealthTracker) IsHealthy(endpoint string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	h, ok := t.health[endpoint]
	if !ok {
		return true
	}
	if h.CircuitOpen {
		elapsed := t.now().Unix() - h.LastFailure
		if elapsed < int64(t.circuitOpenWindow.Seconds()) {
			return false
		}
	}
	return true
}

func (t *CircuitBreakerHealthTracker) Reset(endpoint string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.health, endpoint)
}

var _ HealthTracker = (*CircuitBreakerHealthTracker)(nil)
