// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Descriptive runtime values (instance id, mode, start time) published
// through api.Control. Each value carries the time it was last set, so the
// facade can report uptime and time spent in the current mode. Counters live
// in the scheduler and in OpenTelemetry.

package control

import (
	"sync"
	"time"
)

type sample struct {
	value any
	at    time.Time
}

// MetricsRegistry holds named runtime values with their update times.
type MetricsRegistry struct {
	mu      sync.RWMutex
	samples map[string]sample
	updated time.Time
	now     func() time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		samples: make(map[string]sample),
		now:     time.Now,
	}
}

// Set records value under key and stamps it with the current time.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	at := mr.now()
	mr.samples[key] = sample{value: value, at: at}
	mr.updated = at
	mr.mu.Unlock()
}

// Lookup returns the value stored under key.
func (mr *MetricsRegistry) Lookup(key string) (any, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	s, ok := mr.samples[key]
	return s.value, ok
}

// Since returns how long ago key was last set.
func (mr *MetricsRegistry) Since(key string) (time.Duration, bool) {
	mr.mu.RLock()
	s, ok := mr.samples[key]
	mr.mu.RUnlock()
	if !ok {
		return 0, false
	}
	return mr.now().Sub(s.at), true
}

// Updated returns the time of the last Set, zero if nothing was set.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// GetSnapshot returns a copy of all values without their timestamps.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.samples))
	for k, s := range mr.samples {
		out[k] = s.value
	}
	return out
}
