// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control manages dynamic config, descriptive metrics and debug probes of a
// running job system.
type Control interface {
	GetConfig() map[string]any
	// SetConfig merges cfg and notifies reload listeners.
	SetConfig(cfg map[string]any) error
	// Stats merges metrics with the output of every debug probe ("debug." prefix).
	Stats() map[string]any
	OnReload(fn func())
	SetMetric(key string, value any)
	RegisterDebugProbe(name string, fn func() any)
}
