// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown stops a component and releases its resources.
type GracefulShutdown interface {
	// Shutdown stops all internal goroutines and waits for them to exit.
	// Calling it more than once is a no-op.
	Shutdown() error
}
