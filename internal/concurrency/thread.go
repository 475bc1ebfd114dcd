// File: internal/concurrency/thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Dedicated OS threads for the dispatcher and workers.

package concurrency

import (
	"runtime"

	log "github.com/sirupsen/logrus"
)

// lockThread wires the calling goroutine to its own OS thread and names it.
// The goroutine never unlocks, so the thread is discarded when it exits.
func lockThread(name string, logger *log.Entry) {
	runtime.LockOSThread()
	if err := setThreadName(name); err != nil {
		logger.WithError(err).WithField("thread", name).Debug("thread naming unavailable")
	}
}
