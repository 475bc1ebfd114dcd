//go:build !linux && !windows
// +build !linux,!windows

// File: internal/concurrency/thread_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "github.com/momentics/hioload-jobs/api"

func setThreadName(name string) error {
	return api.ErrNotSupported
}
