//go:build linux
// +build linux

// File: internal/concurrency/thread_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux thread naming through prctl(PR_SET_NAME).

package concurrency

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// kernel limit is 16 bytes including the terminating NUL
const maxThreadName = 15

// setThreadName names the calling OS thread. The goroutine must be locked.
func setThreadName(name string) error {
	if len(name) > maxThreadName {
		name = name[:maxThreadName]
	}
	b, err := unix.ByteSliceFromString(name)
	if err != nil {
		return err
	}
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&b[0])), 0, 0, 0)
}
