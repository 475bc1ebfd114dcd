//go:build windows
// +build windows

// File: internal/concurrency/thread_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows thread naming through SetThreadDescription (Windows 10 1607+).
//
// Reference: https://learn.microsoft.com/en-us/windows/win32/api/processthreadsapi/nf-processthreadsapi-setthreaddescription

package concurrency

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/hioload-jobs/api"
)

var procSetThreadDescription = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetThreadDescription")

// setThreadName names the calling OS thread. The goroutine must be locked.
func setThreadName(name string) error {
	if err := procSetThreadDescription.Find(); err != nil {
		return api.ErrNotSupported
	}
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	hr, _, _ := procSetThreadDescription.Call(uintptr(windows.CurrentThread()), uintptr(unsafe.Pointer(p)))
	if hr != 0 {
		return fmt.Errorf("SetThreadDescription: HRESULT 0x%X", hr)
	}
	return nil
}
