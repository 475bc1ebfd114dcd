//go:build !jobsdebug
// +build !jobsdebug

// File: internal/concurrency/lock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Release build: the scheduler mutex is a plain sync.Mutex and misuse is
// reported as an error only.

package concurrency

import "sync"

type schedMutex = sync.Mutex

const debugBuild = false
