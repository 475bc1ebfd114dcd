//go:build jobsdebug
// +build jobsdebug

// File: internal/concurrency/lock_debug.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Debug build (-tags jobsdebug): the scheduler mutex detects lock-order
// inversions and long holds, and misuse of a closed scheduler panics.

package concurrency

import "github.com/sasha-s/go-deadlock"

type schedMutex = deadlock.Mutex

const debugBuild = true
