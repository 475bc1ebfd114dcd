//go:build js || wasip1
// +build js wasip1

// File: internal/concurrency/platform_nothreads.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// js/wasm and wasip1 run the whole program on a single thread.

package concurrency

const ThreadsAvailable = false
