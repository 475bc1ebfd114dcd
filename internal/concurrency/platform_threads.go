//go:build !js && !wasip1
// +build !js,!wasip1

// File: internal/concurrency/platform_threads.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

// ThreadsAvailable reports whether the target runs goroutines on real OS
// threads. When false the inline job system is the only option.
const ThreadsAvailable = true
