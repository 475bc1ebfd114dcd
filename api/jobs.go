// File: api/jobs.go
// Package api defines the job system contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handles are {index, version} tokens into a fixed table of job slots. A handle
// stays valid only while the slot carries the version it was issued with.

package api

import "fmt"

// SentinelVersion marks a slot that is free or has never been stamped.
const SentinelVersion uint32 = 0xFFFFFFFF

// JobFunc is a unit of schedulable work. State travels in the closure.
type JobFunc func()

// JobHandle identifies a submitted job. It is a copyable token and is never
// destroyed; once the slot is recycled the handle reports done forever.
type JobHandle struct {
	Index   uint32
	Version uint32
}

// InvalidHandle is returned when a job could not be scheduled. As a
// dependency it means "no dependency".
var InvalidHandle = JobHandle{}

// IsZero reports whether h is the invalid handle.
func (h JobHandle) IsZero() bool {
	return h.Index == 0 && h.Version == 0
}

func (h JobHandle) String() string {
	return fmt.Sprintf("job(%d@%d)", h.Index, h.Version)
}

// JobSystem schedules jobs with an optional single dependency.
type JobSystem interface {
	// Submit schedules fn to run after dependsOn completes. It never blocks.
	// On failure the returned handle is InvalidHandle.
	Submit(fn JobFunc, dependsOn JobHandle) (JobHandle, error)

	// CreateJob is Submit without the error; InvalidHandle means not scheduled.
	CreateJob(fn JobFunc, dependsOn JobHandle) JobHandle

	// IsDone reports whether the job behind h is no longer queued or running.
	IsDone(h JobHandle) bool

	// Stats returns a snapshot of scheduler counters.
	Stats() map[string]int64

	GracefulShutdown
}
