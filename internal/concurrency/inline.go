// File: internal/concurrency/inline.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Inline is the job system for targets without OS threads. Submit runs the job
// on the calling goroutine before returning, so every handle is already done.
// Callers observe the same contract as Scheduler except for timing.

package concurrency

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/momentics/hioload-jobs/api"
)

var _ api.JobSystem = (*Inline)(nil)

// Inline executes jobs synchronously.
type Inline struct {
	log     *log.Entry
	metrics *instruments

	next      atomic.Uint32
	closed    atomic.Bool
	submitted atomic.Int64
	completed atomic.Int64
}

// NewInline creates a synchronous job system. Sizing options are ignored.
func NewInline(opts Options) *Inline {
	opts = opts.withDefaults()
	in := &Inline{log: opts.Logger.WithField("component", "inline")}
	in.metrics = newInstruments(opts.Meter, func() int64 { return 0 })
	in.log.Info("inline job system started")
	return in
}

// Submit runs fn immediately and returns a handle that already reports done.
// Dependencies are satisfied by construction: every earlier job has run.
func (in *Inline) Submit(fn api.JobFunc, dependsOn api.JobHandle) (api.JobHandle, error) {
	if in.closed.Load() {
		in.log.Error("submit on closed inline job system")
		if debugBuild {
			panic("inline: submit on closed job system")
		}
		return api.InvalidHandle, api.WrapError(api.ErrCodeClosed, api.ErrSchedulerClosed, "submit")
	}
	h := api.JobHandle{Index: 0, Version: in.nextVersion()}
	ctx := context.Background()
	in.submitted.Add(1)
	in.metrics.submitted.Add(ctx, 1)

	start := time.Now()
	if fn != nil {
		fn()
	}
	in.metrics.runDuration.Record(ctx, time.Since(start).Seconds(), workerAttr(0))
	in.completed.Add(1)
	in.metrics.completed.Add(ctx, 1)
	return h, nil
}

// CreateJob is Submit without the error.
func (in *Inline) CreateJob(fn api.JobFunc, dependsOn api.JobHandle) api.JobHandle {
	h, _ := in.Submit(fn, dependsOn)
	return h
}

// IsDone is always true: jobs finish inside Submit.
func (in *Inline) IsDone(api.JobHandle) bool {
	return true
}

// Shutdown marks the system closed.
func (in *Inline) Shutdown() error {
	if in.closed.CompareAndSwap(false, true) {
		in.metrics.close()
		in.log.Info("inline job system stopped")
	}
	return nil
}

// Stats returns inline counters in the same shape as Scheduler.Stats.
func (in *Inline) Stats() map[string]int64 {
	return map[string]int64{
		"submitted":    in.submitted.Load(),
		"rejected":     0,
		"completed":    in.completed.Load(),
		"requeued":     0,
		"pending":      0,
		"in_flight":    0,
		"slots_in_use": 0,
		"workers":      0,
		"max_jobs":     0,
		"running":      0,
	}
}

// nextVersion issues versions from 1 upward, skipping 0 and the sentinel on
// wrap so no handle equals InvalidHandle.
func (in *Inline) nextVersion() uint32 {
	for {
		v := in.next.Add(1)
		if v != 0 && v != api.SentinelVersion {
			return v
		}
	}
}
