// File: internal/concurrency/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"
)

const (
	// DefaultWorkers is the number of worker threads.
	DefaultWorkers = 16
	// DefaultMaxJobs is the number of job slots, i.e. jobs queued or running.
	DefaultMaxJobs = 1024
	// DefaultThreadName names worker threads; the dispatcher is "job_scheduler".
	DefaultThreadName = "job_worker"

	dispatcherThreadName = "job_scheduler"
)

// Options configures a Scheduler or Inline job system.
type Options struct {
	Workers int
	MaxJobs int

	// PollInterval adds a periodic dispatch pass on top of event wakeups.
	// Zero means event-driven only.
	PollInterval time.Duration

	// LockOSThreads gives every worker and the dispatcher its own OS thread.
	LockOSThreads bool
	ThreadName    string

	Logger *log.Entry
	Meter  metric.Meter
}

// DefaultOptions returns the built-in sizing.
func DefaultOptions() Options {
	return Options{
		Workers:       DefaultWorkers,
		MaxJobs:       DefaultMaxJobs,
		LockOSThreads: true,
		ThreadName:    DefaultThreadName,
	}
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.MaxJobs <= 0 {
		o.MaxJobs = DefaultMaxJobs
	}
	if o.ThreadName == "" {
		o.ThreadName = DefaultThreadName
	}
	if o.Logger == nil {
		o.Logger = log.NewEntry(log.StandardLogger())
	}
	return o
}
