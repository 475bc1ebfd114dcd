// File: internal/concurrency/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OpenTelemetry instruments for the job system. A nil meter falls back to the
// global MeterProvider, which is a noop until the host configures one.

package concurrency

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for job metrics.
const meterName = "github.com/momentics/hioload-jobs"

// Metric names.
const (
	MetricSubmitted   = "jobs.submitted"
	MetricRejected    = "jobs.rejected"
	MetricCompleted   = "jobs.completed"
	MetricRequeued    = "jobs.requeued"
	MetricRunDuration = "jobs.run.duration"
	MetricQueueWait   = "jobs.queue.wait"
	MetricPending     = "jobs.pending"
)

type instruments struct {
	submitted   metric.Int64Counter
	rejected    metric.Int64Counter
	completed   metric.Int64Counter
	requeued    metric.Int64Counter
	runDuration metric.Float64Histogram
	queueWait   metric.Float64Histogram

	// pendingReg pins the pending callback, and through it the owner, to
	// the meter until close.
	pendingReg metric.Registration
}

// newInstruments creates all instruments. On error the OTel API hands back
// noop instruments, so errors are ignored.
func newInstruments(meter metric.Meter, pending func() int64) *instruments {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	in := &instruments{}
	in.submitted, _ = meter.Int64Counter(MetricSubmitted,
		metric.WithDescription("Jobs accepted by the scheduler"),
		metric.WithUnit("{job}"))
	in.rejected, _ = meter.Int64Counter(MetricRejected,
		metric.WithDescription("Submissions refused because every job slot was in use"),
		metric.WithUnit("{job}"))
	in.completed, _ = meter.Int64Counter(MetricCompleted,
		metric.WithDescription("Jobs retired after completion"),
		metric.WithUnit("{job}"))
	in.requeued, _ = meter.Int64Counter(MetricRequeued,
		metric.WithDescription("Dispatch attempts deferred by a pending dependency"),
		metric.WithUnit("{job}"))
	in.runDuration, _ = meter.Float64Histogram(MetricRunDuration,
		metric.WithDescription("Time spent running a job function"),
		metric.WithUnit("s"))
	in.queueWait, _ = meter.Float64Histogram(MetricQueueWait,
		metric.WithDescription("Time from submission to start of execution"),
		metric.WithUnit("s"))
	gauge, err := meter.Int64ObservableGauge(MetricPending,
		metric.WithDescription("Jobs waiting for a worker"),
		metric.WithUnit("{job}"))
	if err == nil {
		in.pendingReg, _ = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(gauge, pending())
			return nil
		}, gauge)
	}
	return in
}

// close unregisters the pending callback so a stopped job system is no
// longer observed or referenced by the meter.
func (in *instruments) close() {
	if in.pendingReg == nil {
		return
	}
	if err := in.pendingReg.Unregister(); err != nil {
		otel.Handle(err)
	}
	in.pendingReg = nil
}

func workerAttr(id int) metric.MeasurementOption {
	return metric.WithAttributes(attribute.Int("worker", id))
}
