// File: facade/jobs.go
// Unified facade layer for hioload-jobs.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Jobs aggregates the job system, its control plane and its logger behind a
// single context object. InitJobs picks the threaded scheduler or the inline
// fallback from the configuration and the build target, exposes the effective
// configuration through api.Control, and wires log level hot-reload.

package facade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/momentics/hioload-jobs/adapters"
	"github.com/momentics/hioload-jobs/api"
	"github.com/momentics/hioload-jobs/control"
	"github.com/momentics/hioload-jobs/internal/concurrency"
)

// Jobs is the process-level job system handle.
// It implements api.GracefulShutdown to allow unified shutdown logic.
type Jobs struct {
	id      uuid.UUID
	config  *control.Config
	logger  *log.Logger
	log     *log.Entry
	system  api.JobSystem
	sched   *concurrency.Scheduler // nil in inline mode
	control *adapters.ControlAdapter
	limiter *rate.Limiter

	once sync.Once
}

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*Jobs)(nil)

type settings struct {
	logger *log.Logger
	meter  metric.Meter
}

// Option customizes InitJobs.
type Option func(*settings)

// WithLogger routes all job system logging through l. Its level is set from
// the configuration.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithMeter records job metrics on m instead of the global meter provider.
func WithMeter(m metric.Meter) Option {
	return func(s *settings) { s.meter = m }
}

// InitJobs validates cfg and starts the job system. A nil cfg means
// control.DefaultConfig(). The returned Jobs must be shut down with
// ShutdownJobs once producers have stopped.
func InitJobs(cfg *control.Config, opts ...Option) (*Jobs, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("init jobs: %w", err)
	}
	st := settings{}
	for _, o := range opts {
		o(&st)
	}
	if st.logger == nil {
		st.logger = log.New()
	}
	level, _ := log.ParseLevel(cfg.LogLevel) // checked by Validate
	st.logger.SetLevel(level)

	j := &Jobs{
		id:      uuid.New(),
		config:  cfg,
		logger:  st.logger,
		control: adapters.NewControlAdapter(),
		limiter: rate.NewLimiter(rate.Limit(cfg.RetryRate), cfg.RetryBurst),
	}
	j.log = st.logger.WithField("system", j.id.String())

	engine := concurrency.Options{
		Workers:       cfg.Workers,
		MaxJobs:       cfg.MaxJobs,
		PollInterval:  cfg.PollInterval,
		LockOSThreads: cfg.LockOSThreads,
		ThreadName:    cfg.ThreadName,
		Logger:        j.log,
		Meter:         st.meter,
	}
	mode := "threaded"
	if cfg.Inline || !concurrency.ThreadsAvailable {
		mode = "inline"
		j.system = concurrency.NewInline(engine)
	} else {
		j.sched = concurrency.NewScheduler(engine)
		j.system = j.sched
	}

	_ = j.control.SetConfig(cfg.ToMap())
	j.control.SetMetric("jobs.id", j.id.String())
	j.control.SetMetric("jobs.mode", mode)
	j.control.SetMetric("jobs.started_at", time.Now().UTC().Format(time.RFC3339))
	j.control.RegisterDebugProbe("jobs", func() any { return j.system.Stats() })
	j.control.RegisterDebugProbe("jobs.uptime", func() any {
		d, _ := j.control.MetricAge("jobs.started_at")
		return d.Round(time.Millisecond).String()
	})
	j.control.OnReload(j.reloadLogLevel)

	j.log.WithField("mode", mode).Info("job system initialized")
	return j, nil
}

// reloadLogLevel applies a changed log_level from the control store.
func (j *Jobs) reloadLogLevel() {
	raw, ok := j.control.ConfigValue("log_level")
	if !ok {
		return
	}
	name, ok := raw.(string)
	if !ok {
		j.log.WithField("log_level", raw).Warn("ignoring non-string log level")
		return
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		j.log.WithError(err).Warn("ignoring invalid log level")
		return
	}
	if level != j.logger.GetLevel() {
		j.logger.SetLevel(level)
		j.log.WithField("log_level", name).Info("log level changed")
	}
}

// Submit queues fn behind dependsOn. It fails fast with
// api.ErrCapacityExhausted when every job slot is in use.
func (j *Jobs) Submit(fn api.JobFunc, dependsOn api.JobHandle) (api.JobHandle, error) {
	return j.system.Submit(fn, dependsOn)
}

// CreateJob queues fn behind dependsOn. api.InvalidHandle means the job was
// rejected and will never run.
func (j *Jobs) CreateJob(fn api.JobFunc, dependsOn api.JobHandle) api.JobHandle {
	return j.system.CreateJob(fn, dependsOn)
}

// IsDone reports whether h has finished. Unknown and stale handles are done.
func (j *Jobs) IsDone(h api.JobHandle) bool {
	return j.system.IsDone(h)
}

// Wait blocks until h is done or ctx ends.
func (j *Jobs) Wait(ctx context.Context, h api.JobHandle) error {
	if j.system.IsDone(h) {
		return nil
	}
	t := time.NewTicker(j.config.WaitInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if j.system.IsDone(h) {
				return nil
			}
		}
	}
}

// CreateJobWait submits fn, retrying while the job slots are exhausted.
// Retries are paced by the configured rate limiter. Any other error, or the
// end of ctx, is returned.
func (j *Jobs) CreateJobWait(ctx context.Context, fn api.JobFunc, dependsOn api.JobHandle) (api.JobHandle, error) {
	for {
		h, err := j.system.Submit(fn, dependsOn)
		if !errors.Is(err, api.ErrCapacityExhausted) {
			return h, err
		}
		if err := j.limiter.Wait(ctx); err != nil {
			return api.InvalidHandle, err
		}
	}
}

// ShutdownJobs stops the job system. Running jobs finish, queued jobs are
// dropped. Safe to call more than once.
func (j *Jobs) ShutdownJobs() {
	j.once.Do(func() {
		if err := j.system.Shutdown(); err != nil {
			j.log.WithError(err).Error("job system shutdown failed")
		}
		j.control.SetMetric("jobs.mode", "stopped")
	})
}

// Shutdown implements api.GracefulShutdown by delegating to ShutdownJobs.
func (j *Jobs) Shutdown() error {
	j.ShutdownJobs()
	return nil
}

// Stats returns the engine counters.
func (j *Jobs) Stats() map[string]int64 {
	return j.system.Stats()
}

// Control returns the Control interface for config snapshots, metrics and
// debug probes.
func (j *Jobs) Control() api.Control {
	return j.control
}

// Inline reports whether jobs run synchronously inside CreateJob.
func (j *Jobs) Inline() bool {
	return j.sched == nil
}

// Running returns the number of live scheduler goroutines; 0 in inline mode.
func (j *Jobs) Running() int {
	if j.sched == nil {
		return 0
	}
	return j.sched.Running()
}

// ID returns the instance id attached to every log line.
func (j *Jobs) ID() string {
	return j.id.String()
}

// Submit schedules fn(data) behind dependsOn. data is captured by value, so
// the caller keeps no shared state with the job unless T is a pointer.
func Submit[T any](j *Jobs, fn func(T), data T, dependsOn api.JobHandle) (api.JobHandle, error) {
	if fn == nil {
		return j.Submit(nil, dependsOn)
	}
	return j.Submit(func() { fn(data) }, dependsOn)
}
