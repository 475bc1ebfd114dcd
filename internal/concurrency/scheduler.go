// File: internal/concurrency/scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scheduler is a fixed worker pool with dependency-gated dispatch. One mutex
// guards the pending queue, the version table and the slot pool; it is taken
// by Submit, IsDone and every dispatch pass. The per-record done flag is the
// only shared state outside it.

package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/momentics/hioload-jobs/api"
)

// Ensure compile-time interface compliance.
var _ api.JobSystem = (*Scheduler)(nil)

// Scheduler owns the job slots, the workers and the dispatch goroutine.
type Scheduler struct {
	opts    Options
	log     *log.Entry
	metrics *instruments

	mu       schedMutex
	records  []jobRecord
	slots    *slotPool
	versions *versionTable
	queue    *pendingQueue
	workers  []*worker
	idle     int
	cursor   int
	closed   bool

	wake   chan struct{}
	stopCh chan struct{}
	loopWg sync.WaitGroup
	wg     sync.WaitGroup
	once   sync.Once

	running   atomic.Int32
	pending   atomic.Int64
	submitted atomic.Int64
	rejected  atomic.Int64
	completed atomic.Int64
	requeued  atomic.Int64
}

// NewScheduler allocates the slot table and starts the workers and the
// dispatcher. Zero-valued sizing options fall back to the defaults.
func NewScheduler(opts Options) *Scheduler {
	opts = opts.withDefaults()
	s := &Scheduler{
		opts:     opts,
		log:      opts.Logger.WithField("component", "scheduler"),
		records:  make([]jobRecord, opts.MaxJobs),
		slots:    newSlotPool(opts.MaxJobs),
		versions: newVersionTable(opts.MaxJobs),
		queue:    newPendingQueue(),
		workers:  make([]*worker, opts.Workers),
		idle:     opts.Workers,
		wake:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
	s.metrics = newInstruments(opts.Meter, s.pending.Load)
	for i := range s.records {
		s.records[i].index = uint32(i)
		s.records[i].version = api.SentinelVersion
	}
	for i := range s.workers {
		s.workers[i] = newWorker(i, s)
		s.started(&s.wg)
		go s.workers[i].run()
	}
	s.started(&s.loopWg)
	go s.loop()

	s.log.WithFields(log.Fields{
		"workers":  opts.Workers,
		"max_jobs": opts.MaxJobs,
		"poll":     opts.PollInterval,
	}).Info("job scheduler started")
	return s
}

// Submit queues fn to run once dependsOn is no longer pending. It never blocks
// on job execution. The zero handle, or any handle that is not pending, means
// no dependency.
func (s *Scheduler) Submit(fn api.JobFunc, dependsOn api.JobHandle) (api.JobHandle, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.misuse("submit on closed scheduler")
		return api.InvalidHandle, api.WrapError(api.ErrCodeClosed, api.ErrSchedulerClosed, "submit")
	}
	index, ok := s.slots.Alloc()
	if !ok {
		s.mu.Unlock()
		s.rejected.Add(1)
		s.metrics.rejected.Add(context.Background(), 1)
		s.log.WithField("max_jobs", s.opts.MaxJobs).Warn("job slots exhausted")
		return api.InvalidHandle, api.WrapError(api.ErrCodeResourceExhausted, api.ErrCapacityExhausted, "submit").
			WithContext("max_jobs", s.opts.MaxJobs)
	}
	rec := &s.records[index]
	rec.fn = fn
	rec.dependsOn = dependsOn
	rec.queuedAt = time.Now()
	rec.done.Store(false)
	rec.version = s.versions.stamp(index)
	s.queue.Push(index)
	s.pending.Store(int64(s.queue.Len()))
	h := rec.handle()
	s.mu.Unlock()

	s.submitted.Add(1)
	s.metrics.submitted.Add(context.Background(), 1)
	if s.log.Logger.IsLevelEnabled(log.DebugLevel) {
		s.log.WithFields(log.Fields{"job": h.String(), "depends_on": dependsOn.String()}).Debug("job queued")
	}
	s.notify()
	return h, nil
}

// CreateJob is Submit without the error. InvalidHandle means the job was not
// scheduled and will never run.
func (s *Scheduler) CreateJob(fn api.JobFunc, dependsOn api.JobHandle) api.JobHandle {
	h, _ := s.Submit(fn, dependsOn)
	return h
}

// IsDone reports whether h no longer names a queued or running job. It only
// reads the version table, so it is safe for handles retired long ago.
func (s *Scheduler) IsDone(h api.JobHandle) bool {
	s.mu.Lock()
	pending := s.versions.pending(h)
	s.mu.Unlock()
	return !pending
}

// Shutdown stops the dispatcher, then every worker, and waits for all of
// them. Running jobs finish; queued jobs are dropped and their handles report
// done. Producers must have stopped submitting.
func (s *Scheduler) Shutdown() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		close(s.stopCh)
		s.loopWg.Wait()
		for _, w := range s.workers {
			close(w.stop)
		}
		s.wg.Wait()

		s.mu.Lock()
		dropped := s.queue.Drain()
		for _, index := range dropped {
			s.releaseLocked(&s.records[index])
		}
		for _, w := range s.workers {
			if w.job != nil {
				s.releaseLocked(w.job)
				w.job = nil
			}
		}
		s.idle = len(s.workers)
		s.versions.reset()
		s.pending.Store(0)
		s.mu.Unlock()
		s.metrics.close()

		s.log.WithField("dropped", len(dropped)).Info("job scheduler stopped")
	})
	return nil
}

// Running returns the number of scheduler goroutines still alive.
func (s *Scheduler) Running() int {
	return int(s.running.Load())
}

// Stats returns scheduler counters.
func (s *Scheduler) Stats() map[string]int64 {
	s.mu.Lock()
	inUse := s.slots.InUse()
	inFlight := len(s.workers) - s.idle
	queued := s.queue.Len()
	s.mu.Unlock()
	return map[string]int64{
		"submitted":    s.submitted.Load(),
		"rejected":     s.rejected.Load(),
		"completed":    s.completed.Load(),
		"requeued":     s.requeued.Load(),
		"pending":      int64(queued),
		"in_flight":    int64(inFlight),
		"slots_in_use": int64(inUse),
		"workers":      int64(len(s.workers)),
		"max_jobs":     int64(s.opts.MaxJobs),
		"running":      int64(s.running.Load()),
	}
}

// loop is the dispatcher. Every pass retires finished jobs, then assigns ready
// jobs to idle workers, then waits for a submit, a completion, the optional
// poll tick or stop.
func (s *Scheduler) loop() {
	defer s.exited(&s.loopWg)
	if s.opts.LockOSThreads {
		lockThread(dispatcherThreadName, s.log)
	}
	var tick <-chan time.Time
	if s.opts.PollInterval > 0 {
		t := time.NewTicker(s.opts.PollInterval)
		defer t.Stop()
		tick = t.C
	}
	for {
		s.pass()
		select {
		case <-s.stopCh:
			return
		case <-s.wake:
		case <-tick:
		}
	}
}

func (s *Scheduler) pass() {
	s.mu.Lock()
	retired := s.retireLocked()
	again := s.dispatchLocked()
	s.pending.Store(int64(s.queue.Len()))
	s.mu.Unlock()

	if retired > 0 {
		s.completed.Add(int64(retired))
		s.metrics.completed.Add(context.Background(), int64(retired))
	}
	if again {
		s.notify()
	}
}

// retireLocked frees every record whose worker has published done.
func (s *Scheduler) retireLocked() int {
	n := 0
	for _, w := range s.workers {
		rec := w.job
		if rec == nil || !rec.done.Load() {
			continue
		}
		w.job = nil
		s.idle++
		s.releaseLocked(rec)
		n++
	}
	return n
}

// dispatchLocked scans each queued record at most once. A record whose
// dependency is still pending goes to the back so ready records behind it are
// not starved. It reports whether another pass is needed because a no-op job
// completed during the scan.
func (s *Scheduler) dispatchLocked() bool {
	again := false
	for n := s.queue.Len(); n > 0 && s.idle > 0; n-- {
		index, _ := s.queue.Pop()
		rec := &s.records[index]
		if s.versions.pending(rec.dependsOn) {
			s.queue.Push(index)
			s.requeued.Add(1)
			s.metrics.requeued.Add(context.Background(), 1)
			continue
		}
		if rec.fn == nil {
			s.releaseLocked(rec)
			s.completed.Add(1)
			s.metrics.completed.Add(context.Background(), 1)
			again = true
			continue
		}
		w := s.nextIdleLocked()
		w.job = rec
		s.idle--
		w.assign <- rec
	}
	return again
}

// nextIdleLocked returns an idle worker, rotating the start point so work is
// spread over all threads. Callers check s.idle > 0 first.
func (s *Scheduler) nextIdleLocked() *worker {
	for i := 0; i < len(s.workers); i++ {
		w := s.workers[(s.cursor+i)%len(s.workers)]
		if w.job == nil {
			s.cursor = (s.cursor + i + 1) % len(s.workers)
			return w
		}
	}
	panic("scheduler: idle count out of sync with workers")
}

// releaseLocked writes the sentinel for rec's slot and returns it to the pool.
func (s *Scheduler) releaseLocked(rec *jobRecord) {
	s.versions.retire(rec.index)
	rec.clear()
	s.slots.Free(rec.index)
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) started(wg *sync.WaitGroup) {
	wg.Add(1)
	s.running.Add(1)
}

func (s *Scheduler) exited(wg *sync.WaitGroup) {
	s.running.Add(-1)
	wg.Done()
}

func (s *Scheduler) misuse(msg string) {
	s.log.Error(msg)
	if debugBuild {
		panic("scheduler: " + msg)
	}
}
