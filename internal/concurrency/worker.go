// File: internal/concurrency/worker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A worker runs at most one job at a time. It blocks on its assignment
// channel, runs the job, publishes done and wakes the dispatcher.

package concurrency

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/cpu"
)

type worker struct {
	id    int
	sched *Scheduler

	// job is owned by the dispatcher and only touched under the scheduler mutex.
	job *jobRecord

	_      cpu.CacheLinePad
	assign chan *jobRecord // capacity 1; the worker's wake semaphore
	stop   chan struct{}
}

func newWorker(id int, s *Scheduler) *worker {
	return &worker{
		id:     id,
		sched:  s,
		assign: make(chan *jobRecord, 1),
		stop:   make(chan struct{}),
	}
}

func (w *worker) run() {
	s := w.sched
	defer s.exited(&s.wg)
	if s.opts.LockOSThreads {
		lockThread(s.opts.ThreadName, s.log.WithField("worker", w.id))
	}
	for {
		select {
		case <-w.stop:
			return
		case rec := <-w.assign:
			select {
			case <-w.stop:
				return
			default:
			}
			w.execute(rec)
		}
	}
}

// execute runs rec.fn. A panic is logged and re-raised: job failures are
// fatal to the process.
func (w *worker) execute(rec *jobRecord) {
	s := w.sched
	ctx := context.Background()
	start := time.Now()
	s.metrics.queueWait.Record(ctx, start.Sub(rec.queuedAt).Seconds())

	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(log.Fields{
				"worker": w.id,
				"job":    rec.handle().String(),
				"panic":  fmt.Sprint(r),
			}).Error("job panicked")
			panic(r)
		}
	}()

	if rec.fn != nil {
		rec.fn()
	}
	s.metrics.runDuration.Record(ctx, time.Since(start).Seconds(), workerAttr(w.id))
	rec.done.Store(true)
	s.notify()
}
