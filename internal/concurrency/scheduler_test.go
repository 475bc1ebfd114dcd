package concurrency

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-jobs/api"
)

func TestScheduler_JobRunsAndCompletes(t *testing.T) {
	s := newTestScheduler(t, 4, 64)
	var ran atomic.Bool
	h, err := s.Submit(func() { ran.Store(true) }, api.InvalidHandle)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if h.IsZero() {
		t.Fatal("got invalid handle")
	}
	waitDone(t, s, h, time.Second)
	if !ran.Load() {
		t.Fatal("IsDone true before job ran")
	}
}

// A write made by the job is visible once IsDone first reports true.
func TestScheduler_CompletionHappensBefore(t *testing.T) {
	s := newTestScheduler(t, 4, 64)
	type payload struct{ value int }
	for i := 0; i < 100; i++ {
		p := &payload{}
		h := s.CreateJob(func() { p.value = 0xC0FFEE }, api.InvalidHandle)
		waitDone(t, s, h, time.Second)
		if p.value != 0xC0FFEE {
			t.Fatalf("iteration %d: value = %#x after IsDone", i, p.value)
		}
	}
}

func TestScheduler_DependencyOrdering(t *testing.T) {
	s := newTestScheduler(t, 1, 2)

	type payload struct {
		value int
		aSeq  int64
		bSeq  int64
	}
	var seq atomic.Int64
	p := &payload{}

	a := s.CreateJob(func() {
		time.Sleep(50 * time.Millisecond)
		p.value = 1
		p.aSeq = seq.Add(1)
	}, api.InvalidHandle)
	b := s.CreateJob(func() {
		p.value = 2
		p.bSeq = seq.Add(1)
	}, a)
	if a.IsZero() || b.IsZero() {
		t.Fatalf("submission failed: a=%s b=%s", a, b)
	}
	if s.IsDone(a) || s.IsDone(b) {
		t.Fatal("jobs reported done immediately after submission")
	}

	time.Sleep(200 * time.Millisecond)
	if !s.IsDone(a) || !s.IsDone(b) {
		t.Fatalf("not done after 200ms: a=%v b=%v", s.IsDone(a), s.IsDone(b))
	}
	if p.value != 2 {
		t.Errorf("value = %d, want 2", p.value)
	}
	if p.aSeq >= p.bSeq {
		t.Errorf("B ran before A: aSeq=%d bSeq=%d", p.aSeq, p.bSeq)
	}
}

func TestScheduler_DependentNeverStartsEarly(t *testing.T) {
	s := newTestScheduler(t, 8, 256)
	var violations atomic.Int32
	var handles []api.JobHandle
	for i := 0; i < 64; i++ {
		var parentDone atomic.Bool
		parent := s.CreateJob(func() {
			time.Sleep(time.Duration(i%5) * time.Millisecond)
			parentDone.Store(true)
		}, api.InvalidHandle)
		child := s.CreateJob(func() {
			if !parentDone.Load() || !s.IsDone(parent) {
				violations.Add(1)
			}
		}, parent)
		handles = append(handles, parent, child)
	}
	for _, h := range handles {
		waitDone(t, s, h, 2*time.Second)
	}
	if n := violations.Load(); n != 0 {
		t.Fatalf("%d dependent jobs started before their dependency finished", n)
	}
}

func TestScheduler_StaleDependencyIsSatisfied(t *testing.T) {
	s := newTestScheduler(t, 2, 16)
	var ran atomic.Bool
	h := s.CreateJob(func() { ran.Store(true) }, api.JobHandle{Index: 5, Version: api.SentinelVersion})
	waitDone(t, s, h, time.Second)
	if !ran.Load() {
		t.Fatal("job with never-issued dependency did not run")
	}

	// a retired handle is also no longer a blocker
	first := s.CreateJob(func() {}, api.InvalidHandle)
	waitDone(t, s, first, time.Second)
	second := s.CreateJob(func() {}, first)
	waitDone(t, s, second, time.Second)
}

func TestScheduler_CapacityExhaustion(t *testing.T) {
	const capacity = 4
	s := newTestScheduler(t, 1, capacity)
	gate := make(chan struct{})
	for i := 0; i < capacity; i++ {
		if _, err := s.Submit(func() { <-gate }, api.InvalidHandle); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	start := time.Now()
	h, err := s.Submit(func() {}, api.InvalidHandle)
	if !errors.Is(err, api.ErrCapacityExhausted) {
		t.Fatalf("err = %v, want ErrCapacityExhausted", err)
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Code != api.ErrCodeResourceExhausted {
		t.Fatalf("err = %#v, want code ErrCodeResourceExhausted", err)
	}
	if h != api.InvalidHandle {
		t.Fatalf("handle = %s, want invalid", h)
	}
	if el := time.Since(start); el > 100*time.Millisecond {
		t.Errorf("rejected submission took %v", el)
	}
	if got := s.CreateJob(nil, api.InvalidHandle); !got.IsZero() {
		t.Errorf("CreateJob at capacity = %s, want {0,0}", got)
	}
	if s.Stats()["rejected"] != 2 {
		t.Errorf("rejected = %d, want 2", s.Stats()["rejected"])
	}

	close(gate)
	deadline := time.Now().Add(time.Second)
	for s.Stats()["slots_in_use"] != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("slots not reclaimed: %v", s.Stats())
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := s.Submit(func() {}, api.InvalidHandle); err != nil {
		t.Fatalf("Submit after reclaim: %v", err)
	}
}

func TestScheduler_LiveHandlesAreUnique(t *testing.T) {
	const capacity = 128
	s := newTestScheduler(t, 4, capacity)
	gate := make(chan struct{})

	var mu sync.Mutex
	live := make(map[api.JobHandle]bool)
	var g errgroup.Group
	for p := 0; p < 8; p++ {
		g.Go(func() error {
			for i := 0; i < capacity/8; i++ {
				h, err := s.Submit(func() { <-gate }, api.InvalidHandle)
				if err != nil {
					return err
				}
				mu.Lock()
				if live[h] {
					mu.Unlock()
					return errors.New("duplicate live handle " + h.String())
				}
				live[h] = true
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if len(live) != capacity {
		t.Fatalf("got %d live handles, want %d", len(live), capacity)
	}
	close(gate)
	for h := range live {
		waitDone(t, s, h, 2*time.Second)
	}
}

func TestScheduler_VersionsIncreasePerSlot(t *testing.T) {
	s := newTestScheduler(t, 1, 1)
	var last uint32
	for i := 0; i < 20; i++ {
		h := s.CreateJob(func() {}, api.InvalidHandle)
		if h.IsZero() {
			// the previous job may not be retired yet
			i--
			time.Sleep(time.Millisecond)
			continue
		}
		if h.Index != 0 {
			t.Fatalf("single-slot scheduler issued index %d", h.Index)
		}
		if h.Version <= last {
			t.Fatalf("version %d not greater than %d", h.Version, last)
		}
		last = h.Version
		waitDone(t, s, h, time.Second)
	}
}

func TestScheduler_BlockedHeadDoesNotStarveReadyJobs(t *testing.T) {
	s := newTestScheduler(t, 2, 16)
	gate := make(chan struct{})
	blocker := s.CreateJob(func() { <-gate }, api.InvalidHandle)
	dependent := s.CreateJob(func() {}, blocker)
	ready := s.CreateJob(func() {}, api.InvalidHandle)

	waitDone(t, s, ready, time.Second)
	if s.IsDone(blocker) || s.IsDone(dependent) {
		t.Fatal("blocked chain finished before the gate opened")
	}
	close(gate)
	waitDone(t, s, dependent, time.Second)
}

func TestScheduler_NilFunctionIsNoOp(t *testing.T) {
	s := newTestScheduler(t, 1, 8)
	gate := make(chan struct{})
	parent := s.CreateJob(func() { <-gate }, api.InvalidHandle)
	noop := s.CreateJob(nil, parent)
	time.Sleep(10 * time.Millisecond)
	if s.IsDone(noop) {
		t.Fatal("no-op job finished before its dependency")
	}
	close(gate)
	waitDone(t, s, noop, time.Second)

	h := s.CreateJob(nil, api.InvalidHandle)
	waitDone(t, s, h, time.Second)
}

func TestScheduler_ChainOfNoOps(t *testing.T) {
	s := newTestScheduler(t, 1, 32)
	prev := api.InvalidHandle
	var handles []api.JobHandle
	for i := 0; i < 16; i++ {
		prev = s.CreateJob(nil, prev)
		handles = append(handles, prev)
	}
	var ran atomic.Bool
	last := s.CreateJob(func() { ran.Store(true) }, prev)
	waitDone(t, s, last, time.Second)
	for _, h := range handles {
		if !s.IsDone(h) {
			t.Fatalf("%s not done", h)
		}
	}
	if !ran.Load() {
		t.Fatal("tail job did not run")
	}
}

func TestScheduler_PollIntervalAndLockedThreads(t *testing.T) {
	s := NewScheduler(Options{
		Workers:       2,
		MaxJobs:       8,
		PollInterval:  time.Millisecond,
		LockOSThreads: true,
		Logger:        quietLogger(),
	})
	defer s.Shutdown()
	h := s.CreateJob(func() {}, api.InvalidHandle)
	waitDone(t, s, h, time.Second)
}

func TestScheduler_ShutdownStopsEverything(t *testing.T) {
	s := NewScheduler(Options{Workers: 4, MaxJobs: 16, Logger: quietLogger()})
	if got := s.Running(); got != 5 {
		t.Fatalf("Running = %d, want 5 (4 workers + dispatcher)", got)
	}
	gate := make(chan struct{})
	blocker := s.CreateJob(func() { <-gate }, api.InvalidHandle)
	queued := s.CreateJob(func() {}, blocker)
	time.AfterFunc(20*time.Millisecond, func() { close(gate) })

	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got := s.Running(); got != 0 {
		t.Fatalf("Running after Shutdown = %d, want 0", got)
	}
	if !s.IsDone(blocker) || !s.IsDone(queued) {
		t.Error("handles still pending after Shutdown")
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
	if st := s.Stats(); st["slots_in_use"] != 0 {
		t.Errorf("slots_in_use after Shutdown = %d", st["slots_in_use"])
	}
}

func TestScheduler_StatsAfterWorkload(t *testing.T) {
	s := NewScheduler(Options{Workers: 4, MaxJobs: 64, Logger: quietLogger()})
	var handles []api.JobHandle
	for i := 0; i < 32; i++ {
		handles = append(handles, s.CreateJob(func() {}, api.InvalidHandle))
	}
	for _, h := range handles {
		waitDone(t, s, h, time.Second)
	}
	_ = s.Shutdown()
	st := s.Stats()
	if st["submitted"] != 32 || st["completed"] != 32 {
		t.Fatalf("stats = %v", st)
	}
	if st["workers"] != 4 || st["max_jobs"] != 64 {
		t.Errorf("sizing stats = %v", st)
	}
}
