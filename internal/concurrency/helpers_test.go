package concurrency

import (
	"io"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/momentics/hioload-jobs/api"
)

func quietLogger() *log.Entry {
	l := log.New()
	l.SetOutput(io.Discard)
	return log.NewEntry(l)
}

func newTestScheduler(t *testing.T, workers, maxJobs int) *Scheduler {
	t.Helper()
	s := NewScheduler(Options{
		Workers: workers,
		MaxJobs: maxJobs,
		Logger:  quietLogger(),
	})
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func waitDone(t *testing.T, js api.JobSystem, h api.JobHandle, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !js.IsDone(h) {
		if time.Now().After(deadline) {
			t.Fatalf("%s not done after %v", h, timeout)
		}
		time.Sleep(time.Millisecond)
	}
}
