package control

import (
	"testing"
	"time"
)

func TestConfigStoreSnapshotAndReload(t *testing.T) {
	cs := NewConfigStore()
	calls := 0
	cs.OnReload(func() {
		calls++
		if v, _ := cs.Get("log_level"); v != "debug" {
			t.Errorf("listener saw log_level=%v", v)
		}
	})
	cs.SetConfig(map[string]any{"log_level": "debug"})
	if calls != 1 {
		t.Fatalf("listener called %d times, want 1", calls)
	}
	snap := cs.GetSnapshot()
	snap["log_level"] = "mutated"
	if v, _ := cs.Get("log_level"); v != "debug" {
		t.Error("snapshot aliases the store")
	}
}

func TestDebugProbesDump(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp)
	dp.RegisterProbe("answer", func() any { return 42 })
	state := dp.DumpState()
	if state["answer"] != 42 {
		t.Errorf("answer = %v", state["answer"])
	}
	if n, ok := state["platform.cpus"].(int); !ok || n < 1 {
		t.Errorf("platform.cpus = %v", state["platform.cpus"])
	}
}

func TestMetricsRegistry(t *testing.T) {
	mr := NewMetricsRegistry()
	clock := time.Unix(1000, 0)
	mr.now = func() time.Time { return clock }

	if !mr.Updated().IsZero() {
		t.Fatal("fresh registry has update time")
	}
	if _, ok := mr.Since("jobs.mode"); ok {
		t.Fatal("Since reported an unset key")
	}
	mr.Set("jobs.mode", "threaded")
	if v, ok := mr.Lookup("jobs.mode"); !ok || v != "threaded" {
		t.Fatalf("Lookup = %v, %v", v, ok)
	}
	if !mr.Updated().Equal(clock) {
		t.Errorf("Updated = %v, want %v", mr.Updated(), clock)
	}

	clock = clock.Add(3 * time.Second)
	if d, ok := mr.Since("jobs.mode"); !ok || d != 3*time.Second {
		t.Errorf("Since = %v, %v; want 3s", d, ok)
	}
	mr.Set("jobs.mode", "stopped")
	if d, _ := mr.Since("jobs.mode"); d != 0 {
		t.Errorf("Since after reset = %v, want 0", d)
	}

	snap := mr.GetSnapshot()
	if snap["jobs.mode"] != "stopped" || len(snap) != 1 {
		t.Errorf("snapshot = %v", snap)
	}
}
