// File: internal/concurrency/versions.go
// Package concurrency implements the job handle validity protocol.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The version table maps a slot index to the version last stamped into it, or
// to api.SentinelVersion while the slot is free. A handle is pending only
// while its version is the one recorded for its slot.

package concurrency

import "github.com/momentics/hioload-jobs/api"

// versionTable is guarded by the scheduler mutex.
type versionTable struct {
	entries []uint32
	next    uint32
}

func newVersionTable(size int) *versionTable {
	t := &versionTable{
		entries: make([]uint32, size),
		next:    1,
	}
	t.reset()
	return t
}

// nextVersion returns the next value of the counter. 0 and the sentinel are
// never issued, so a wrapped counter cannot produce the invalid handle.
func (t *versionTable) nextVersion() uint32 {
	v := t.next
	t.next++
	if t.next == api.SentinelVersion {
		t.next = 1
	}
	return v
}

// stamp writes a fresh version for index and returns it.
func (t *versionTable) stamp(index uint32) uint32 {
	v := t.nextVersion()
	t.entries[index] = v
	return v
}

// retire marks index free.
func (t *versionTable) retire(index uint32) {
	t.entries[index] = api.SentinelVersion
}

// pending reports whether h still names a queued or running job. Handles that
// were never issued, the invalid handle and out-of-range indices are not pending.
func (t *versionTable) pending(h api.JobHandle) bool {
	if int(h.Index) >= len(t.entries) {
		return false
	}
	if h.Version == 0 || h.Version == api.SentinelVersion {
		return false
	}
	return t.entries[h.Index] == h.Version
}

// reset writes the sentinel into every entry.
func (t *versionTable) reset() {
	for i := range t.entries {
		t.entries[i] = api.SentinelVersion
	}
}
