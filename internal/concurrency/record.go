// File: internal/concurrency/record.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-jobs/api"
)

// jobRecord is the mutable state behind one handle. Every field except done
// is written under the scheduler mutex; the worker reads them after receiving
// the record on its assignment channel.
//
// done is written once by the worker and read by the dispatcher's retire pass.
type jobRecord struct {
	fn        api.JobFunc
	dependsOn api.JobHandle
	index     uint32
	version   uint32
	queuedAt  time.Time
	done      atomic.Bool
}

func (r *jobRecord) handle() api.JobHandle {
	return api.JobHandle{Index: r.index, Version: r.version}
}

// clear drops the closure so captured state can be collected.
func (r *jobRecord) clear() {
	r.fn = nil
	r.dependsOn = api.InvalidHandle
	r.version = api.SentinelVersion
	r.queuedAt = time.Time{}
}
