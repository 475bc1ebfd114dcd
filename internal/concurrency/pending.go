// File: internal/concurrency/pending.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FIFO of slot indices waiting for a worker.

package concurrency

import "github.com/eapache/queue"

// pendingQueue holds slot indices in submission order. Guarded by the
// scheduler mutex; it never holds more than the slot pool capacity.
type pendingQueue struct {
	q *queue.Queue
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{q: queue.New()}
}

// Push appends index at the back.
func (p *pendingQueue) Push(index uint32) {
	p.q.Add(index)
}

// Pop removes the front index; ok false if empty.
func (p *pendingQueue) Pop() (index uint32, ok bool) {
	if p.q.Length() == 0 {
		return 0, false
	}
	return p.q.Remove().(uint32), true
}

// Len returns the number of queued indices.
func (p *pendingQueue) Len() int {
	return p.q.Length()
}

// Drain empties the queue and returns the indices it held.
func (p *pendingQueue) Drain() []uint32 {
	out := make([]uint32, 0, p.q.Length())
	for p.q.Length() > 0 {
		out = append(out, p.q.Remove().(uint32))
	}
	return out
}
