// File: internal/concurrency/ring.go
// Package concurrency implements bounded index rings.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// indexRing is a power-of-two circular buffer of slot indices. It is not
// synchronized: every caller holds the scheduler mutex.

package concurrency

import "github.com/momentics/hioload-jobs/api"

var _ api.Ring[uint32] = (*indexRing)(nil)

// indexRing is a fixed-capacity FIFO of uint32 slot indices.
type indexRing struct {
	data []uint32
	mask uint64
	head uint64
	tail uint64
}

// newIndexRing allocates a ring able to hold at least capacity entries.
func newIndexRing(capacity int) *indexRing {
	size := nextPowerOfTwo(uint32(capacity))
	return &indexRing{
		data: make([]uint32, size),
		mask: uint64(size - 1),
	}
}

// Enqueue adds v; returns false if full.
func (r *indexRing) Enqueue(v uint32) bool {
	if r.tail-r.head >= uint64(len(r.data)) {
		return false
	}
	r.data[r.tail&r.mask] = v
	r.tail++
	return true
}

// Dequeue removes and returns the oldest index; ok false if empty.
func (r *indexRing) Dequeue() (v uint32, ok bool) {
	if r.head == r.tail {
		return 0, false
	}
	v = r.data[r.head&r.mask]
	r.head++
	return v, true
}

// Len returns number of indices currently held.
func (r *indexRing) Len() int {
	return int(r.tail - r.head)
}

// Cap returns the ring capacity (rounded to a power of two).
func (r *indexRing) Cap() int {
	return len(r.data)
}

// nextPowerOfTwo rounds n up to a power of two, minimum 2.
func nextPowerOfTwo(n uint32) uint32 {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}
