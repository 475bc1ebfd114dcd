// File: internal/concurrency/slots.go
// Package concurrency implements fixed-slot allocation for job records.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// slotPool hands out stable integer indices into the job record table. Free
// indices are kept in a FIFO so a recycled slot is reused as late as possible.

package concurrency

import (
	"fmt"

	"github.com/momentics/hioload-jobs/api"
)

var _ api.SlotAllocator = (*slotPool)(nil)

// slotPool is a fixed-capacity index allocator. Guarded by the scheduler mutex.
type slotPool struct {
	free     *indexRing
	used     []bool
	inUse    int
	capacity int
}

// newSlotPool creates a pool of capacity slots, all free.
func newSlotPool(capacity int) *slotPool {
	p := &slotPool{
		free:     newIndexRing(capacity),
		used:     make([]bool, capacity),
		capacity: capacity,
	}
	for i := 0; i < capacity; i++ {
		p.free.Enqueue(uint32(i))
	}
	return p
}

// Alloc reserves a slot; ok is false when the pool is exhausted.
func (p *slotPool) Alloc() (index uint32, ok bool) {
	index, ok = p.free.Dequeue()
	if !ok {
		return 0, false
	}
	p.used[index] = true
	p.inUse++
	return index, true
}

// Free returns index to the pool. Freeing an unused slot panics.
func (p *slotPool) Free(index uint32) {
	if int(index) >= p.capacity || !p.used[index] {
		panic(fmt.Sprintf("slot pool: free of unallocated slot %d", index))
	}
	p.used[index] = false
	p.inUse--
	p.free.Enqueue(index)
}

// IsUsed reports whether index is currently allocated.
func (p *slotPool) IsUsed(index uint32) bool {
	return int(index) < p.capacity && p.used[index]
}

// InUse returns the number of allocated slots.
func (p *slotPool) InUse() int { return p.inUse }

// Cap returns the fixed number of slots.
func (p *slotPool) Cap() int { return p.capacity }
