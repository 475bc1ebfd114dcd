// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines the fixed-slot allocator behind job records.

package api

// SlotAllocator hands out stable integer indices in [0, Cap()).
// An index stays valid and unique until it is passed to Free.
type SlotAllocator interface {
	// Alloc reserves a slot, returns false when every slot is taken.
	Alloc() (index uint32, ok bool)

	// Free returns a slot for reuse.
	Free(index uint32)

	// IsUsed reports whether index is currently reserved.
	IsUsed(index uint32) bool

	// InUse returns the number of reserved slots.
	InUse() int

	// Cap returns the fixed number of slots.
	Cap() int
}
