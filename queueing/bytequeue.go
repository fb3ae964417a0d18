// Package queueing provides the fixed-capacity byte queue of the serial
// peripheral.
package queueing

import "github.com/sarchlab/spidma/sim"

// HookPosQueuePush marks when a byte is pushed into the queue.
var HookPosQueuePush = &sim.HookPos{Name: "Queue Push"}

// HookPosQueuePop marks when a byte is popped from the queue.
var HookPosQueuePop = &sim.HookPos{Name: "Queue Pop"}

// Capacity is the number of bytes a queue holds.
const Capacity = 512

// A ByteQueue is a circular buffer of bytes. It accepts at most one push and
// one pop per cycle. Both are judged against the occupancy latched at the
// start of the cycle, and Latch applies the net change in one step. A push
// while full and a pop while empty are rejected.
type ByteQueue struct {
	sim.HookableBase

	name   string
	arena  [Capacity]byte
	wr, rd int
	count  int

	pushed bool
	popped bool
}

// NewByteQueue creates an empty queue.
func NewByteQueue(name string) *ByteQueue {
	return &ByteQueue{name: name}
}

// Name returns the name of the queue.
func (q *ByteQueue) Name() string {
	return q.name
}

// Capacity returns the number of bytes the queue can hold.
func (q *ByteQueue) Capacity() int {
	return Capacity
}

// Size returns the occupancy latched at the last edge.
func (q *ByteQueue) Size() int {
	return q.count
}

// Full tells if the latched occupancy reached the capacity.
func (q *ByteQueue) Full() bool {
	return q.count == Capacity
}

// Empty tells if the latched occupancy is zero.
func (q *ByteQueue) Empty() bool {
	return q.count == 0
}

// CanPush tells if a push in the current cycle would be accepted.
func (q *ByteQueue) CanPush() bool {
	return !q.pushed && q.count < Capacity
}

// CanPop tells if a pop in the current cycle would be accepted.
func (q *ByteQueue) CanPop() bool {
	return !q.popped && q.count > 0
}

// Push stores a byte at the write cursor. It returns false and changes
// nothing if the push is rejected.
func (q *ByteQueue) Push(b byte) bool {
	if !q.CanPush() {
		return false
	}

	q.arena[q.wr] = b
	q.wr = (q.wr + 1) % Capacity
	q.pushed = true

	if q.NumHooks() > 0 {
		q.InvokeHook(sim.HookCtx{
			Domain: q,
			Pos:    HookPosQueuePush,
			Item:   b,
		})
	}

	return true
}

// Peek returns the byte at the read cursor without removing it. A byte popped
// in the current cycle is no longer visible.
func (q *ByteQueue) Peek() (byte, bool) {
	if q.count == 0 || (q.popped && q.count == 1) {
		return 0, false
	}

	return q.arena[q.rd], true
}

// Pop removes the byte at the read cursor. It returns false and changes
// nothing if the pop is rejected.
func (q *ByteQueue) Pop() (byte, bool) {
	if !q.CanPop() {
		return 0, false
	}

	b := q.arena[q.rd]
	q.rd = (q.rd + 1) % Capacity
	q.popped = true

	if q.NumHooks() > 0 {
		q.InvokeHook(sim.HookCtx{
			Domain: q,
			Pos:    HookPosQueuePop,
			Item:   b,
		})
	}

	return b, true
}

// Latch applies the push and pop of the cycle to the occupancy.
func (q *ByteQueue) Latch() {
	if q.pushed {
		q.count++
	}

	if q.popped {
		q.count--
	}

	q.pushed = false
	q.popped = false
}

// Clear empties the queue.
func (q *ByteQueue) Clear() {
	q.wr = 0
	q.rd = 0
	q.count = 0
	q.pushed = false
	q.popped = false
}
