// Package irq provides the consumer side of the completion line.
package irq

// An EdgeDetector counts the rising edges of a pulsed line. The line is
// sampled once per cycle and compared with the sample of the previous cycle,
// so every pulse is counted once no matter how long it is held.
type EdgeDetector struct {
	last    bool
	pending int
	total   uint64
}

// Sample observes the level of the line for the current cycle.
func (d *EdgeDetector) Sample(level bool) {
	if level && !d.last {
		d.pending++
		d.total++
	}

	d.last = level
}

// Pending returns the number of edges not taken yet.
func (d *EdgeDetector) Pending() int {
	return d.pending
}

// Take consumes one pending edge. It returns false if there is none.
func (d *EdgeDetector) Take() bool {
	if d.pending == 0 {
		return false
	}

	d.pending--

	return true
}

// Clear drops the pending edges. The total is kept.
func (d *EdgeDetector) Clear() {
	d.pending = 0
}

// Total returns the number of edges seen since the detector was created.
func (d *EdgeDetector) Total() uint64 {
	return d.total
}
