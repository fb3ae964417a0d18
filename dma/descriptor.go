// Package dma provides the block mover that walks a burst descriptor and
// moves one byte at a time between the storage and the serial engine.
package dma

import "fmt"

// Direction is the direction of a burst relative to the storage.
type Direction int

// Directions of a burst.
const (
	// Egress reads the storage and sends the bytes out.
	Egress Direction = iota

	// Ingress receives bytes and writes them into the storage.
	Ingress
)

func (d Direction) String() string {
	switch d {
	case Egress:
		return "Egress"
	case Ingress:
		return "Ingress"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// A Descriptor describes a burst. Remaining is zero when no burst is active.
type Descriptor struct {
	BaseAddress uint32
	Direction   Direction
	Remaining   uint32
	IRQ         bool
}

// A MovedByte is reported every time the mover completes a byte.
type MovedByte struct {
	Address   uint32
	Data      byte
	Direction Direction
}

// IngressFiller is the byte sent out to clock in one byte of an ingress
// burst.
const IngressFiller byte = 0xFF
