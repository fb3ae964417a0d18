// Package bus defines the transaction protocol shared by the requesters and
// the storage sequencer, and the fixed-priority arbiter between them.
package bus

import "fmt"

// Direction tells if a transaction reads or writes the storage.
type Direction int

// Directions of a transaction.
const (
	Read Direction = iota
	Write
)

func (d Direction) String() string {
	switch d {
	case Read:
		return "Read"
	case Write:
		return "Write"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ByteMask selects the byte lanes of a 32-bit word that take part in a
// transaction. Bit i is lane i, and lane 0 is the lowest address.
type ByteMask uint8

// Common masks.
const (
	MaskNone ByteMask = 0x0
	MaskLow  ByteMask = 0x3
	MaskHigh ByteMask = 0xc
	MaskAll  ByteMask = 0xf
)

// LaneMask returns the mask that selects only the lane of the given byte
// address.
func LaneMask(addr uint32) ByteMask {
	return ByteMask(1 << (addr & 0x3))
}

// Has tells if the lane is selected.
func (m ByteMask) Has(lane int) bool {
	return m&(1<<lane) != 0
}

// Half returns the two-bit mask of the low (0) or high (1) half-word.
func (m ByteMask) Half(half int) ByteMask {
	return (m >> (2 * half)) & 0x3
}

// RequesterID identifies the requesters attached to the arbiter.
type RequesterID int

// The requesters. The processor always has the priority.
const (
	Processor RequesterID = iota
	Engine
)

func (r RequesterID) String() string {
	switch r {
	case Processor:
		return "Processor"
	case Engine:
		return "Engine"
	default:
		return fmt.Sprintf("Requester(%d)", int(r))
	}
}

// A Request is an atomic access to the storage.
type Request struct {
	ID        string
	Owner     RequesterID
	Address   uint32
	Direction Direction
	Mask      ByteMask
	WriteData uint32
}

// A Response reports the completion of a request. It is valid for exactly
// one cycle.
type Response struct {
	Owner    RequesterID
	ReqID    string
	ReadData uint32
	Complete bool
}

// A Source provides the request to be serviced in the current cycle.
type Source interface {
	Forwarded() (Request, bool)
}

// A Target services requests and exposes the latched response.
type Target interface {
	Response() Response
}
