package dma

import (
	"log"

	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/sim"
)

// Hook positions of the mover. The byte hook carries a MovedByte. The done
// hook carries the finished Descriptor.
var (
	HookPosByteMoved = &sim.HookPos{Name: "Byte Moved"}
	HookPosBurstDone = &sim.HookPos{Name: "Burst Done"}
)

// A Bus routes the responses of the storage transactions.
type Bus interface {
	ResponseFor(id bus.RequesterID) bus.Response
}

// A SerialLink is the serial side of the mover. PushTx hands a byte to the
// engine through the transmit queue. Exchanged reports the byte received by
// an exchange that finished in the current cycle.
type SerialLink interface {
	PushTx(b byte) bool
	Exchanged() (byte, bool)
}

// State is the state of the mover.
type State int

// States of the mover.
const (
	StateIdle State = iota
	StateSetup
	StateReadStorage
	StateReadSerial
	StateWaitRead
	StateWriteSerial
	StateWriteStorage
	StateWaitWrite
	StateNext
	StateDone
)

var stateNames = [...]string{
	"Idle", "Setup", "ReadStorage", "ReadSerial", "WaitRead",
	"WriteSerial", "WriteStorage", "WaitWrite", "Next", "Done",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}

	return "Unknown"
}

// Mover is the block mover. It is one of the requesters of the bus arbiter.
type Mover struct {
	*sim.ComponentBase

	port   *bus.Port
	bus    Bus
	serial SerialLink

	state      State
	desc       Descriptor
	data       byte
	completion bool
	moved      uint64
}

// State returns the current state.
func (m *Mover) State() State {
	return m.state
}

// Busy tells if a burst is in progress.
func (m *Mover) Busy() bool {
	return m.state != StateIdle
}

// Descriptor returns the current descriptor. The address and the remaining
// count advance with every byte.
func (m *Mover) Descriptor() Descriptor {
	return m.desc
}

// Completion tells if the completion pulse is raised in the current cycle.
func (m *Mover) Completion() bool {
	return m.completion
}

// NumMoved returns the number of bytes moved since the mover was built.
func (m *Mover) NumMoved() uint64 {
	return m.moved
}

// Port returns the bus port of the mover.
func (m *Mover) Port() *bus.Port {
	return m.port
}

// Start begins a burst. It returns false and does nothing if a burst is in
// progress or the count is zero.
func (m *Mover) Start(d Descriptor) bool {
	if m.state != StateIdle || d.Remaining == 0 {
		return false
	}

	m.desc = d
	m.state = StateSetup

	return true
}

// Tick advances the mover by one cycle.
func (m *Mover) Tick() bool {
	m.completion = false

	switch m.state {
	case StateIdle:
		return false
	case StateSetup:
		m.setup()
	case StateReadStorage:
		m.readStorage()
	case StateReadSerial:
		m.readSerial()
	case StateWaitRead:
		m.waitRead()
	case StateWriteSerial:
		m.writeSerial()
	case StateWriteStorage:
		m.writeStorage()
	case StateWaitWrite:
		m.waitWrite()
	case StateNext:
		m.next()
	case StateDone:
		m.done()
	default:
		log.Panicf("mover %s in unknown state %d", m.Name(), m.state)
	}

	return true
}

// Latch commits the request line of the mover.
func (m *Mover) Latch() {
	m.port.Latch()
}

func (m *Mover) lane() uint32 {
	return m.desc.BaseAddress & 0x3
}

func (m *Mover) setup() {
	if m.desc.Direction == Egress {
		m.state = StateReadStorage
	} else {
		m.state = StateReadSerial
	}
}

func (m *Mover) readStorage() {
	m.port.Assert(bus.Request{
		Address:   m.desc.BaseAddress,
		Direction: bus.Read,
		Mask:      bus.LaneMask(m.desc.BaseAddress),
	})
	m.state = StateWaitRead
}

func (m *Mover) readSerial() {
	if m.serial.PushTx(IngressFiller) {
		m.state = StateWaitRead
	}
}

func (m *Mover) waitRead() {
	if m.desc.Direction == Egress {
		rsp := m.bus.ResponseFor(bus.Engine)
		if !rsp.Complete {
			return
		}

		m.port.Deassert()
		m.data = byte(rsp.ReadData >> (8 * m.lane()))
		m.state = StateWriteSerial

		return
	}

	b, ok := m.serial.Exchanged()
	if !ok {
		return
	}

	m.data = b
	m.state = StateWriteStorage
}

func (m *Mover) writeSerial() {
	if m.serial.PushTx(m.data) {
		m.state = StateWaitWrite
	}
}

func (m *Mover) writeStorage() {
	m.port.Assert(bus.Request{
		Address:   m.desc.BaseAddress,
		Direction: bus.Write,
		Mask:      bus.LaneMask(m.desc.BaseAddress),
		WriteData: uint32(m.data) << (8 * m.lane()),
	})
	m.state = StateWaitWrite
}

func (m *Mover) waitWrite() {
	if m.desc.Direction == Egress {
		if _, ok := m.serial.Exchanged(); ok {
			m.state = StateNext
		}

		return
	}

	if m.bus.ResponseFor(bus.Engine).Complete {
		m.port.Deassert()
		m.state = StateNext
	}
}

func (m *Mover) next() {
	if m.NumHooks() > 0 {
		m.InvokeHook(sim.HookCtx{
			Domain: m,
			Pos:    HookPosByteMoved,
			Item: MovedByte{
				Address:   m.desc.BaseAddress,
				Data:      m.data,
				Direction: m.desc.Direction,
			},
		})
	}

	m.desc.BaseAddress++
	m.desc.Remaining--
	m.moved++

	if m.desc.Remaining == 0 {
		m.state = StateDone
	} else {
		m.state = StateSetup
	}
}

func (m *Mover) done() {
	m.completion = m.desc.IRQ
	m.state = StateIdle

	m.InvokeHook(sim.HookCtx{
		Domain: m,
		Pos:    HookPosBurstDone,
		Item:   m.desc,
	})
}

// SetBus connects the arbiter that routes the responses.
func (m *Mover) SetBus(b Bus) {
	m.bus = b
}
