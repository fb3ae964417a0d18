package spi

import (
	"log"

	"github.com/sarchlab/spidma/sim"
)

// Hook positions of the engine. The item is the byte sent for the start hook
// and the byte received for the end hook.
var (
	HookPosExchangeStart = &sim.HookPos{Name: "Exchange Start"}
	HookPosExchangeEnd   = &sim.HookPos{Name: "Exchange End"}
)

// State is the state of the engine.
type State int

// States of the engine.
const (
	StateIdle State = iota
	StateTransmitting
	StateFinishing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateTransmitting:
		return "Transmitting"
	case StateFinishing:
		return "Finishing"
	default:
		return "Unknown"
	}
}

// Engine shifts one byte out while shifting one byte in.
type Engine struct {
	*sim.ComponentBase

	device  Device
	mode    Mode
	divider int

	state    State
	counter  int
	edges    int
	driven   int
	tx       byte
	shiftIn  byte
	rx       byte
	finished bool

	pins *sim.Signal[Pins]
}

// Mode returns the current mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Divider returns the current divider selector.
func (e *Engine) Divider() int {
	return e.divider
}

// Configure sets the mode and the divider. The clock line moves to the idle
// level of the new mode.
func (e *Engine) Configure(mode Mode, divider int) {
	if e.state != StateIdle {
		log.Panicf("engine %s reconfigured while busy", e.Name())
	}

	if divider < MinDivider || divider > MaxDivider {
		log.Panicf("engine %s: divider %d out of range", e.Name(), divider)
	}

	e.mode = mode
	e.divider = divider

	p := e.pins.Next()
	p.SCK = mode.CPOL
	e.pins.Set(p)
}

// SetSelect drives the select line.
func (e *Engine) SetSelect(selected bool) {
	p := e.pins.Next()
	p.Select = selected
	e.pins.Set(p)
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Busy tells if an exchange is in progress.
func (e *Engine) Busy() bool {
	return e.state != StateIdle
}

// Done tells if an exchange finished in the current cycle.
func (e *Engine) Done() bool {
	return e.finished
}

// RxByte returns the byte received by the last exchange.
func (e *Engine) RxByte() byte {
	return e.rx
}

// Pins returns the pins latched at the last edge.
func (e *Engine) Pins() Pins {
	return e.pins.Get()
}

// Start begins the exchange of a byte. In mode 0 and 2, the first bit is
// driven before the first clock edge.
func (e *Engine) Start(b byte) {
	if e.state != StateIdle {
		log.Panicf("engine %s started while busy", e.Name())
	}

	e.state = StateTransmitting
	e.tx = b
	e.shiftIn = 0
	e.counter = 0
	e.edges = 0
	e.driven = 0

	if !e.mode.CPHA {
		e.driveNextBit()
	}

	e.InvokeHook(sim.HookCtx{
		Domain: e,
		Pos:    HookPosExchangeStart,
		Item:   b,
	})
}

// Tick drives the device with the latched pins and produces the clock edge
// of the cycle, if any.
func (e *Engine) Tick() bool {
	e.finished = false
	miso := e.device.Drive(e.pins.Get())

	switch e.state {
	case StateIdle:
		return false
	case StateTransmitting:
		e.counter++
		if e.counter == 1<<e.divider {
			e.counter = 0
			e.edge(miso)
		}
	case StateFinishing:
		e.finish()
	}

	return true
}

// Latch commits the pins.
func (e *Engine) Latch() {
	e.pins.Latch()
}

func (e *Engine) edge(miso bool) {
	leading := e.edges%2 == 0
	e.edges++

	p := e.pins.Next()
	p.SCK = !p.SCK
	e.pins.Set(p)

	if leading != e.mode.CPHA {
		e.shiftIn <<= 1
		if miso {
			e.shiftIn |= 1
		}
	} else {
		e.driveNextBit()
	}

	if e.edges == EdgesPerByte {
		e.state = StateFinishing
	}
}

func (e *Engine) driveNextBit() {
	if e.driven >= 8 {
		return
	}

	p := e.pins.Next()
	p.MOSI = e.tx&(0x80>>e.driven) != 0
	e.pins.Set(p)
	e.driven++
}

func (e *Engine) finish() {
	e.state = StateIdle
	e.rx = e.shiftIn
	e.finished = true

	e.InvokeHook(sim.HookCtx{
		Domain: e,
		Pos:    HookPosExchangeEnd,
		Item:   e.rx,
	})
}
