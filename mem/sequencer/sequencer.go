// Package sequencer provides the word-width adapter that turns 32-bit bus
// transactions into 16-bit native accesses of the storage device.
package sequencer

import (
	"log"

	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/mem"
	"github.com/sarchlab/spidma/sim"
)

// Hook positions of the sequencer. Transaction hooks carry the bus.Request as
// the item. The end hook carries the bus.Response as the detail. The native
// access hook carries a mem.NativeAccess as the item.
var (
	HookPosTransStart   = &sim.HookPos{Name: "Trans Start"}
	HookPosTransEnd     = &sim.HookPos{Name: "Trans End"}
	HookPosNativeAccess = &sim.HookPos{Name: "Native Access"}
)

// A Device is the native storage device driven by the sequencer.
type Device interface {
	Drive(p mem.Pins) uint16
}

// State is the state of the sequencer.
type State int

// States of the sequencer.
const (
	StateIdle State = iota
	StateSetup
	StateRead
	StateStrobe
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSetup:
		return "Setup"
	case StateRead:
		return "Read"
	case StateStrobe:
		return "Strobe"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

type nativeOp struct {
	half  int
	write bool
}

// Comp is the sequencer. It services one request at a time. A new request is
// accepted only when the completion of the previous one is no longer
// visible, so a requester that holds its request for one cycle after the
// completion is never serviced twice.
type Comp struct {
	*sim.ComponentBase

	source bus.Source
	device Device

	state State
	req   bus.Request
	plan  []nativeOp
	step  int
	halfs [2]uint16

	response *sim.Signal[bus.Response]

	numAccepted uint64
}

// SetSource connects the component that forwards the requests.
func (c *Comp) SetSource(s bus.Source) {
	c.source = s
}

// State returns the current state.
func (c *Comp) State() State {
	return c.state
}

// NumAccepted returns the number of accepted requests.
func (c *Comp) NumAccepted() uint64 {
	return c.numAccepted
}

// Response returns the latched response.
func (c *Comp) Response() bus.Response {
	return c.response.Get()
}

// Tick advances the sequencer by one cycle. The device pins are driven exactly
// once per cycle.
func (c *Comp) Tick() bool {
	switch c.state {
	case StateIdle:
		return c.idle()
	case StateSetup:
		c.setup()
	case StateRead:
		c.read()
	case StateStrobe:
		c.strobe()
	case StateDone:
		c.done()
	default:
		log.Panicf("sequencer %s in unknown state %d", c.Name(), c.state)
	}

	return true
}

// Latch commits the response.
func (c *Comp) Latch() {
	c.response.Latch()
}

func (c *Comp) idle() bool {
	c.response.Set(bus.Response{})

	req, pending := c.source.Forwarded()
	if !pending || c.response.Get().Complete {
		c.device.Drive(mem.Pins{})
		return pending
	}

	c.accept(req)

	if len(c.plan) == 0 {
		c.device.Drive(mem.Pins{})
		c.state = StateDone

		return true
	}

	c.setup()

	return true
}

func (c *Comp) accept(req bus.Request) {
	c.req = req
	c.plan = buildPlan(req)
	c.step = 0
	c.halfs = [2]uint16{}
	c.numAccepted++

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosTransStart,
		Item:   req,
	})
}

func buildPlan(req bus.Request) []nativeOp {
	plan := make([]nativeOp, 0, 4)

	for half := 0; half < 2; half++ {
		m := req.Mask.Half(half)

		switch {
		case req.Direction == bus.Read:
			plan = append(plan, nativeOp{half: half})
		case m == 0x3:
			plan = append(plan, nativeOp{half: half, write: true})
		case m != 0:
			plan = append(plan,
				nativeOp{half: half},
				nativeOp{half: half, write: true})
		}
	}

	return plan
}

func (c *Comp) cell(half int) uint32 {
	return (c.req.Address>>2)*2 + uint32(half)
}

func (c *Comp) writeValue(half int) uint16 {
	v := uint16(c.req.WriteData >> (16 * half))
	m := c.req.Mask.Half(half)

	var keep uint16
	if m&0x1 == 0 {
		keep |= 0x00ff
	}

	if m&0x2 == 0 {
		keep |= 0xff00
	}

	return (c.halfs[half] & keep) | (v &^ keep)
}

func (c *Comp) pins(op nativeOp) mem.Pins {
	p := mem.Pins{Address: c.cell(op.half), CE: true}
	if op.write {
		p.Data = c.writeValue(op.half)
	}

	return p
}

func (c *Comp) setup() {
	op := c.plan[c.step]
	c.device.Drive(c.pins(op))

	if op.write {
		c.state = StateStrobe
	} else {
		c.state = StateRead
	}
}

func (c *Comp) read() {
	op := c.plan[c.step]
	p := c.pins(op)
	p.OE = true

	data := c.device.Drive(p)
	c.halfs[op.half] = data
	c.traceNative(p.Address, false, data)

	c.next()
}

func (c *Comp) strobe() {
	op := c.plan[c.step]
	p := c.pins(op)
	p.WE = true

	c.device.Drive(p)
	c.traceNative(p.Address, true, p.Data)

	c.next()
}

func (c *Comp) next() {
	c.step++
	if c.step < len(c.plan) {
		c.state = StateSetup
		return
	}

	c.state = StateDone
}

func (c *Comp) done() {
	c.device.Drive(mem.Pins{})

	rsp := bus.Response{
		Owner:    c.req.Owner,
		ReqID:    c.req.ID,
		Complete: true,
	}

	if c.req.Direction == bus.Read {
		rsp.ReadData = uint32(c.halfs[0]) | uint32(c.halfs[1])<<16
	}

	c.response.Set(rsp)
	c.state = StateIdle

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosTransEnd,
		Item:   c.req,
		Detail: rsp,
	})
}

func (c *Comp) traceNative(cell uint32, write bool, data uint16) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosNativeAccess,
		Item:   mem.NativeAccess{Cell: cell, Write: write, Data: data},
	})
}
