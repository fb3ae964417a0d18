// Package cpu models the processor as a ticking requester that runs firmware
// written as ordinary Go code.
//
// The firmware runs in its own goroutine and hands one operation at a time
// to the host. The host blocks its tick until the firmware posts the next
// operation, so a run is as deterministic as a single-threaded one.
package cpu

import (
	"log"

	"github.com/sarchlab/spidma/burstspi"
	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/irq"
	"github.com/sarchlab/spidma/sim"
)

// PeripheralBase is the address of the peripheral register window.
const PeripheralBase uint32 = 0xF000_0000

// HookPosOpStart marks when the host starts an operation of the firmware.
// The item is the Op.
var HookPosOpStart = &sim.HookPos{Name: "Op Start"}

// InPeripheralWindow tells if the address is decoded to the peripheral.
func InPeripheralWindow(addr uint32) bool {
	return addr >= PeripheralBase && addr-PeripheralBase < burstspi.WindowSize
}

// A Bus routes the responses of the storage transactions.
type Bus interface {
	ResponseFor(id bus.RequesterID) bus.Response
}

// An IRQLine is the completion line the host samples.
type IRQLine interface {
	IRQ() bool
}

// Firmware is the program run by a host.
type Firmware func(p *Proc) error

// OpKind is the kind of an operation.
type OpKind int

// Kinds of operations.
const (
	OpLoad OpKind = iota
	OpStore
	OpRegRead
	OpRegWrite
	OpIdle
	OpWaitIRQ
	OpClearIRQ
	opExit
)

// An Op is one operation requested by the firmware.
type Op struct {
	Kind    OpKind
	Address uint32
	Mask    bus.ByteMask
	Data    uint32
	Cycles  int

	err error
}

type result struct {
	data  uint32
	ok    bool
	cycle uint64
}

type hostState int

const (
	stateNoFirmware hostState = iota
	stateFetch
	stateWaitBus
	stateRegSent
	stateWaitReg
	stateIdle
	stateWaitIRQ
	stateFinished
)

// Host is the processor.
type Host struct {
	*sim.ComponentBase

	port *bus.Port
	bus  Bus
	regs *burstspi.RegPort
	line IRQLine

	edges irq.EdgeDetector

	ops     chan Op
	results chan result
	quit    chan struct{}

	state   hostState
	cur     Op
	counter int
	cycle   uint64
	err     error
}

// Port returns the bus port of the processor.
func (h *Host) Port() *bus.Port {
	return h.port
}

// SetBus connects the arbiter that routes the responses.
func (h *Host) SetBus(b Bus) {
	h.bus = b
}

// IRQEdges returns the number of completion pulses seen so far.
func (h *Host) IRQEdges() uint64 {
	return h.edges.Total()
}

// Running tells if firmware is loaded and has not returned yet.
func (h *Host) Running() bool {
	return h.state != stateNoFirmware && h.state != stateFinished
}

// Finished tells if the firmware has returned.
func (h *Host) Finished() bool {
	return h.state == stateFinished
}

// Err returns the error returned by the firmware.
func (h *Host) Err() error {
	return h.err
}

// Load starts the firmware. The firmware does not make progress until the
// host ticks.
func (h *Host) Load(fw Firmware) {
	if h.Running() {
		log.Panicf("host %s is already running firmware", h.Name())
	}

	h.ops = make(chan Op)
	h.results = make(chan result)
	h.quit = make(chan struct{})
	h.err = nil
	h.state = stateFetch

	p := &Proc{ops: h.ops, results: h.results, quit: h.quit, cycle: h.cycle}

	go func() {
		err := fw(p)

		select {
		case h.ops <- Op{Kind: opExit, err: err}:
		case <-p.quit:
		}
	}()
}

// Stop abandons the firmware. A firmware blocked in an operation exits
// without returning.
func (h *Host) Stop() {
	if !h.Running() {
		return
	}

	close(h.quit)
	h.port.Deassert()
	h.state = stateFinished
}

// Tick samples the completion line and advances the current operation.
func (h *Host) Tick() bool {
	h.cycle++
	h.edges.Sample(h.line.IRQ())

	switch h.state {
	case stateNoFirmware, stateFinished:
		return false
	case stateFetch:
		h.fetch()
	case stateWaitBus:
		h.waitBus()
	case stateRegSent:
		h.regs.Send(nil)
		h.state = stateWaitReg
	case stateWaitReg:
		h.waitReg()
	case stateIdle:
		h.idle()
	case stateWaitIRQ:
		h.waitIRQ()
	}

	return true
}

// Latch commits the request line of the processor.
func (h *Host) Latch() {
	h.port.Latch()
}

func (h *Host) fetch() {
	op := <-h.ops
	h.cur = op

	if op.Kind != opExit && h.NumHooks() > 0 {
		h.InvokeHook(sim.HookCtx{
			Domain: h,
			Pos:    HookPosOpStart,
			Item:   op,
		})
	}

	switch op.Kind {
	case OpLoad, OpStore:
		h.startBus(op)
	case OpRegRead, OpRegWrite:
		h.regs.Send(&burstspi.RegRequest{
			Offset: op.Address,
			Write:  op.Kind == OpRegWrite,
			Data:   op.Data,
		})
		h.state = stateRegSent
	case OpIdle:
		h.counter = 0
		h.state = stateIdle
		h.idle()
	case OpWaitIRQ:
		h.counter = 0
		h.state = stateWaitIRQ
		h.waitIRQ()
	case OpClearIRQ:
		h.edges.Clear()
		h.reply(result{ok: true})
	case opExit:
		h.err = op.err
		h.state = stateFinished
	default:
		log.Panicf("host %s: unknown operation %d", h.Name(), op.Kind)
	}
}

func (h *Host) reply(r result) {
	r.cycle = h.cycle
	h.results <- r
	h.state = stateFetch
}

func (h *Host) startBus(op Op) {
	req := bus.Request{
		Address:   op.Address,
		Direction: bus.Read,
		Mask:      bus.MaskAll,
	}

	if op.Kind == OpStore {
		req.Direction = bus.Write
		req.Mask = op.Mask
		req.WriteData = op.Data
	}

	h.port.Assert(req)
	h.state = stateWaitBus
}

func (h *Host) waitBus() {
	rsp := h.bus.ResponseFor(bus.Processor)
	if !rsp.Complete {
		return
	}

	h.port.Deassert()
	h.reply(result{data: rsp.ReadData, ok: true})
}

func (h *Host) waitReg() {
	rsp := h.regs.Response()
	if !rsp.Valid {
		return
	}

	h.reply(result{data: rsp.Data, ok: rsp.Ack})
}

func (h *Host) idle() {
	if h.counter >= h.cur.Cycles {
		h.reply(result{ok: true})
		return
	}

	h.counter++
}

func (h *Host) waitIRQ() {
	if h.edges.Take() {
		h.reply(result{ok: true})
		return
	}

	if h.counter >= h.cur.Cycles {
		h.reply(result{})
		return
	}

	h.counter++
}
