package burstspi

import (
	"log"

	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/dma"
	"github.com/sarchlab/spidma/queueing"
	"github.com/sarchlab/spidma/sim"
	"github.com/sarchlab/spidma/spi"
)

// Hook positions of the peripheral. The register hook carries the RegRequest
// as the item and the RegResponse as the detail.
var (
	HookPosRegAccess  = &sim.HookPos{Name: "Reg Access"}
	HookPosCompletion = &sim.HookPos{Name: "Completion"}
)

type exchangeKind int

const (
	kindLegacy exchangeKind = iota
	kindBurst
	kindDMA
)

// Comp is the burst serial peripheral.
type Comp struct {
	*sim.ComponentBase

	engine *spi.Engine
	tx     *queueing.ByteQueue
	rx     *queueing.ByteQueue
	mover  *dma.Mover
	regs   *RegPort
	irq    *sim.Signal[bool]

	control    uint32
	selected   bool
	remaining  uint32
	moved      uint32
	dmaAddress uint32
	dmaControl uint32
	hold       byte
	done       bool

	kind          exchangeKind
	exchanged     bool
	exchangedByte byte

	numCompletions uint64
}

// Regs returns the register port.
func (c *Comp) Regs() *RegPort {
	return c.regs
}

// EnginePort returns the bus port of the block mover.
func (c *Comp) EnginePort() *bus.Port {
	return c.mover.Port()
}

// SetBus connects the arbiter that routes the storage responses.
func (c *Comp) SetBus(b dma.Bus) {
	c.mover.SetBus(b)
}

// Engine returns the serial transfer engine.
func (c *Comp) Engine() *spi.Engine {
	return c.engine
}

// Mover returns the block mover.
func (c *Comp) Mover() *dma.Mover {
	return c.mover
}

// TxQueue returns the transmit queue.
func (c *Comp) TxQueue() *queueing.ByteQueue {
	return c.tx
}

// RxQueue returns the receive queue.
func (c *Comp) RxQueue() *queueing.ByteQueue {
	return c.rx
}

// IRQ returns the latched completion line.
func (c *Comp) IRQ() bool {
	return c.irq.Get()
}

// NumCompletions returns the number of completion pulses raised.
func (c *Comp) NumCompletions() uint64 {
	return c.numCompletions
}

// Tick advances the engine, the mover, and the register interface by one
// cycle.
func (c *Comp) Tick() bool {
	madeProgress := false
	pulse := false
	c.exchanged = false

	madeProgress = c.engine.Tick() || madeProgress

	if c.engine.Done() {
		pulse = c.finishExchange() || pulse
	}

	madeProgress = c.mover.Tick() || madeProgress
	pulse = c.mover.Completion() || pulse

	madeProgress = c.handleRegRequest() || madeProgress
	madeProgress = c.autoStart() || madeProgress

	madeProgress = pulse || c.irq.Get() || madeProgress
	c.irq.Set(pulse)

	if pulse {
		c.numCompletions++
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosCompletion,
			Item:   c.numCompletions,
		})
	}

	return madeProgress
}

// Latch commits all the registered state of the peripheral.
func (c *Comp) Latch() {
	c.engine.Latch()
	c.tx.Latch()
	c.rx.Latch()
	c.mover.Latch()
	c.regs.Latch()
	c.irq.Latch()
}

// finishExchange returns true if the exchange raises the completion pulse.
func (c *Comp) finishExchange() bool {
	b := c.engine.RxByte()
	c.hold = b
	c.done = true

	switch c.kind {
	case kindLegacy:
		return true
	case kindBurst:
		if !c.rx.Push(b) {
			log.Panicf("%s: receive queue overflow", c.Name())
		}

		c.remaining--
		c.moved++

		return c.remaining == 0
	case kindDMA:
		c.exchanged = true
		c.exchangedByte = b
	}

	return false
}

func (c *Comp) autoStart() bool {
	if c.engine.Busy() {
		return false
	}

	kind := kindDMA
	if !c.mover.Busy() {
		if c.remaining == 0 || c.rx.Full() {
			return false
		}

		kind = kindBurst
	}

	b, ok := c.tx.Pop()
	if !ok {
		return false
	}

	c.startExchange(b, kind)

	return true
}

func (c *Comp) startExchange(b byte, kind exchangeKind) {
	c.engine.Start(b)
	c.kind = kind
	c.done = false
}

// transferActive tells if a burst has started and not finished yet.
func (c *Comp) transferActive() bool {
	return c.mover.Busy() ||
		c.engine.Busy() ||
		(c.remaining > 0 && c.moved > 0)
}

func (c *Comp) handleRegRequest() bool {
	req, ok := c.regs.Request()
	if !ok {
		c.regs.Respond(RegResponse{})
		return false
	}

	rsp := RegResponse{Valid: true, Ack: true}
	if req.Write {
		rsp.Ack = c.writeReg(req.Offset, req.Data)
	} else {
		rsp.Data = c.readReg(req.Offset)
	}

	c.regs.Respond(rsp)

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosRegAccess,
			Item:   req,
			Detail: rsp,
		})
	}

	return true
}

func (c *Comp) readReg(offset uint32) uint32 {
	switch offset {
	case RegData:
		return uint32(c.readData())
	default:
		return c.peekReg(offset)
	}
}

// RegisterNames maps the register offsets to their names.
var RegisterNames = map[uint32]string{
	RegControl:     "CONTROL",
	RegData:        "DATA",
	RegStatus:      "STATUS",
	RegChipSelect:  "CHIP_SELECT",
	RegBurstLength: "BURST_LENGTH",
	RegDMAAddress:  "DMA_ADDRESS",
	RegDMAControl:  "DMA_CONTROL",
}

// RegisterDump returns the value of every register by name. DATA shows the
// hold register, and nothing is popped from the receive queue.
func (c *Comp) RegisterDump() map[string]uint32 {
	dump := make(map[string]uint32, len(RegisterNames))

	for offset, name := range RegisterNames {
		dump[name] = c.peekReg(offset)
	}

	return dump
}

// peekReg returns the value of a register without the side effects of a
// read.
func (c *Comp) peekReg(offset uint32) uint32 {
	switch offset {
	case RegControl:
		return c.control
	case RegData:
		return uint32(c.hold)
	case RegStatus:
		return c.status()
	case RegChipSelect:
		if c.selected {
			return ChipSelectAssert
		}

		return 0
	case RegBurstLength:
		if c.mover.Busy() {
			return c.mover.Descriptor().Remaining
		}

		return c.remaining
	case RegDMAAddress:
		return c.dmaAddress
	case RegDMAControl:
		v := c.dmaControl
		if c.mover.Busy() {
			v |= DMABusy
		}

		return v
	default:
		return 0
	}
}

func (c *Comp) readData() byte {
	if b, ok := c.rx.Pop(); ok {
		return b
	}

	if c.remaining > 0 {
		return 0
	}

	return c.hold
}

func (c *Comp) status() uint32 {
	var s uint32

	flags := []struct {
		set bool
		bit uint32
	}{
		{c.engine.Busy(), StatusBusy},
		{c.done, StatusDone},
		{c.tx.Full(), StatusTxFull},
		{c.tx.Empty(), StatusTxEmpty},
		{c.rx.Full(), StatusRxFull},
		{c.rx.Empty(), StatusRxEmpty},
		{c.remaining > 0 || c.mover.Busy(), StatusBurst},
		{c.mover.Busy(), StatusDMABusy},
	}

	for _, f := range flags {
		if f.set {
			s |= f.bit
		}
	}

	s |= uint32(c.tx.Size()) & StatusCountMask << StatusTxCountShift
	s |= uint32(c.rx.Size()) & StatusCountMask << StatusRxCountShift

	return s
}

func (c *Comp) writeReg(offset, data uint32) bool {
	switch offset {
	case RegControl:
		return c.writeControl(data)
	case RegData:
		return c.writeData(byte(data))
	case RegChipSelect:
		c.selected = data&ChipSelectAssert != 0
		c.engine.SetSelect(c.selected)

		return true
	case RegBurstLength:
		if c.transferActive() {
			return false
		}

		c.tx.Clear()
		c.remaining = data
		c.moved = 0

		return true
	case RegDMAAddress:
		c.dmaAddress = data
		return true
	case RegDMAControl:
		return c.writeDMAControl(data)
	default:
		return false
	}
}

func (c *Comp) writeControl(data uint32) bool {
	if c.transferActive() {
		return false
	}

	mode := spi.Mode{
		CPOL: data&ControlCPOL != 0,
		CPHA: data&ControlCPHA != 0,
	}
	divider := int(data & ControlDividerMask >> ControlDividerShift)

	c.engine.Configure(mode, divider)
	c.control = data & (ControlCPOL | ControlCPHA | ControlDividerMask)

	return true
}

func (c *Comp) writeData(b byte) bool {
	if c.mover.Busy() {
		return false
	}

	if c.remaining > 0 {
		if c.burstCovered() {
			return false
		}

		return c.tx.Push(b)
	}

	if c.engine.Busy() {
		return false
	}

	c.rx.Clear()
	c.startExchange(b, kindLegacy)

	return true
}

// burstCovered tells if the bytes already queued or in flight make up the
// rest of the burst. Queue pops happen after register writes in a cycle, so
// a byte is never counted both in the queue and in the engine.
func (c *Comp) burstCovered() bool {
	committed := uint32(c.tx.Size())
	if c.engine.Busy() && c.kind == kindBurst {
		committed++
	}

	return committed >= c.remaining
}

func (c *Comp) writeDMAControl(data uint32) bool {
	if data&DMAStart == 0 {
		if c.mover.Busy() {
			return false
		}

		c.dmaControl = data & (DMAIngress | DMAIRQEnable)

		return true
	}

	if c.transferActive() || c.remaining == 0 {
		return false
	}

	c.dmaControl = data & (DMAIngress | DMAIRQEnable)

	desc := dma.Descriptor{
		BaseAddress: c.dmaAddress,
		Direction:   dma.Egress,
		Remaining:   c.remaining,
		IRQ:         data&DMAIRQEnable != 0,
	}
	if data&DMAIngress != 0 {
		desc.Direction = dma.Ingress
	}

	c.tx.Clear()
	c.mover.Start(desc)
	c.remaining = 0
	c.moved = 0

	return true
}

type moverSerial struct {
	c *Comp
}

func (s moverSerial) PushTx(b byte) bool {
	return s.c.tx.Push(b)
}

func (s moverSerial) Exchanged() (byte, bool) {
	return s.c.exchangedByte, s.c.exchanged
}
