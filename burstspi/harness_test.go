package burstspi

import (
	. "github.com/onsi/ginkgo/v2"

	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/irq"
	"github.com/sarchlab/spidma/mem"
	"github.com/sarchlab/spidma/mem/sequencer"
	"github.com/sarchlab/spidma/spi"
)

// harness wires a peripheral to the storage the same way the platform does
// and plays the processor role on the register port.
type harness struct {
	c       *Comp
	cpu     *bus.Port
	arbiter *bus.Arbiter
	seq     *sequencer.Comp
	storage *mem.NativeDevice
	edges   irq.EdgeDetector
	cycles  int
}

func newHarness(device spi.Device) *harness {
	h := &harness{cpu: bus.NewPort(bus.Processor)}

	h.c = MakeBuilder().WithDevice(device).Build("SPI")
	h.arbiter = bus.NewArbiter("Arbiter", h.cpu, h.c.EnginePort())
	h.c.SetBus(h.arbiter)

	h.storage = mem.NewNativeDevice("Storage", 32*1024)
	h.seq = sequencer.MakeBuilder().
		WithSource(h.arbiter).
		WithDevice(h.storage).
		Build("Sequencer")
	h.arbiter.SetTarget(h.seq)

	return h
}

func (h *harness) step() {
	h.c.Tick()
	h.seq.Tick()

	h.c.Latch()
	h.cpu.Latch()
	h.seq.Latch()

	h.edges.Sample(h.c.IRQ())
	h.cycles++
}

func (h *harness) stepN(n int) {
	for i := 0; i < n; i++ {
		h.step()
	}
}

func (h *harness) access(req RegRequest) RegResponse {
	h.c.Regs().Send(&req)
	h.step()
	h.c.Regs().Send(nil)

	for i := 0; i < 4; i++ {
		h.step()

		if rsp := h.c.Regs().Response(); rsp.Valid {
			return rsp
		}
	}

	Fail("register access not answered")

	return RegResponse{}
}

func (h *harness) write(offset, data uint32) bool {
	return h.access(RegRequest{Offset: offset, Write: true, Data: data}).Ack
}

func (h *harness) read(offset uint32) uint32 {
	return h.access(RegRequest{Offset: offset}).Data
}

func (h *harness) waitIRQ(limit int) bool {
	for i := 0; i < limit; i++ {
		if h.edges.Take() {
			return true
		}

		h.step()
	}

	return h.edges.Take()
}

func (h *harness) waitIdle(limit int) {
	for i := 0; i < limit; i++ {
		if h.read(RegStatus)&(StatusBusy|StatusDMABusy) == 0 {
			return
		}
	}

	Fail("peripheral stayed busy")
}
