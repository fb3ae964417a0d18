package cdc

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/mem"
	"github.com/sarchlab/spidma/mem/sequencer"
	"github.com/sarchlab/spidma/sim"
)

type transCounter struct {
	starts int
}

func (c *transCounter) Func(ctx sim.HookCtx) {
	if ctx.Pos == sequencer.HookPosTransStart {
		c.starts++
	}
}

var _ = Describe("Bridge", func() {
	var (
		cpu      *bus.Port
		engine   *bus.Port
		arbiter  *bus.Arbiter
		bridge   *Bridge
		device   *mem.NativeDevice
		seq      *sequencer.Comp
		counter  *transCounter
		sysCycle int
	)

	BeforeEach(func() {
		cpu = bus.NewPort(bus.Processor)
		engine = bus.NewPort(bus.Engine)
		arbiter = bus.NewArbiter("Arbiter", cpu, engine)
		device = mem.NewNativeDevice("Storage", 1024)

		bridge = MakeBuilder().WithSource(arbiter).Build("Bridge")
		arbiter.SetTarget(bridge.BusEnd())

		seq = sequencer.MakeBuilder().
			WithSource(bridge.DeviceEnd()).
			WithDevice(device).
			Build("Sequencer")
		bridge.SetTarget(seq)

		counter = &transCounter{}
		seq.AcceptHook(counter)
		sysCycle = 0
	})

	fastStep := func() {
		bridge.DeviceEnd().Tick()
		seq.Tick()
		bridge.DeviceEnd().Latch()
		seq.Latch()
	}

	// sysStep runs one system cycle and two storage cycles.
	sysStep := func() {
		bridge.BusEnd().Tick()
		bridge.BusEnd().Latch()
		cpu.Latch()
		engine.Latch()

		fastStep()
		fastStep()
		sysCycle++
	}

	// transact asserts the request on the port until the routed response is
	// complete, then deasserts it.
	transact := func(p *bus.Port, req bus.Request) bus.Response {
		p.Assert(req)
		sysStep()

		for i := 0; i < 100; i++ {
			rsp := arbiter.ResponseFor(p.Owner())
			if rsp.Complete {
				p.Deassert()
				sysStep()

				return rsp
			}

			sysStep()
		}

		Fail("transaction did not complete")

		return bus.Response{}
	}

	It("should carry a write and a read across the domains", func() {
		transact(cpu, bus.Request{
			Address:   0x40,
			Direction: bus.Write,
			Mask:      bus.MaskAll,
			WriteData: 0xDEADBEEF,
		})

		rsp := transact(cpu, bus.Request{
			Address:   0x40,
			Direction: bus.Read,
			Mask:      bus.MaskAll,
		})

		Expect(rsp.ReadData).To(Equal(uint32(0xDEADBEEF)))
		Expect(rsp.Owner).To(Equal(bus.Processor))
		Expect(counter.starts).To(Equal(2))
		Expect(device.Writes()).To(Equal(uint64(2)))
		Expect(device.Reads()).To(Equal(uint64(2)))
	})

	It("should not present the request before it is synchronized", func() {
		cpu.Assert(bus.Request{Address: 0x10, Direction: bus.Read})
		cpu.Latch()

		bridge.BusEnd().Tick()
		bridge.BusEnd().Latch()

		fastStep()
		Expect(seq.NumAccepted()).To(BeZero())

		fastStep()
		Expect(seq.NumAccepted()).To(BeZero())

		fastStep()
		fastStep()
		Expect(seq.NumAccepted()).To(Equal(uint64(1)))
	})

	It("should report the completion for exactly one bus cycle", func() {
		cpu.Assert(bus.Request{Address: 0x10, Direction: bus.Read})

		completions := 0
		for i := 0; i < 60; i++ {
			sysStep()

			if arbiter.ResponseFor(bus.Processor).Complete {
				completions++
				cpu.Deassert()
			}
		}

		Expect(completions).To(Equal(1))
		Expect(counter.starts).To(Equal(1))
	})

	It("should route the engine transaction back to the engine", func() {
		device.Poke(0x80, []byte{1, 2, 3, 4})

		rsp := transact(engine, bus.Request{
			Address:   0x80,
			Direction: bus.Read,
			Mask:      bus.MaskAll,
		})

		Expect(rsp.Owner).To(Equal(bus.Engine))
		Expect(rsp.ReadData).To(Equal(uint32(0x04030201)))
	})

	It("should write the same storage content as a direct connection", func() {
		direct := mem.NewNativeDevice("Direct", 1024)
		directSeq := sequencer.MakeBuilder().
			WithDevice(direct).
			Build("DirectSequencer")

		reqs := []bus.Request{
			{Address: 0x0, Direction: bus.Write, Mask: bus.MaskAll, WriteData: 0x11223344},
			{Address: 0x1, Direction: bus.Write, Mask: bus.LaneMask(0x1), WriteData: 0xAA00},
			{Address: 0x4, Direction: bus.Write, Mask: bus.ByteMask(0x6), WriteData: 0x00BBCC00},
			{Address: 0x8, Direction: bus.Write, Mask: bus.MaskHigh, WriteData: 0x55660000},
		}

		for _, req := range reqs {
			transact(cpu, req)

			src := &heldSource{req: req}
			directSeq.SetSource(src)
			for !directSeq.Response().Complete {
				directSeq.Tick()
				directSeq.Latch()
			}
			src.released = true
			directSeq.Tick()
			directSeq.Latch()
		}

		Expect(device.Peek(0, 12)).To(Equal(direct.Peek(0, 12)))
		Expect(device.Accesses()).To(Equal(direct.Accesses()))
	})
})

type heldSource struct {
	req      bus.Request
	released bool
}

func (s *heldSource) Forwarded() (bus.Request, bool) {
	if s.released {
		return bus.Request{}, false
	}

	return s.req, true
}
