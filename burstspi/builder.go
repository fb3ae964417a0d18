package burstspi

import (
	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/dma"
	"github.com/sarchlab/spidma/queueing"
	"github.com/sarchlab/spidma/sim"
	"github.com/sarchlab/spidma/spi"
)

// Builder can build peripherals.
type Builder struct {
	device spi.Device
	bus    dma.Bus
	port   *bus.Port
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithDevice sets the serial device attached to the peripheral.
func (b Builder) WithDevice(d spi.Device) Builder {
	b.device = d
	return b
}

// WithBus sets the arbiter that routes the responses of the block mover.
func (b Builder) WithBus(x dma.Bus) Builder {
	b.bus = x
	return b
}

// WithEnginePort sets the port that the block mover requests the bus with.
func (b Builder) WithEnginePort(p *bus.Port) Builder {
	b.port = p
	return b
}

// Build creates a peripheral in its reset state: empty queues, zero counts,
// mode 0 with the slowest divider, and the select line de-asserted.
func (b Builder) Build(name string) *Comp {
	if b.device == nil {
		b.device = spi.Loopback{}
	}

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		tx:            queueing.NewByteQueue(name + ".TX"),
		rx:            queueing.NewByteQueue(name + ".RX"),
		regs:          NewRegPort(),
		irq:           sim.NewSignal(false),
		control:       uint32(spi.DefaultDivider) << ControlDividerShift,
	}

	c.engine = spi.MakeBuilder().
		WithDevice(b.device).
		WithMode(spi.Mode0).
		WithDivider(spi.DefaultDivider).
		Build(name + ".Engine")

	c.mover = dma.MakeBuilder().
		WithPort(b.port).
		WithBus(b.bus).
		WithSerial(moverSerial{c: c}).
		Build(name + ".Mover")

	return c
}
