package cpu

import (
	"github.com/sarchlab/spidma/burstspi"
	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/sim"
)

// Builder can build hosts.
type Builder struct {
	port *bus.Port
	bus  Bus
	regs *burstspi.RegPort
	line IRQLine
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithPort sets the request port of the processor.
func (b Builder) WithPort(p *bus.Port) Builder {
	b.port = p
	return b
}

// WithBus sets the arbiter that routes the responses.
func (b Builder) WithBus(x Bus) Builder {
	b.bus = x
	return b
}

// WithRegs sets the register port of the peripheral.
func (b Builder) WithRegs(r *burstspi.RegPort) Builder {
	b.regs = r
	return b
}

// WithIRQ sets the completion line.
func (b Builder) WithIRQ(l IRQLine) Builder {
	b.line = l
	return b
}

// Build creates a host.
func (b Builder) Build(name string) *Host {
	if b.port == nil {
		b.port = bus.NewPort(bus.Processor)
	}

	if b.port.Owner() != bus.Processor {
		panic("host port must be owned by the processor requester")
	}

	if b.regs == nil || b.line == nil {
		panic("host requires a register port and a completion line")
	}

	return &Host{
		ComponentBase: sim.NewComponentBase(name),
		port:          b.port,
		bus:           b.bus,
		regs:          b.regs,
		line:          b.line,
	}
}
