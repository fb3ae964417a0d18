package dma

import (
	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/sim"
)

// Builder can build movers.
type Builder struct {
	port   *bus.Port
	bus    Bus
	serial SerialLink
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithPort sets the request port of the mover. The port must be owned by
// the engine requester.
func (b Builder) WithPort(p *bus.Port) Builder {
	b.port = p
	return b
}

// WithBus sets the arbiter that routes the responses.
func (b Builder) WithBus(x Bus) Builder {
	b.bus = x
	return b
}

// WithSerial sets the serial side of the mover.
func (b Builder) WithSerial(s SerialLink) Builder {
	b.serial = s
	return b
}

// Build creates a mover.
func (b Builder) Build(name string) *Mover {
	if b.port == nil {
		b.port = bus.NewPort(bus.Engine)
	}

	if b.port.Owner() != bus.Engine {
		panic("mover port must be owned by the engine requester")
	}

	return &Mover{
		ComponentBase: sim.NewComponentBase(name),
		port:          b.port,
		bus:           b.bus,
		serial:        b.serial,
	}
}
