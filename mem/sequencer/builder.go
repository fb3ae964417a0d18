package sequencer

import (
	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/sim"
)

// Builder can build sequencers.
type Builder struct {
	source bus.Source
	device Device
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithSource sets the component that forwards the requests.
func (b Builder) WithSource(s bus.Source) Builder {
	b.source = s
	return b
}

// WithDevice sets the native device that the sequencer drives.
func (b Builder) WithDevice(d Device) Builder {
	b.device = d
	return b
}

// Build creates a sequencer.
func (b Builder) Build(name string) *Comp {
	if b.device == nil {
		panic("sequencer requires a device")
	}

	return &Comp{
		ComponentBase: sim.NewComponentBase(name),
		source:        b.source,
		device:        b.device,
		response:      sim.NewSignal(bus.Response{}),
	}
}
