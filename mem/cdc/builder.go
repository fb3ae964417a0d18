package cdc

import (
	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/sim"
)

// Builder can build bridges.
type Builder struct {
	source       bus.Source
	target       bus.Target
	busDomain    Waker
	deviceDomain Waker
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithSource sets the arbiter that forwards the requests.
func (b Builder) WithSource(s bus.Source) Builder {
	b.source = s
	return b
}

// WithTarget sets the sequencer that services the requests.
func (b Builder) WithTarget(t bus.Target) Builder {
	b.target = t
	return b
}

// WithDomains sets the domains to wake up on a hand-over.
func (b Builder) WithDomains(busDomain, deviceDomain Waker) Builder {
	b.busDomain = busDomain
	b.deviceDomain = deviceDomain

	return b
}

// Build creates a bridge. The ends are named after the bridge.
func (b Builder) Build(name string) *Bridge {
	busEnd := &BusEnd{
		ComponentBase: sim.NewComponentBase(name + ".BusEnd"),
		source:        b.source,
		peer:          b.deviceDomain,
		reqHold:       sim.NewSignal(bus.Request{}),
		reqToggle:     sim.NewSignal(false),
		response:      sim.NewSignal(bus.Response{}),
	}

	deviceEnd := &DeviceEnd{
		ComponentBase: sim.NewComponentBase(name + ".DeviceEnd"),
		target:        b.target,
		peer:          b.busDomain,
		pending:       sim.NewSignal(false),
		rspHold:       sim.NewSignal(bus.Response{}),
		ackToggle:     sim.NewSignal(false),
	}

	busEnd.remote = deviceEnd
	deviceEnd.remote = busEnd

	return &Bridge{busEnd: busEnd, deviceEnd: deviceEnd}
}
