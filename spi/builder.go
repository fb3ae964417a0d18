package spi

import "github.com/sarchlab/spidma/sim"

// Builder can build engines.
type Builder struct {
	device  Device
	mode    Mode
	divider int
}

// MakeBuilder returns a Builder with the reset configuration.
func MakeBuilder() Builder {
	return Builder{
		mode:    Mode0,
		divider: DefaultDivider,
	}
}

// WithDevice sets the device attached to the engine.
func (b Builder) WithDevice(d Device) Builder {
	b.device = d
	return b
}

// WithMode sets the initial mode.
func (b Builder) WithMode(m Mode) Builder {
	b.mode = m
	return b
}

// WithDivider sets the initial divider selector.
func (b Builder) WithDivider(divider int) Builder {
	b.divider = divider
	return b
}

// Build creates an engine.
func (b Builder) Build(name string) *Engine {
	if b.device == nil {
		panic("engine requires a device")
	}

	e := &Engine{
		ComponentBase: sim.NewComponentBase(name),
		device:        b.device,
		pins:          sim.NewSignal(Pins{}),
	}
	e.Configure(b.mode, b.divider)
	e.pins.Latch()

	return e
}
