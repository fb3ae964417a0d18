// Package cdc provides a bridge that carries bus transactions between the
// system clock domain and a faster storage clock domain.
//
// Each direction uses a holding register and a toggle flag. The flag is
// only observed through a two-stage synchronizer, and the holding register
// is only read after the synchronized flag has changed.
package cdc

import (
	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/sim"
)

// A Waker can be asked to resume ticking.
type Waker interface {
	TickLater()
}

// A Bridge has one end in each clock domain.
type Bridge struct {
	busEnd    *BusEnd
	deviceEnd *DeviceEnd
}

// BusEnd returns the end that ticks in the system domain.
func (b *Bridge) BusEnd() *BusEnd {
	return b.busEnd
}

// DeviceEnd returns the end that ticks in the storage domain.
func (b *Bridge) DeviceEnd() *DeviceEnd {
	return b.deviceEnd
}

// SetSource connects the arbiter that forwards the requests.
func (b *Bridge) SetSource(s bus.Source) {
	b.busEnd.source = s
}

// SetTarget connects the sequencer that services the requests.
func (b *Bridge) SetTarget(t bus.Target) {
	b.deviceEnd.target = t
}

// SetWakers sets the domains that the ends wake up when they hand over a
// transaction.
func (b *Bridge) SetWakers(busDomain, deviceDomain Waker) {
	b.busEnd.peer = deviceDomain
	b.deviceEnd.peer = busDomain
}

// BusEnd acts as the target of the arbiter.
type BusEnd struct {
	*sim.ComponentBase

	source bus.Source
	peer   Waker
	remote *DeviceEnd

	waiting   bool
	reqHold   *sim.Signal[bus.Request]
	reqToggle *sim.Signal[bool]
	ackSync   sim.Synchronizer
	ackSeen   bool
	response  *sim.Signal[bus.Response]
}

// Response returns the latched response.
func (e *BusEnd) Response() bus.Response {
	return e.response.Get()
}

// Tick hands a forwarded request to the storage domain or delivers the
// response that came back.
func (e *BusEnd) Tick() bool {
	e.ackSync.Sample(e.remote.ackToggle.Get())

	if e.waiting {
		if e.ackSync.Out() == e.ackSeen {
			return true
		}

		e.ackSeen = e.ackSync.Out()
		rsp := e.remote.rspHold.Get()
		rsp.Complete = true
		e.response.Set(rsp)
		e.waiting = false

		return true
	}

	e.response.Set(bus.Response{})

	req, pending := e.source.Forwarded()
	if !pending || e.response.Get().Complete {
		return pending
	}

	e.reqHold.Set(req)
	e.reqToggle.Set(!e.reqToggle.Get())
	e.waiting = true

	if e.peer != nil {
		e.peer.TickLater()
	}

	return true
}

// Latch commits the registers of the end.
func (e *BusEnd) Latch() {
	e.reqHold.Latch()
	e.reqToggle.Latch()
	e.ackSync.Latch()
	e.response.Latch()
}

// DeviceEnd acts as the request source of the sequencer.
type DeviceEnd struct {
	*sim.ComponentBase

	target bus.Target
	peer   Waker
	remote *BusEnd

	reqSync   sim.Synchronizer
	reqSeen   bool
	pending   *sim.Signal[bool]
	rspHold   *sim.Signal[bus.Response]
	ackToggle *sim.Signal[bool]
}

// Forwarded returns the request that crossed from the system domain.
func (e *DeviceEnd) Forwarded() (bus.Request, bool) {
	if !e.pending.Get() {
		return bus.Request{}, false
	}

	return e.remote.reqHold.Get(), true
}

// Tick observes the synchronized request flag and hands the completion back.
func (e *DeviceEnd) Tick() bool {
	e.reqSync.Sample(e.remote.reqToggle.Get())

	if e.pending.Get() {
		rsp := e.target.Response()
		if !rsp.Complete {
			return true
		}

		e.rspHold.Set(rsp)
		e.ackToggle.Set(!e.ackToggle.Get())
		e.pending.Set(false)

		if e.peer != nil {
			e.peer.TickLater()
		}

		return true
	}

	if e.reqSync.Out() != e.reqSeen {
		e.reqSeen = e.reqSync.Out()
		e.pending.Set(true)

		return true
	}

	return e.reqSync.Out() != e.remote.reqToggle.Get()
}

// Latch commits the registers of the end.
func (e *DeviceEnd) Latch() {
	e.reqSync.Latch()
	e.pending.Latch()
	e.rspHold.Latch()
	e.ackToggle.Latch()
}
