package bus

import "github.com/sarchlab/spidma/sim"

// A Port is the request line of one requester. The requester asserts a
// request and keeps it asserted until it observes the completion.
type Port struct {
	owner   RequesterID
	pending *sim.Signal[*Request]
}

// NewPort creates a port for the given requester.
func NewPort(owner RequesterID) *Port {
	return &Port{
		owner:   owner,
		pending: sim.NewSignal[*Request](nil),
	}
}

// Owner returns the requester that owns the port.
func (p *Port) Owner() RequesterID {
	return p.owner
}

// Assert stages the request for the next cycle.
func (p *Port) Assert(req Request) {
	req.Owner = p.owner
	if req.ID == "" {
		req.ID = sim.GetIDGenerator().Generate()
	}

	p.pending.Set(&req)
}

// Deassert withdraws the request at the next edge.
func (p *Port) Deassert() {
	p.pending.Set(nil)
}

// Pending returns the latched request, if any.
func (p *Port) Pending() (Request, bool) {
	req := p.pending.Get()
	if req == nil {
		return Request{}, false
	}

	return *req, true
}

// Asserting tells if the port will present a request after the next edge.
func (p *Port) Asserting() bool {
	return p.pending.Next() != nil
}

// Latch commits the request line.
func (p *Port) Latch() {
	p.pending.Latch()
}
