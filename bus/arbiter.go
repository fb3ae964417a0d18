package bus

import "github.com/sarchlab/spidma/sim"

// HookPosGrant marks every cycle in which a request is forwarded to the target.
// The hook item is the forwarded Request and the detail is a Grant.
var HookPosGrant = &sim.HookPos{Name: "Bus Grant"}

// A Grant records which requesters were pending when a grant was decided.
type Grant struct {
	Winner           RequesterID
	ProcessorPending bool
	EnginePending    bool
}

// Arbitrate decides which of the two pending requests is forwarded. The
// processor wins whenever it has a pending request.
func Arbitrate(cpu, engine *Port) (RequesterID, bool) {
	if _, ok := cpu.Pending(); ok {
		return Processor, true
	}

	if _, ok := engine.Pending(); ok {
		return Engine, true
	}

	return 0, false
}

// An Arbiter connects the processor and the engine ports to a target. It
// keeps no state. Responses are routed by the owner tag that the target
// records when it accepts a request.
type Arbiter struct {
	sim.HookableBase

	name   string
	cpu    *Port
	engine *Port
	target Target
}

// NewArbiter creates an arbiter between two ports.
func NewArbiter(name string, cpu, engine *Port) *Arbiter {
	if cpu.Owner() != Processor || engine.Owner() != Engine {
		panic("arbiter ports must be owned by the processor and the engine")
	}

	return &Arbiter{name: name, cpu: cpu, engine: engine}
}

// Name returns the name of the arbiter.
func (a *Arbiter) Name() string {
	return a.name
}

// SetTarget connects the target that services the forwarded requests.
func (a *Arbiter) SetTarget(t Target) {
	a.target = t
}

// Forwarded returns the request that wins the arbitration in this cycle.
func (a *Arbiter) Forwarded() (Request, bool) {
	winner, ok := Arbitrate(a.cpu, a.engine)
	if !ok {
		return Request{}, false
	}

	port := a.cpu
	if winner == Engine {
		port = a.engine
	}

	req, _ := port.Pending()

	if a.NumHooks() > 0 {
		_, cpuPending := a.cpu.Pending()
		_, enginePending := a.engine.Pending()
		a.InvokeHook(sim.HookCtx{
			Domain: a,
			Pos:    HookPosGrant,
			Item:   req,
			Detail: Grant{
				Winner:           winner,
				ProcessorPending: cpuPending,
				EnginePending:    enginePending,
			},
		})
	}

	return req, true
}

// ResponseFor returns the latched response if it belongs to the requester.
// Any other requester observes no response.
func (a *Arbiter) ResponseFor(id RequesterID) Response {
	rsp := a.target.Response()
	if !rsp.Complete || rsp.Owner != id {
		return Response{}
	}

	return rsp
}
