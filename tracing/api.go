// Package tracing collects records from the hooks of the components.
package tracing

import (
	"fmt"

	"github.com/sarchlab/spidma/sim"
)

// A Record is one invocation of a hook.
type Record struct {
	Cycle  uint64
	Where  string
	What   string
	Detail string
}

// RecordFilter tells if a record is interesting.
type RecordFilter func(r Record) bool

// A CycleTeller reports the current cycle of a clock domain.
type CycleTeller interface {
	Cycle() uint64
}

// A Tracer consumes records.
type Tracer interface {
	Trace(r Record)
}

// MakeRecord converts a hook context to a record.
func MakeRecord(cycle uint64, ctx sim.HookCtx) Record {
	r := Record{Cycle: cycle}

	if named, ok := ctx.Domain.(sim.Named); ok {
		r.Where = named.Name()
	}

	if ctx.Pos != nil {
		r.What = ctx.Pos.Name
	}

	if ctx.Item != nil {
		r.Detail = fmt.Sprintf("%+v", ctx.Item)
	}

	return r
}

// CollectTrace lets the tracer receive every hook invocation of the target.
// The records are stamped with the cycle of the clock.
func CollectTrace(target sim.Hookable, clock CycleTeller, t Tracer) {
	target.AcceptHook(&traceHook{clock: clock, t: t})
}

type traceHook struct {
	clock CycleTeller
	t     Tracer
}

func (h *traceHook) Func(ctx sim.HookCtx) {
	h.t.Trace(MakeRecord(h.clock.Cycle(), ctx))
}
