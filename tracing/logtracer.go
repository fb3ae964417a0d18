package tracing

import (
	"log"

	"github.com/sarchlab/spidma/sim"
)

// LogTracer prints the records with a logger.
type LogTracer struct {
	sim.LogHookBase

	filter RecordFilter
}

// NewLogTracer creates a LogTracer. A nil filter accepts every record.
func NewLogTracer(logger *log.Logger, filter RecordFilter) *LogTracer {
	t := &LogTracer{filter: filter}
	t.Logger = logger

	return t
}

// Trace prints the record.
func (t *LogTracer) Trace(r Record) {
	if t.filter != nil && !t.filter(r) {
		return
	}

	if r.Detail == "" {
		t.Printf("%d, %s, %s", r.Cycle, r.Where, r.What)
		return
	}

	t.Printf("%d, %s, %s, %s", r.Cycle, r.Where, r.What, r.Detail)
}
