package tracing

import (
	"sync"

	"github.com/sarchlab/spidma/datarecording"
)

// DBTracer stores the records in a database table.
type DBTracer struct {
	lock    sync.Mutex
	backend datarecording.DataRecorder
	table   string
	filter  RecordFilter
	count   uint64
}

// NewDBTracer creates the table and returns a tracer that fills it. A nil
// filter accepts every record.
func NewDBTracer(
	backend datarecording.DataRecorder,
	table string,
	filter RecordFilter,
) *DBTracer {
	backend.CreateTable(table, Record{})

	return &DBTracer{
		backend: backend,
		table:   table,
		filter:  filter,
	}
}

// Trace buffers the record.
func (t *DBTracer) Trace(r Record) {
	if t.filter != nil && !t.filter(r) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.backend.InsertData(t.table, r)
	t.count++
}

// NumRecords returns the number of records stored so far.
func (t *DBTracer) NumRecords() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// Terminate writes the buffered records.
func (t *DBTracer) Terminate() {
	t.backend.Flush()
}
