package tracing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/spidma/queueing"
)

type fixedClock uint64

func (c *fixedClock) Cycle() uint64 {
	return uint64(*c)
}

var _ = Describe("CollectTrace", func() {
	var (
		clock   fixedClock
		q       *queueing.ByteQueue
		counter *AccessCounter
	)

	BeforeEach(func() {
		clock = 0
		q = queueing.NewByteQueue("TX")
		counter = NewAccessCounter()
		CollectTrace(q, &clock, counter)
	})

	It("should count the hook invocations by kind", func() {
		q.Push(1)
		q.Latch()
		q.Push(2)
		q.Latch()
		q.Pop()
		q.Latch()

		Expect(counter.Count("TX", queueing.HookPosQueuePush.Name)).
			To(Equal(uint64(2)))
		Expect(counter.Total(queueing.HookPosQueuePop.Name)).
			To(Equal(uint64(1)))
		Expect(counter.Locations()).To(Equal([]string{"TX"}))
	})

	It("should stamp the records with the cycle", func() {
		var records []Record

		CollectTrace(q, &clock, tracerFunc(func(r Record) {
			records = append(records, r)
		}))

		clock = 42
		q.Push(0xAB)

		Expect(records).To(HaveLen(1))
		Expect(records[0].Cycle).To(Equal(uint64(42)))
		Expect(records[0].Where).To(Equal("TX"))
		Expect(records[0].What).To(Equal(queueing.HookPosQueuePush.Name))
	})
})

var _ = Describe("LogTracer", func() {
	It("should print the accepted records", func() {
		buf := new(bytes.Buffer)
		t := NewLogTracer(log.New(buf, "", 0), func(r Record) bool {
			return r.Where == "SPI"
		})

		t.Trace(Record{Cycle: 7, Where: "SPI", What: "Completion", Detail: "1"})
		t.Trace(Record{Cycle: 8, Where: "Sequencer", What: "Trans Start"})

		Expect(buf.String()).To(Equal("7, SPI, Completion, 1\n"))
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should create the table and insert the records", func() {
		r := Record{Cycle: 3, Where: "Mover", What: "Byte Moved"}

		gomock.InOrder(
			backend.EXPECT().CreateTable("trace", Record{}),
			backend.EXPECT().InsertData("trace", r),
			backend.EXPECT().Flush(),
		)

		t := NewDBTracer(backend, "trace", nil)
		t.Trace(r)
		t.Terminate()

		Expect(t.NumRecords()).To(Equal(uint64(1)))
	})

	It("should skip filtered records", func() {
		backend.EXPECT().CreateTable("trace", Record{})

		t := NewDBTracer(backend, "trace", func(Record) bool { return false })
		t.Trace(Record{What: "Byte Moved"})

		Expect(t.NumRecords()).To(BeZero())
	})
})

type tracerFunc func(r Record)

func (f tracerFunc) Trace(r Record) {
	f(r)
}
