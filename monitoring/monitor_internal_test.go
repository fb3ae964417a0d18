package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/spidma/burstspi"
	"github.com/sarchlab/spidma/sim"
)

type sampleStruct struct {
	field1 int
	field2 string
	field3 *sampleStruct
	field4 []sampleStruct
}

func get(m *Monitor, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	m.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m   *Monitor
		spi *burstspi.Comp
	)

	BeforeEach(func() {
		m = NewMonitor()
		spi = burstspi.MakeBuilder().Build("SPI")
	})

	It("should register components and their queues", func() {
		m.RegisterComponent(spi)

		Expect(m.components).To(HaveLen(1))
		Expect(m.buffers).To(HaveLen(2))
		Expect(m.dumpers).To(HaveKey("SPI"))
	})

	It("should list the components", func() {
		m.RegisterComponent(spi)

		rec := get(m, "/api/list_components")

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"SPI"}))
	})

	It("should dump the registers", func() {
		m.RegisterComponent(spi)

		rec := get(m, "/api/registers/SPI")

		var dump map[string]uint32
		Expect(json.Unmarshal(rec.Body.Bytes(), &dump)).To(Succeed())
		Expect(dump["CONTROL"]).To(Equal(uint32(7 << 2)))
	})

	It("should answer 404 for unknown components", func() {
		Expect(get(m, "/api/component/None").Code).
			To(Equal(http.StatusNotFound))
		Expect(get(m, "/api/registers/None").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should report the queue levels", func() {
		m.RegisterComponent(spi)
		spi.TxQueue().Push(1)
		spi.TxQueue().Latch()

		rec := get(m, "/api/buffers?sort=level&limit=1")

		var rsp []bufferRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(Equal([]bufferRsp{
			{Buffer: "SPI.TX", Level: 1, Cap: 512},
		}))
	})

	It("should reject an unknown sort method", func() {
		Expect(get(m, "/api/buffers?sort=name").Code).
			To(Equal(http.StatusBadRequest))
	})

	It("should report the cycles of the domains", func() {
		d := sim.NewDomain("System", nil, 50*sim.MHz)
		d.StepN(3)
		m.RegisterDomain(d)

		rec := get(m, "/api/now")

		var rsp nowRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Cycles).To(HaveKeyWithValue("System", uint64(3)))
	})

	It("should read a field value", func() {
		m.RegisterComponent(spi)

		rec := get(m, "/api/value/SPI/control")

		var v string
		Expect(json.Unmarshal(rec.Body.Bytes(), &v)).To(Succeed())
		Expect(v).To(Equal("28"))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("Burst", 10)
		bar.IncrementInProgress(4)
		bar.MoveInProgressToFinished(3)

		Expect(bar.Finished).To(Equal(uint64(3)))
		Expect(bar.InProgress).To(Equal(uint64(1)))
		Expect(m.progressBars).To(HaveLen(1))

		bar.Update(0, 12)
		Expect(bar.Finished).To(Equal(uint64(10)))
		Expect(bar.Done()).To(BeTrue())

		bar.Update(0, 2)
		Expect(bar.Finished).To(Equal(uint64(10)))

		m.CompleteProgressBar(bar)

		Expect(m.progressBars).To(BeEmpty())
	})

	It("should walk int fields", func() {
		s := &sampleStruct{
			field1: 1,
		}

		elem, err := m.walkFields(s, "field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk recursively", func() {
		s := &sampleStruct{
			field3: &sampleStruct{
				field2: "abc",
			},
		}

		elem, err := m.walkFields(s, "field3.field2")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.String))
		Expect(elem.String()).To(Equal("abc"))
	})

	It("should walk slice recursively", func() {
		s := &sampleStruct{
			field4: []sampleStruct{{
				field4: []sampleStruct{
					{field1: 1},
				},
			}, {}},
		}

		elem, err := m.walkFields(s, "field4.0.field4.0.field1")

		Expect(err).To(BeNil())
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should reject a non-numeric slice index", func() {
		s := &sampleStruct{field4: []sampleStruct{{}}}

		_, err := m.walkFields(s, "field4.x")

		Expect(err).To(MatchError(fieldFormatError{}))
	})
})
