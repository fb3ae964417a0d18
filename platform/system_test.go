package platform

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/spidma/burstspi"
	"github.com/sarchlab/spidma/cpu"
	"github.com/sarchlab/spidma/datarecording"
	"github.com/sarchlab/spidma/dma"
	"github.com/sarchlab/spidma/firmware"
	"github.com/sarchlab/spidma/mem/sequencer"
	"github.com/sarchlab/spidma/monitoring"
	"github.com/sarchlab/spidma/sim"
	"github.com/sarchlab/spidma/spi"
)

func build(b Builder) *System {
	s, err := b.Build("Sys")
	Expect(err).To(Succeed())

	DeferCleanup(s.Close)

	return s
}

func pattern(n int, seed byte) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = seed + byte(i*7)
	}

	return data
}

var _ = Describe("System", func() {
	It("should refuse an invalid configuration", func() {
		c := DefaultConfig()
		c.StorageBytes = 0

		_, err := MakeBuilder().WithConfig(c).Build("Sys")

		Expect(err).To(MatchError(ErrInvalidConfig))
	})

	It("should step the domains", func() {
		c := DefaultConfig()
		c.DualClock = true
		s := build(MakeBuilder().WithConfig(c))

		s.Step(10)

		Expect(s.Cycle()).To(Equal(uint64(10)))
		Expect(s.StorageDomain.Cycle()).To(Equal(uint64(20)))
	})

	It("should send a block from the storage", func() {
		rec := &spi.RecordingResponder{}
		s := build(MakeBuilder().
			WithDevice(spi.NewByteDevice(spi.Mode0, rec)))
		s.Storage.Poke(0x1000, []byte{0xA0, 0xA1, 0xA2, 0xA3})

		var result JobResult
		job := Job{Kind: JobEgress, Address: 0x1000, Length: 4}

		Expect(s.RunFirmware(job.Firmware(&result))).To(Succeed())
		Expect(rec.ReceivedBytes()).
			To(Equal([]byte{0xA0, 0xA1, 0xA2, 0xA3}))
		Expect(s.SPI.NumCompletions()).To(Equal(uint64(1)))
		Expect(s.Host.IRQEdges()).To(Equal(uint64(1)))
		Expect(result.Fault).To(BeFalse())
		Expect(result.Cycles).To(BeNumerically(">", 4*17))
	})

	It("should receive a block into the storage", func() {
		r := spi.NewScriptedResponder(0x10, 0x20, 0x30)
		s := build(MakeBuilder().
			WithDevice(spi.NewByteDevice(spi.Mode3, r)))

		var result JobResult
		job := Job{
			Kind:    JobIngress,
			Mode:    spi.Mode3,
			Divider: 1,
			Address: 0x2001,
			Length:  3,
		}

		Expect(s.RunFirmware(job.Firmware(&result))).To(Succeed())
		Expect(s.Storage.Peek(0x2000, 5)).
			To(Equal([]byte{0, 0x10, 0x20, 0x30, 0}))
		Expect(r.Bytes()).To(Equal([]byte{0xFF, 0xFF, 0xFF}))
	})

	It("should exchange single bytes", func() {
		s := build(MakeBuilder())

		var result JobResult
		job := Job{Kind: JobExchange, Data: []byte{0x3C, 0x5A, 0x00}}

		Expect(s.RunFirmware(job.Firmware(&result))).To(Succeed())
		Expect(result.Received).To(Equal([]byte{0x3C, 0x5A, 0x00}))
		Expect(s.SPI.NumCompletions()).To(Equal(uint64(3)))
	})

	It("should run a software burst longer than the queues", func() {
		s := build(MakeBuilder())
		data := pattern(600, 1)

		var result JobResult
		job := Job{Kind: JobBurst, Data: data}

		Expect(s.RunFirmware(job.Firmware(&result))).To(Succeed())
		Expect(result.Received).To(Equal(data))
		Expect(s.SPI.NumCompletions()).To(Equal(uint64(1)))
	})

	It("should run several firmware in a row", func() {
		s := build(MakeBuilder())

		var first, second JobResult

		Expect(s.RunFirmware(Job{Kind: JobExchange, Data: []byte{1}}.
			Firmware(&first))).To(Succeed())
		Expect(s.RunFirmware(Job{Kind: JobExchange, Data: []byte{2}}.
			Firmware(&second))).To(Succeed())

		Expect(first.Received).To(Equal([]byte{1}))
		Expect(second.Received).To(Equal([]byte{2}))
	})

	It("should latch the fault when a block transfer hangs", func() {
		s := build(MakeBuilder())

		var result JobResult
		job := Job{
			Kind:     JobIngress,
			Divider:  7,
			Length:   16,
			Watchdog: 1000,
		}

		err := s.RunFirmware(job.Firmware(&result))

		Expect(err).To(MatchError(firmware.ErrWatchdogTimeout))
		Expect(result.Fault).To(BeTrue())
		Expect(s.SPI.Mover().Busy()).To(BeTrue())

		status := s.SPI.RegisterDump()["STATUS"]
		Expect(status & burstspi.StatusDMABusy).NotTo(BeZero())
	})

	It("should stop firmware that runs too long", func() {
		c := DefaultConfig()
		c.MaxCycles = 500
		s := build(MakeBuilder().WithConfig(c))

		err := s.RunFirmware(func(p *cpu.Proc) error {
			for {
				p.Idle(10)
			}
		})

		Expect(err).To(MatchError(ErrCycleLimit))
		Expect(s.Cycle()).To(BeNumerically("<=", 500))
	})

	It("should log the transfers", func() {
		c := DefaultConfig()
		c.LogTrace = true
		buf := new(bytes.Buffer)
		s := build(MakeBuilder().
			WithConfig(c).
			WithTraceLogger(log.New(buf, "", 0)))

		var result JobResult
		Expect(s.RunFirmware(Job{Kind: JobExchange, Data: []byte{9}}.
			Firmware(&result))).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("Sys.SPI, Completion"))
		Expect(buf.String()).NotTo(ContainSubstring("Trans Start"))
	})

	It("should record the trace", func() {
		c := DefaultConfig()
		c.TracePath = filepath.Join(GinkgoT().TempDir(), "trace")
		s := build(MakeBuilder().WithConfig(c))

		var result JobResult
		Expect(s.RunFirmware(Job{Kind: JobExchange, Data: []byte{9}}.
			Firmware(&result))).To(Succeed())
		Expect(s.Close()).To(Succeed())

		r, err := datarecording.NewReader(c.TracePath)
		Expect(err).To(Succeed())
		defer r.Close()

		n, err := r.Count("trace")
		Expect(err).To(Succeed())
		Expect(n).To(BeNumerically(">", 0))
	})

	It("should flush the trace only when the simulation ends", func() {
		c := DefaultConfig()
		c.TracePath = filepath.Join(GinkgoT().TempDir(), "trace")
		s := build(MakeBuilder().WithConfig(c))

		ends := &endCounter{}
		s.Engine.RegisterSimulationEndHandler(ends)

		var result JobResult
		Expect(s.RunFirmware(Job{Kind: JobExchange, Data: []byte{9}}.
			Firmware(&result))).To(Succeed())

		r, err := datarecording.NewReader(c.TracePath)
		Expect(err).To(Succeed())
		defer r.Close()

		n, err := r.Count("trace")
		Expect(err).To(Succeed())
		Expect(n).To(BeZero())

		Expect(s.Close()).To(Succeed())
		Expect(s.Close()).To(Succeed())
		Expect(ends.calls).To(Equal(1))

		n, err = r.Count("trace")
		Expect(err).To(Succeed())
		Expect(n).To(BeNumerically(">", 0))
	})

	It("should register the components with the monitor", func() {
		m := monitoring.NewMonitor()
		build(MakeBuilder().WithMonitor(m))

		rec := httptest.NewRecorder()
		m.Router().ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/api/list_components", nil))

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(ContainElements("Sys.Host", "Sys.SPI", "Sys.Sequencer"))
	})

	It("should track the progress of a transfer", func() {
		m := monitoring.NewMonitor()
		s := build(MakeBuilder().WithMonitor(m))
		bar := m.CreateProgressBar("Egress", 4)
		s.TrackProgress(bar)

		var result JobResult
		job := Job{Kind: JobEgress, Address: 0x1000, Length: 4}

		Expect(s.RunFirmware(job.Firmware(&result))).To(Succeed())
		Expect(bar.Finished).To(Equal(uint64(4)))
		Expect(bar.InProgress).To(BeZero())
		Expect(bar.Done()).To(BeTrue())
	})
})

type endCounter struct {
	calls int
}

func (e *endCounter) Handle(_ sim.VTimeInSec) {
	e.calls++
}

// mixedWorkload stores words, receives a block, sends a block, and stores
// single bytes.
func mixedWorkload(p *cpu.Proc) error {
	for i := 0; i < 16; i++ {
		p.Store32(uint32(0x100+4*i), uint32(i)*0x01010101)
	}

	d := firmware.MakeBuilder().Build(p)

	if err := d.Configure(spi.Mode0, 0); err != nil {
		return err
	}

	if err := d.Select(true); err != nil {
		return err
	}

	if err := d.BlockTransfer(0x203, 8, dma.Ingress); err != nil {
		return err
	}

	if err := d.BlockTransfer(0x100, 8, dma.Egress); err != nil {
		return err
	}

	for i := 0; i < 8; i++ {
		p.StoreByte(uint32(0x301+3*i), byte(0xC0+i))
	}

	return d.Select(false)
}

var _ = Describe("Dual clock", func() {
	run := func(dual bool) (*System, *spi.RecordingResponder) {
		c := DefaultConfig()
		c.DualClock = dual

		rec := &spi.RecordingResponder{
			Inner: spi.NewScriptedResponder(pattern(8, 0x40)...),
		}
		s := build(MakeBuilder().
			WithConfig(c).
			WithDevice(spi.NewByteDevice(spi.Mode0, rec)))

		Expect(s.RunFirmware(mixedWorkload)).To(Succeed())

		return s, rec
	}

	It("should leave the same storage contents as a single clock", func() {
		single, singleRec := run(false)
		dual, dualRec := run(true)

		Expect(dual.Storage.Peek(0, 0x400)).
			To(Equal(single.Storage.Peek(0, 0x400)))
		Expect(dualRec.ReceivedBytes()).To(Equal(singleRec.ReceivedBytes()))
		Expect(dual.Storage.Peek(0x203, 8)).To(Equal(pattern(8, 0x40)))
		Expect(dual.Bridge).NotTo(BeNil())
	})

	It("should complete every transaction exactly once", func() {
		for _, dual := range []bool{false, true} {
			s, _ := run(dual)
			starts := s.Counter().Total(sequencer.HookPosTransStart.Name)
			ends := s.Counter().Total(sequencer.HookPosTransEnd.Name)

			Expect(starts).To(Equal(uint64(16 + 8 + 8 + 8)))
			Expect(ends).To(Equal(starts))
			Expect(s.Sequencer.NumAccepted()).To(Equal(starts))
		}
	})
})
