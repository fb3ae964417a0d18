package platform

import (
	"fmt"
	"log"
	"os"

	"github.com/sarchlab/spidma/burstspi"
	"github.com/sarchlab/spidma/bus"
	"github.com/sarchlab/spidma/cpu"
	"github.com/sarchlab/spidma/datarecording"
	"github.com/sarchlab/spidma/mem"
	"github.com/sarchlab/spidma/mem/cdc"
	"github.com/sarchlab/spidma/mem/sequencer"
	"github.com/sarchlab/spidma/monitoring"
	"github.com/sarchlab/spidma/sim"
	"github.com/sarchlab/spidma/spi"
	"github.com/sarchlab/spidma/tracing"
)

// Builder can build systems.
type Builder struct {
	cfg     Config
	device  spi.Device
	monitor *monitoring.Monitor
	logger  *log.Logger
}

// MakeBuilder returns a Builder with the default configuration and a loopback
// serial device.
func MakeBuilder() Builder {
	return Builder{
		cfg:    DefaultConfig(),
		device: spi.Loopback{},
	}
}

// WithConfig sets the configuration.
func (b Builder) WithConfig(c Config) Builder {
	b.cfg = c
	return b
}

// WithDevice sets the external serial device.
func (b Builder) WithDevice(d spi.Device) Builder {
	b.device = d
	return b
}

// WithMonitor registers the engine, the domains, and the components with the
// monitor.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// WithTraceLogger sets the logger used when LogTrace is on. The default
// writes to the standard error.
func (b Builder) WithTraceLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// Build creates a system.
func (b Builder) Build(name string) (*System, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	s := &System{
		cfg:     b.cfg,
		Engine:  sim.NewSerialEngine(),
		Device:  b.device,
		counter: tracing.NewAccessCounter(),
	}

	s.SysDomain = sim.NewDomain(name+".System", s.Engine, b.cfg.Freq)
	s.StorageDomain = s.SysDomain

	if b.cfg.DualClock {
		s.StorageDomain = sim.NewDomain(
			name+".Storage", s.Engine, 2*b.cfg.Freq)
	}

	b.buildComponents(name, s)
	b.registerComponents(s)

	if err := b.attachTracers(s); err != nil {
		return nil, err
	}

	b.registerWithMonitor(s)

	s.SysDomain.AcceptHook(runGuard{s: s})

	return s, nil
}

func (b Builder) buildComponents(name string, s *System) {
	cells := uint32(b.cfg.StorageBytes / mem.CellBytes)
	s.Storage = mem.NewNativeDevice(name+".Storage", cells)

	s.SPI = burstspi.MakeBuilder().
		WithDevice(b.device).
		Build(name + ".SPI")

	s.Host = cpu.MakeBuilder().
		WithRegs(s.SPI.Regs()).
		WithIRQ(s.SPI).
		Build(name + ".Host")

	s.Arbiter = bus.NewArbiter(
		name+".Arbiter", s.Host.Port(), s.SPI.EnginePort())
	s.Host.SetBus(s.Arbiter)
	s.SPI.SetBus(s.Arbiter)

	s.Sequencer = sequencer.MakeBuilder().
		WithDevice(s.Storage).
		Build(name + ".Sequencer")

	if !b.cfg.DualClock {
		s.Sequencer.SetSource(s.Arbiter)
		s.Arbiter.SetTarget(s.Sequencer)

		return
	}

	s.Bridge = cdc.MakeBuilder().
		WithSource(s.Arbiter).
		WithTarget(s.Sequencer).
		WithDomains(s.SysDomain, s.StorageDomain).
		Build(name + ".Bridge")
	s.Arbiter.SetTarget(s.Bridge.BusEnd())
	s.Sequencer.SetSource(s.Bridge.DeviceEnd())
}

func (b Builder) registerComponents(s *System) {
	s.SysDomain.Register(s.Host)
	s.SysDomain.Register(s.SPI)

	if s.Bridge != nil {
		s.SysDomain.Register(s.Bridge.BusEnd())
		s.StorageDomain.Register(s.Bridge.DeviceEnd())
	}

	s.StorageDomain.Register(s.Sequencer)
}

func (b Builder) attachTracers(s *System) error {
	type traced struct {
		target sim.Hookable
		clock  *sim.Domain
	}

	targets := []traced{
		{s.Host, s.SysDomain},
		{s.SPI, s.SysDomain},
		{s.SPI.Engine(), s.SysDomain},
		{s.SPI.Mover(), s.SysDomain},
		{s.SPI.TxQueue(), s.SysDomain},
		{s.SPI.RxQueue(), s.SysDomain},
		{s.Arbiter, s.SysDomain},
		{s.Sequencer, s.StorageDomain},
		{s.Storage, s.StorageDomain},
	}

	tracers := []tracing.Tracer{s.counter}

	if b.cfg.LogTrace {
		logger := b.logger
		if logger == nil {
			logger = log.New(os.Stderr, "", 0)
		}

		tracers = append(tracers, tracing.NewLogTracer(logger, isTransferRecord))
	}

	if b.cfg.TracePath != "" {
		recorder, err := datarecording.New(b.cfg.TracePath)
		if err != nil {
			return fmt.Errorf("trace: %w", err)
		}

		s.recorder = recorder
		s.dbTracer = tracing.NewDBTracer(recorder, "trace", nil)
		tracers = append(tracers, s.dbTracer)
		s.Engine.RegisterSimulationEndHandler(traceFlusher{t: s.dbTracer})
	}

	for _, t := range targets {
		for _, tracer := range tracers {
			tracing.CollectTrace(t.target, t.clock, tracer)
		}
	}

	return nil
}

// isTransferRecord accepts the records that describe whole transfers rather
// than single bus cycles.
func isTransferRecord(r tracing.Record) bool {
	switch r.What {
	case cpu.HookPosOpStart.Name,
		burstspi.HookPosRegAccess.Name,
		burstspi.HookPosCompletion.Name,
		spi.HookPosExchangeEnd.Name:
		return true
	default:
		return false
	}
}

func (b Builder) registerWithMonitor(s *System) {
	if b.monitor == nil {
		return
	}

	b.monitor.RegisterEngine(s.Engine)
	b.monitor.RegisterDomain(s.SysDomain)

	if s.StorageDomain != s.SysDomain {
		b.monitor.RegisterDomain(s.StorageDomain)
	}

	for _, c := range s.Components() {
		b.monitor.RegisterComponent(c)
	}
}
