package platform

import (
	"errors"
	"fmt"

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

// ErrCycleLimit is returned when the firmware does not return within the
// configured number of cycles.
var ErrCycleLimit = errors.New("cycle limit reached")

// System is a complete assembly.
type System struct {
	Engine        *sim.SerialEngine
	SysDomain     *sim.Domain
	StorageDomain *sim.Domain

	Storage   *mem.NativeDevice
	Sequencer *sequencer.Comp
	Bridge    *cdc.Bridge
	Arbiter   *bus.Arbiter
	SPI       *burstspi.Comp
	Host      *cpu.Host
	Device    spi.Device

	cfg      Config
	counter  *tracing.AccessCounter
	dbTracer *tracing.DBTracer
	recorder datarecording.DataRecorder

	progress     *monitoring.ProgressBar
	progressBase uint64

	drained  uint64
	limitHit bool
	closed   bool
}

// Config returns the configuration the system was built with.
func (s *System) Config() Config {
	return s.cfg
}

// Counter returns the counter that counts the hook invocations of every
// component.
func (s *System) Counter() *tracing.AccessCounter {
	return s.counter
}

// Cycle returns the number of system cycles run.
func (s *System) Cycle() uint64 {
	return s.SysDomain.Cycle()
}

// Components returns every clocked component of the system.
func (s *System) Components() []sim.Component {
	components := append([]sim.Component(nil), s.SysDomain.Components()...)

	if s.cfg.DualClock {
		components = append(components, s.StorageDomain.Components()...)
	}

	return components
}

// RunFirmware runs the firmware to completion. The simulation continues after
// the firmware returns until the system is quiescent or the drain bound is
// reached. It returns the error returned by the firmware.
func (s *System) RunFirmware(fw cpu.Firmware) error {
	s.drained = 0
	s.limitHit = false

	s.Host.Load(fw)
	s.resume()
	s.SysDomain.TickLater()

	if err := s.Engine.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if !s.Host.Finished() {
		s.Host.Stop()
		return fmt.Errorf("after %d cycles: %w", s.Cycle(), ErrCycleLimit)
	}

	return s.Host.Err()
}

// Step runs n system cycles without the event engine. In the dual clock
// configuration, the storage domain runs two cycles per system cycle.
func (s *System) Step(n int) {
	for i := 0; i < n; i++ {
		s.SysDomain.Step()

		if s.cfg.DualClock {
			s.StorageDomain.Step()
			s.StorageDomain.Step()
		}
	}
}

// Close ends the simulation, which writes the recorded trace, and releases
// the database. Closing twice does nothing.
func (s *System) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.Engine.Finished()

	if s.recorder == nil {
		return nil
	}

	err := s.recorder.Close()
	s.recorder = nil

	return err
}

// traceFlusher writes the buffered trace when the simulation ends.
type traceFlusher struct {
	t *tracing.DBTracer
}

func (f traceFlusher) Handle(_ sim.VTimeInSec) {
	f.t.Terminate()
}

// TrackProgress updates the bar at the end of every system cycle. Bytes in
// the transmit queue are in progress and exchanged bytes are finished.
func (s *System) TrackProgress(bar *monitoring.ProgressBar) {
	s.progress = bar
	s.progressBase = s.counter.Total(spi.HookPosExchangeEnd.Name)
}

func (s *System) updateProgress() {
	if s.progress == nil {
		return
	}

	exchanged := s.counter.Total(spi.HookPosExchangeEnd.Name) - s.progressBase
	s.progress.Update(uint64(s.SPI.TxQueue().Size()), exchanged)
}

func (s *System) halt() {
	s.SysDomain.Halt()
	s.StorageDomain.Halt()
}

func (s *System) resume() {
	s.SysDomain.Resume()
	s.StorageDomain.Resume()
}

// runGuard bounds a run at the end of every system cycle.
type runGuard struct {
	s *System
}

func (g runGuard) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosCycleEnd {
		return
	}

	s := g.s
	s.updateProgress()

	if s.cfg.MaxCycles > 0 && s.Cycle()+1 >= s.cfg.MaxCycles {
		s.limitHit = true
		s.halt()

		return
	}

	if s.Host.Finished() {
		s.drained++

		if s.drained >= s.cfg.DrainCycles {
			s.halt()
		}
	}
}
