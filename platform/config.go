// Package platform assembles the complete system: the processor, the storage,
// the bus, and the serial peripheral with its block mover.
package platform

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sarchlab/spidma/mem"
	"github.com/sarchlab/spidma/sim"
)

// ErrInvalidConfig is returned for configurations that cannot be built.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config describes a system.
type Config struct {
	// StorageBytes is the size of the shared storage. It must be a multiple
	// of the native cell size.
	StorageBytes int

	// Freq is the frequency of the system clock.
	Freq sim.Freq

	// DualClock moves the storage into its own domain running at twice the
	// system clock, connected through a clock domain crossing bridge.
	DualClock bool

	// TracePath, if not empty, records the trace of every component into a
	// SQLite database at TracePath.sqlite3.
	TracePath string

	// LogTrace prints the trace of the peripheral to the standard error.
	LogTrace bool

	// Monitor starts the monitoring server on MonitorPort. Port 0 picks a
	// random port.
	Monitor     bool
	MonitorPort int

	// MaxCycles bounds a firmware run in system cycles. Zero means no bound.
	MaxCycles uint64

	// DrainCycles bounds the cycles run after the firmware returns while the
	// system is still active.
	DrainCycles uint64
}

// DefaultConfig returns the reset configuration.
func DefaultConfig() Config {
	return Config{
		StorageBytes: int(64 * mem.KB),
		Freq:         50 * sim.MHz,
		DrainCycles:  4096,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.StorageBytes <= 0 || c.StorageBytes%mem.CellBytes != 0 {
		return fmt.Errorf("storage of %d bytes: %w",
			c.StorageBytes, ErrInvalidConfig)
	}

	if c.Freq <= 0 {
		return fmt.Errorf("frequency %.0f Hz: %w", float64(c.Freq),
			ErrInvalidConfig)
	}

	return nil
}

// Environment variables read by ConfigFromEnv.
const (
	EnvStorageBytes = "SPIDMA_STORAGE_BYTES"
	EnvFreqMHz      = "SPIDMA_FREQ_MHZ"
	EnvDualClock    = "SPIDMA_DUAL_CLOCK"
	EnvTracePath    = "SPIDMA_TRACE"
	EnvLogTrace     = "SPIDMA_LOG_TRACE"
	EnvMonitor      = "SPIDMA_MONITOR"
	EnvMonitorPort  = "SPIDMA_MONITOR_PORT"
	EnvMaxCycles    = "SPIDMA_MAX_CYCLES"
)

// ConfigFromEnv overrides the base configuration with the SPIDMA_ variables
// of the environment.
func ConfigFromEnv(base Config) (Config, error) {
	c := base

	if err := envInt(EnvStorageBytes, &c.StorageBytes); err != nil {
		return base, err
	}

	var mhz float64
	if err := envFloat(EnvFreqMHz, &mhz); err != nil {
		return base, err
	}

	if mhz != 0 {
		c.Freq = sim.Freq(mhz) * sim.MHz
	}

	if err := envBool(EnvDualClock, &c.DualClock); err != nil {
		return base, err
	}

	if v, ok := os.LookupEnv(EnvTracePath); ok {
		c.TracePath = v
	}

	if err := envBool(EnvLogTrace, &c.LogTrace); err != nil {
		return base, err
	}

	if err := envBool(EnvMonitor, &c.Monitor); err != nil {
		return base, err
	}

	if err := envInt(EnvMonitorPort, &c.MonitorPort); err != nil {
		return base, err
	}

	var maxCycles int
	if err := envInt(EnvMaxCycles, &maxCycles); err != nil {
		return base, err
	}

	if maxCycles > 0 {
		c.MaxCycles = uint64(maxCycles)
	}

	return c, c.Validate()
}

func envInt(name string, v *int) error {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%s=%q: %w", name, s, ErrInvalidConfig)
	}

	*v = n

	return nil
}

func envFloat(name string, v *float64) error {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%s=%q: %w", name, s, ErrInvalidConfig)
	}

	*v = f

	return nil
}

func envBool(name string, v *bool) error {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return nil
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("%s=%q: %w", name, s, ErrInvalidConfig)
	}

	*v = b

	return nil
}
