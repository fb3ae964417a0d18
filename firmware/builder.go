package firmware

// DefaultWatchdog is the default watchdog timeout in processor cycles.
const DefaultWatchdog = 1 << 22

// DefaultPollInterval is the default number of cycles between two retries.
const DefaultPollInterval = 8

// Builder can build drivers.
type Builder struct {
	watchdog     int
	pollInterval int
}

// MakeBuilder returns a Builder with the default timeouts.
func MakeBuilder() Builder {
	return Builder{
		watchdog:     DefaultWatchdog,
		pollInterval: DefaultPollInterval,
	}
}

// WithWatchdog sets the number of cycles the driver waits for a completion.
func (b Builder) WithWatchdog(cycles int) Builder {
	b.watchdog = cycles
	return b
}

// WithPollInterval sets the number of cycles between two retries of a
// rejected write.
func (b Builder) WithPollInterval(cycles int) Builder {
	b.pollInterval = cycles
	return b
}

// Build creates a driver that uses the processor.
func (b Builder) Build(p Processor) *Driver {
	if b.pollInterval <= 0 {
		panic("poll interval must be positive")
	}

	return &Driver{
		p:            p,
		watchdog:     b.watchdog,
		pollInterval: b.pollInterval,
	}
}
