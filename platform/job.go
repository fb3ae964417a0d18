package platform

import (
	"fmt"

	"github.com/sarchlab/spidma/cpu"
	"github.com/sarchlab/spidma/dma"
	"github.com/sarchlab/spidma/firmware"
	"github.com/sarchlab/spidma/spi"
)

// JobKind selects how a job moves its bytes.
type JobKind int

// Kinds of jobs.
const (
	// JobExchange sends the bytes one at a time outside of any burst.
	JobExchange JobKind = iota

	// JobBurst sends the bytes as one software burst.
	JobBurst

	// JobEgress sends Length bytes of the storage at Address through the
	// block mover.
	JobEgress

	// JobIngress receives Length bytes into the storage at Address through
	// the block mover.
	JobIngress
)

func (k JobKind) String() string {
	switch k {
	case JobExchange:
		return "exchange"
	case JobBurst:
		return "burst"
	case JobEgress:
		return "egress"
	case JobIngress:
		return "ingress"
	default:
		return fmt.Sprintf("JobKind(%d)", int(k))
	}
}

// ParseJobKind converts a name printed by JobKind.String back to a kind.
func ParseJobKind(s string) (JobKind, error) {
	for k := JobExchange; k <= JobIngress; k++ {
		if k.String() == s {
			return k, nil
		}
	}

	return 0, fmt.Errorf("job kind %q: %w", s, ErrInvalidConfig)
}

// A Job is a transfer run by the built-in firmware.
type Job struct {
	Kind    JobKind
	Mode    spi.Mode
	Divider int

	// Data is sent by exchange and burst jobs.
	Data []byte

	// Address and Length describe the storage region of block jobs.
	Address uint32
	Length  int

	// Watchdog bounds every wait of the driver. Zero selects the driver
	// default.
	Watchdog int
}

// A JobResult is what a job observed.
type JobResult struct {
	Received []byte
	Cycles   uint64
	Fault    bool
}

// Firmware returns the firmware that runs the job and fills the result.
func (j Job) Firmware(result *JobResult) cpu.Firmware {
	return func(p *cpu.Proc) error {
		b := firmware.MakeBuilder()
		if j.Watchdog > 0 {
			b = b.WithWatchdog(j.Watchdog)
		}

		d := b.Build(p)
		start := p.Cycle()

		err := j.run(d, result)

		result.Cycles = p.Cycle() - start
		result.Fault = d.Fault()

		if err != nil {
			return fmt.Errorf("%s job: %w", j.Kind, err)
		}

		return nil
	}
}

func (j Job) run(d *firmware.Driver, result *JobResult) error {
	if err := d.Configure(j.Mode, j.Divider); err != nil {
		return err
	}

	if err := d.Select(true); err != nil {
		return err
	}

	if err := j.transfer(d, result); err != nil {
		return err
	}

	return d.Select(false)
}

func (j Job) transfer(d *firmware.Driver, result *JobResult) error {
	switch j.Kind {
	case JobExchange:
		for _, b := range j.Data {
			rx, err := d.Exchange(b)
			if err != nil {
				return err
			}

			result.Received = append(result.Received, rx)
		}
	case JobBurst:
		rx, err := d.WriteBurst(j.Data)
		result.Received = rx

		if err != nil {
			return err
		}
	case JobEgress:
		return d.BlockTransfer(j.Address, j.Length, dma.Egress)
	case JobIngress:
		return d.BlockTransfer(j.Address, j.Length, dma.Ingress)
	default:
		return fmt.Errorf("job kind %d: %w", int(j.Kind), ErrInvalidConfig)
	}

	return nil
}
