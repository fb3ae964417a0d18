// Package firmware provides the driver that firmware uses to program the
// burst-capable serial peripheral.
package firmware

import (
	"errors"
	"fmt"

	"github.com/sarchlab/spidma/burstspi"
	"github.com/sarchlab/spidma/dma"
	"github.com/sarchlab/spidma/spi"
)

var (
	// ErrBusy is returned when the peripheral keeps rejecting a write.
	ErrBusy = errors.New("peripheral busy")

	// ErrWatchdogTimeout is returned when a completion does not arrive in
	// time.
	ErrWatchdogTimeout = errors.New("watchdog timeout")

	// ErrFault is returned by every operation after a block transfer timed
	// out.
	ErrFault = errors.New("peripheral in fault state")

	// ErrInvalidArgument is returned for lengths and dividers the
	// peripheral cannot represent.
	ErrInvalidArgument = errors.New("invalid argument")
)

// MaxTransferLength is the longest transfer one BURST_LENGTH write can
// describe.
const MaxTransferLength = 0xFFFF_FFFF

// Processor is what the driver needs from the processor.
type Processor interface {
	ReadReg(offset uint32) uint32
	WriteReg(offset, v uint32) bool
	Idle(n int)
	WaitIRQ(timeout int) bool
	ClearIRQ()
}

// Driver programs the peripheral.
type Driver struct {
	p            Processor
	watchdog     int
	pollInterval int
	fault        bool
}

// Fault tells if a block transfer has timed out. The fault is never cleared.
func (d *Driver) Fault() bool {
	return d.fault
}

// Configure sets the serial mode and the clock divider.
func (d *Driver) Configure(mode spi.Mode, divider int) error {
	if err := d.checkFault(); err != nil {
		return err
	}

	if divider < spi.MinDivider || divider > spi.MaxDivider {
		return fmt.Errorf("divider %d: %w", divider, ErrInvalidArgument)
	}

	v := uint32(divider) << burstspi.ControlDividerShift
	if mode.CPOL {
		v |= burstspi.ControlCPOL
	}

	if mode.CPHA {
		v |= burstspi.ControlCPHA
	}

	if err := d.writeRetry(burstspi.RegControl, v, nil); err != nil {
		return fmt.Errorf("configure: %w", err)
	}

	return nil
}

// Select asserts or de-asserts the chip select.
func (d *Driver) Select(on bool) error {
	if err := d.checkFault(); err != nil {
		return err
	}

	v := uint32(0)
	if on {
		v = burstspi.ChipSelectAssert
	}

	if !d.p.WriteReg(burstspi.RegChipSelect, v) {
		return fmt.Errorf("select: %w", ErrBusy)
	}

	return nil
}

// Exchange sends one byte outside of any burst and returns the byte
// received at the same time.
func (d *Driver) Exchange(b byte) (byte, error) {
	if err := d.checkFault(); err != nil {
		return 0, err
	}

	d.p.ClearIRQ()

	if err := d.writeRetry(burstspi.RegData, uint32(b), nil); err != nil {
		return 0, fmt.Errorf("exchange 0x%02x: %w", b, err)
	}

	if !d.p.WaitIRQ(d.watchdog) {
		return 0, fmt.Errorf("exchange 0x%02x: %w", b, ErrWatchdogTimeout)
	}

	return byte(d.p.ReadReg(burstspi.RegData)), nil
}

// WriteBurst sends the bytes as one software burst and returns the bytes
// received. The processor feeds the transmit queue and drains the receive
// queue.
func (d *Driver) WriteBurst(data []byte) ([]byte, error) {
	if err := d.checkFault(); err != nil {
		return nil, err
	}

	if len(data) == 0 || uint64(len(data)) > MaxTransferLength {
		return nil, fmt.Errorf("burst of %d bytes: %w",
			len(data), ErrInvalidArgument)
	}

	d.p.ClearIRQ()

	if !d.p.WriteReg(burstspi.RegBurstLength, uint32(len(data))) {
		return nil, fmt.Errorf("burst length: %w", ErrBusy)
	}

	rx := make([]byte, 0, len(data))

	for i, b := range data {
		err := d.writeRetry(burstspi.RegData, uint32(b), &rx)
		if err != nil {
			return rx, fmt.Errorf("burst byte %d: %w", i, err)
		}
	}

	for waited := 0; len(rx) < len(data); {
		if d.drain(&rx) > 0 {
			continue
		}

		if waited >= d.watchdog {
			return rx, fmt.Errorf("burst of %d bytes: received %d: %w",
				len(data), len(rx), ErrWatchdogTimeout)
		}

		d.p.Idle(d.pollInterval)
		waited += d.pollInterval
	}

	// The completion pulse was raised with the last byte.
	if !d.p.WaitIRQ(d.watchdog) {
		return rx, fmt.Errorf("burst of %d bytes: %w",
			len(data), ErrWatchdogTimeout)
	}

	return rx, nil
}

// ReadBurst receives n bytes as one software burst, sending the filler
// byte.
func (d *Driver) ReadBurst(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("burst of %d bytes: %w", n, ErrInvalidArgument)
	}

	fill := make([]byte, n)
	for i := range fill {
		fill[i] = dma.IngressFiller
	}

	return d.WriteBurst(fill)
}

// BlockTransfer moves n bytes between the storage at addr and the serial
// link without processor intervention. It waits for the completion under a
// watchdog. If the watchdog expires, the driver enters the fault state and
// the transfer is not retried.
func (d *Driver) BlockTransfer(addr uint32, n int, dir dma.Direction) error {
	if err := d.checkFault(); err != nil {
		return err
	}

	if n <= 0 || uint64(n) > MaxTransferLength {
		return fmt.Errorf("block transfer of %d bytes: %w",
			n, ErrInvalidArgument)
	}

	d.p.ClearIRQ()

	if !d.p.WriteReg(burstspi.RegBurstLength, uint32(n)) {
		return fmt.Errorf("block transfer length: %w", ErrBusy)
	}

	d.p.WriteReg(burstspi.RegDMAAddress, addr)

	ctrl := burstspi.DMAStart | burstspi.DMAIRQEnable
	if dir == dma.Ingress {
		ctrl |= burstspi.DMAIngress
	}

	if !d.p.WriteReg(burstspi.RegDMAControl, ctrl) {
		return fmt.Errorf("block transfer start: %w", ErrBusy)
	}

	if !d.p.WaitIRQ(d.watchdog) {
		d.fault = true

		return fmt.Errorf("block transfer of %d bytes at 0x%08x: %w",
			n, addr, ErrWatchdogTimeout)
	}

	return nil
}

func (d *Driver) checkFault() error {
	if d.fault {
		return ErrFault
	}

	return nil
}

// writeRetry writes a register until the peripheral accepts it. While
// waiting, it drains the receive queue into rx if rx is not nil. Only idle
// cycles count toward the watchdog.
func (d *Driver) writeRetry(offset, v uint32, rx *[]byte) error {
	waited := 0

	for {
		if d.p.WriteReg(offset, v) {
			return nil
		}

		if waited >= d.watchdog {
			return ErrBusy
		}

		if rx != nil && d.drain(rx) > 0 {
			continue
		}

		d.p.Idle(d.pollInterval)
		waited += d.pollInterval
	}
}

func (d *Driver) drain(rx *[]byte) int {
	status := d.p.ReadReg(burstspi.RegStatus)
	n := burstspi.RxCount(status)

	for i := 0; i < n; i++ {
		*rx = append(*rx, byte(d.p.ReadReg(burstspi.RegData)))
	}

	return n
}
