package cpu

import (
	"runtime"

	"github.com/sarchlab/spidma/bus"
)

// Proc is the view of the processor that firmware uses. All the methods block
// until the host has completed the operation.
type Proc struct {
	ops     chan<- Op
	results <-chan result
	quit    <-chan struct{}
	cycle   uint64
}

func (p *Proc) call(op Op) result {
	select {
	case p.ops <- op:
	case <-p.quit:
		runtime.Goexit()
	}

	select {
	case r := <-p.results:
		p.cycle = r.cycle
		return r
	case <-p.quit:
		runtime.Goexit()
	}

	return result{}
}

// Cycle returns the host cycle at which the last operation completed.
func (p *Proc) Cycle() uint64 {
	return p.cycle
}

// Load32 reads the aligned word that contains the address. Addresses in the
// peripheral window read registers.
func (p *Proc) Load32(addr uint32) uint32 {
	if InPeripheralWindow(addr) {
		return p.ReadReg(addr - PeripheralBase)
	}

	return p.call(Op{Kind: OpLoad, Address: addr &^ 0x3}).data
}

// LoadByte reads one byte of the storage.
func (p *Proc) LoadByte(addr uint32) byte {
	return byte(p.Load32(addr) >> (8 * (addr & 0x3)))
}

// Store32 writes an aligned word. Addresses in the peripheral window write
// registers.
func (p *Proc) Store32(addr, v uint32) {
	if InPeripheralWindow(addr) {
		p.WriteReg(addr-PeripheralBase, v)
		return
	}

	p.call(Op{
		Kind:    OpStore,
		Address: addr &^ 0x3,
		Mask:    bus.MaskAll,
		Data:    v,
	})
}

// StoreByte writes one byte of the storage.
func (p *Proc) StoreByte(addr uint32, b byte) {
	lane := addr & 0x3

	p.call(Op{
		Kind:    OpStore,
		Address: addr,
		Mask:    bus.LaneMask(addr),
		Data:    uint32(b) << (8 * lane),
	})
}

// ReadReg reads a peripheral register.
func (p *Proc) ReadReg(offset uint32) uint32 {
	return p.call(Op{Kind: OpRegRead, Address: offset}).data
}

// WriteReg writes a peripheral register. It returns false if the peripheral
// did not acknowledge the write.
func (p *Proc) WriteReg(offset, v uint32) bool {
	return p.call(Op{Kind: OpRegWrite, Address: offset, Data: v}).ok
}

// Idle lets n cycles pass.
func (p *Proc) Idle(n int) {
	p.call(Op{Kind: OpIdle, Cycles: n})
}

// ClearIRQ drops the completion pulses that were not waited for.
func (p *Proc) ClearIRQ() {
	p.call(Op{Kind: OpClearIRQ})
}

// WaitIRQ waits for one completion pulse for at most timeout cycles. It
// returns false if the timeout expired first.
func (p *Proc) WaitIRQ(timeout int) bool {
	return p.call(Op{Kind: OpWaitIRQ, Cycles: timeout}).ok
}
