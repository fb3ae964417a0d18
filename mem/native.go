package mem

import (
	"log"

	"github.com/sarchlab/spidma/sim"
)

// HookPosNativeRead marks a sampled read of a native cell.
var HookPosNativeRead = &sim.HookPos{Name: "Native Read"}

// HookPosNativeWrite marks a committed write of a native cell.
var HookPosNativeWrite = &sim.HookPos{Name: "Native Write"}

// CellBytes is the width of a native cell.
const CellBytes = 2

// Pins are the control and data lines of the storage device for one cycle.
type Pins struct {
	Address uint32
	Data    uint16
	CE      bool
	OE      bool
	WE      bool
}

// A NativeAccess describes one sampled read or committed write.
type NativeAccess struct {
	Cell  uint32
	Write bool
	Data  uint16
}

// A NativeDevice is an asynchronous memory of 16-bit cells. The device has no
// byte enables. It checks the address setup budget by comparing the pins of
// the current cycle with the pins of the previous cycle: a read is sampled
// and a write is committed only if the address (and the write data) were
// already stable in the previous cycle.
type NativeDevice struct {
	sim.HookableBase

	name    string
	storage *Storage
	cells   uint32

	prev   Pins
	reads  uint64
	writes uint64
}

// NewNativeDevice creates a device with the given number of cells.
func NewNativeDevice(name string, cells uint32) *NativeDevice {
	return &NativeDevice{
		name:    name,
		storage: NewStorage(uint64(cells) * CellBytes),
		cells:   cells,
	}
}

// Name returns the name of the device.
func (d *NativeDevice) Name() string {
	return d.name
}

// Cells returns the number of populated cells.
func (d *NativeDevice) Cells() uint32 {
	return d.cells
}

// Drive applies the pins for one cycle and returns the value on the data
// bus. Addresses beyond the populated range wrap around.
func (d *NativeDevice) Drive(p Pins) uint16 {
	defer func() { d.prev = p }()

	if !p.CE {
		return 0
	}

	if p.OE && p.WE {
		log.Panicf("%s: OE and WE asserted at the same time", d.name)
	}

	setUp := d.prev.CE && d.prev.Address == p.Address

	switch {
	case p.OE:
		if !setUp {
			log.Panicf("%s: read of cell 0x%x without address setup",
				d.name, p.Address)
		}

		data := d.readCell(p.Address)
		d.reads++
		d.invokeAccessHook(HookPosNativeRead, p.Address, false, data)

		return data
	case p.WE:
		if !setUp || d.prev.Data != p.Data || d.prev.WE {
			log.Panicf("%s: write of cell 0x%x without setup",
				d.name, p.Address)
		}

		d.writeCell(p.Address, p.Data)
		d.writes++
		d.invokeAccessHook(HookPosNativeWrite, p.Address, true, p.Data)
	}

	return 0
}

func (d *NativeDevice) invokeAccessHook(
	pos *sim.HookPos,
	cell uint32,
	write bool,
	data uint16,
) {
	if d.NumHooks() == 0 {
		return
	}

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    pos,
		Item:   NativeAccess{Cell: cell % d.cells, Write: write, Data: data},
	})
}

func (d *NativeDevice) byteAddr(cell uint32) uint64 {
	return uint64(cell%d.cells) * CellBytes
}

func (d *NativeDevice) readCell(cell uint32) uint16 {
	b, err := d.storage.Read(d.byteAddr(cell), CellBytes)
	if err != nil {
		log.Panic(err)
	}

	return uint16(b[0]) | uint16(b[1])<<8
}

func (d *NativeDevice) writeCell(cell uint32, v uint16) {
	err := d.storage.Write(d.byteAddr(cell), []byte{byte(v), byte(v >> 8)})
	if err != nil {
		log.Panic(err)
	}
}

// Reads returns the number of sampled reads.
func (d *NativeDevice) Reads() uint64 {
	return d.reads
}

// Writes returns the number of committed writes.
func (d *NativeDevice) Writes() uint64 {
	return d.writes
}

// Accesses returns the number of native accesses of both kinds.
func (d *NativeDevice) Accesses() uint64 {
	return d.reads + d.writes
}

// Peek reads bytes without going through the pins. Byte addresses wrap the
// same way as cell addresses do.
func (d *NativeDevice) Peek(byteAddr uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		addr := uint64(byteAddr+uint32(i)) % d.storage.Capacity()

		b, err := d.storage.Read(addr, 1)
		if err != nil {
			log.Panic(err)
		}

		out[i] = b[0]
	}

	return out
}

// Poke writes bytes without going through the pins.
func (d *NativeDevice) Poke(byteAddr uint32, data []byte) {
	for i, v := range data {
		addr := uint64(byteAddr+uint32(i)) % d.storage.Capacity()

		if err := d.storage.Write(addr, []byte{v}); err != nil {
			log.Panic(err)
		}
	}
}
