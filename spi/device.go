package spi

// A Device is attached to the serial lines of the engine. Drive is called
// once per cycle with the pins latched at the last edge and returns the MISO
// line.
type Device interface {
	Drive(p Pins) bool
}

// Loopback connects MOSI back to MISO.
type Loopback struct{}

// Drive returns the MOSI line.
func (Loopback) Drive(p Pins) bool {
	return p.MOSI
}

// A Responder decides the bytes a ByteDevice sends and receives the bytes it
// gets.
type Responder interface {
	// Next returns the byte to send in the next exchange.
	Next() byte

	// Received is called with every byte the device receives.
	Received(b byte)
}

// A ByteDevice is a shift register device that exchanges whole bytes with the
// engine. It only reacts while selected. In mode 0 and 2 the first bit of a
// byte is presented as soon as the previous byte ends, so the responder is
// asked for the next byte at that point.
type ByteDevice struct {
	mode      Mode
	responder Responder

	sck      bool
	selected bool
	loaded   bool
	tx       byte
	sent     int
	rx       byte
	sampled  int
	miso     bool
}

// NewByteDevice creates a device that works in the given mode.
func NewByteDevice(mode Mode, r Responder) *ByteDevice {
	return &ByteDevice{
		mode:      mode,
		responder: r,
		sck:       mode.CPOL,
	}
}

// Drive observes the pins and returns the MISO line.
func (d *ByteDevice) Drive(p Pins) bool {
	if !p.Select {
		d.deselect(p)
		return false
	}

	if !d.selected {
		d.selected = true
		d.sck = p.SCK

		if !d.mode.CPHA {
			d.present()
		}
	}

	if p.SCK != d.sck {
		d.sck = p.SCK
		leading := p.SCK != d.mode.CPOL

		if leading != d.mode.CPHA {
			d.sample(p.MOSI)
		} else {
			d.shift()
		}
	}

	return d.miso
}

func (d *ByteDevice) deselect(p Pins) {
	if d.selected && (d.sampled > 0 || d.sent > 1) {
		d.loaded = false
	}

	d.selected = false
	d.sck = p.SCK
	d.sent = 0
	d.sampled = 0
	d.rx = 0
}

// present drives the next bit of the current byte, fetching a new byte from
// the responder when none is loaded.
func (d *ByteDevice) present() {
	if !d.loaded {
		d.tx = d.responder.Next()
		d.loaded = true
		d.sent = 0
	}

	d.miso = d.tx&(0x80>>d.sent) != 0
	d.sent++
}

func (d *ByteDevice) shift() {
	if d.sent == 8 {
		d.loaded = false
	}

	d.present()
}

func (d *ByteDevice) sample(mosi bool) {
	d.rx <<= 1
	if mosi {
		d.rx |= 1
	}

	d.sampled++
	if d.sampled < 8 {
		return
	}

	d.responder.Received(d.rx)
	d.sampled = 0
	d.rx = 0

	if d.mode.CPHA {
		d.loaded = false
	}
}
