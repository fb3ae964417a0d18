// Package spi models the serial transfer engine and the serial devices that
// can be attached to it.
package spi

import "fmt"

// A Mode selects the clock polarity and the sampling edge.
type Mode struct {
	// CPOL is the idle level of the clock.
	CPOL bool

	// CPHA selects sampling on the trailing edge instead of the leading edge.
	CPHA bool
}

// The four standard modes.
var (
	Mode0 = Mode{}
	Mode1 = Mode{CPHA: true}
	Mode2 = Mode{CPOL: true}
	Mode3 = Mode{CPOL: true, CPHA: true}
)

func (m Mode) String() string {
	n := 0
	if m.CPOL {
		n += 2
	}

	if m.CPHA {
		n++
	}

	return fmt.Sprintf("Mode%d", n)
}

// Divider selectors. The engine produces one clock edge every 2^Divider
// system cycles.
const (
	MinDivider     = 0
	MaxDivider     = 7
	DefaultDivider = MaxDivider
)

// EdgesPerByte is the number of clock edges of a one-byte exchange.
const EdgesPerByte = 16

// ExchangeCycles returns the number of cycles the engine stays busy for one
// byte with the given divider.
func ExchangeCycles(divider int) int {
	return EdgesPerByte<<divider + 1
}

// Pins are the lines driven by the engine.
type Pins struct {
	SCK  bool
	MOSI bool

	// Select is true when the select line is asserted. The line itself is
	// active low.
	Select bool
}
